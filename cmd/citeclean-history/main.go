// Command citeclean-history prints recorded cleanup runs and their totals.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cognicore/citeclean/pkg/citeclean/store"
	"github.com/cognicore/citeclean/pkg/citeclean/store/sqlite"
)

type summary struct {
	Totals store.Totals `json:"totals"`
	Runs   []store.Run  `json:"runs"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("citeclean-history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		dbPath = fs.String("db", "", "History database (required)")
		limit  = fs.Int("limit", 20, "Number of recent runs to show (0 for all)")
		id     = fs.String("id", "", "Show a single run")
		asJSON = fs.Bool("json", false, "Print JSON instead of a table")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := log.New(stderr, "citeclean-history: ", 0)
	if *dbPath == "" {
		logger.Print("--db required")
		return 2
	}
	if _, err := os.Stat(*dbPath); err != nil {
		logger.Printf("open history: %v", err)
		return 1
	}

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		logger.Printf("open history: %v", err)
		return 1
	}
	defer st.Close()

	var out summary
	if *id != "" {
		r, ok, err := st.GetRun(ctx, *id)
		if err != nil {
			logger.Printf("get run: %v", err)
			return 1
		}
		if !ok {
			logger.Printf("run %s not found", *id)
			return 1
		}
		out.Runs = []store.Run{r}
		out.Totals.Add(r)
	} else {
		if out.Runs, err = st.ListRuns(ctx, *limit); err != nil {
			logger.Printf("list runs: %v", err)
			return 1
		}
		if out.Totals, err = st.Totals(ctx); err != nil {
			logger.Printf("totals: %v", err)
			return 1
		}
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			logger.Printf("encode: %v", err)
			return 1
		}
		return 0
	}
	printTable(stdout, out)
	return 0
}

func printTable(w io.Writer, s summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tMODE\tSOURCE\tBYTES\tINLINE\tREFERENCES")
	for _, r := range s.Runs {
		source := r.Source
		if source == "" {
			source = "-"
		}
		refs := "-"
		if r.BoundaryFound {
			refs = fmt.Sprintf("line %d (-%d)", r.BoundaryLine+1, r.LinesDropped)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d->%d\t%d\t%s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Mode, source,
			r.InputBytes, r.OutputBytes, r.InlineRemoved, refs)
	}
	tw.Flush()

	t := s.Totals
	fmt.Fprintf(w, "\n%d runs, %d changed, %d bytes removed, %d inline citations, %d reference lines\n",
		t.Runs, t.Changed, t.Saved(), t.InlineRemoved, t.LinesDropped)
}
