// Command citeclean strips citation markers and bibliography sections from a
// Markdown document.
//
//	citeclean answer.md > clean.md
//	pbpaste | citeclean -preset inline-only | pbcopy
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cognicore/citeclean/internal/textio"
	"github.com/cognicore/citeclean/pkg/citeclean"
	"github.com/cognicore/citeclean/pkg/citeclean/config"
	"github.com/cognicore/citeclean/pkg/citeclean/report"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
	"github.com/cognicore/citeclean/pkg/citeclean/store/sqlite"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("citeclean", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		outPath     = fs.String("o", "", "Output file (default stdout)")
		verbose     = fs.Bool("v", false, "Print a run summary to stderr")
		configPath  = fs.String("config", "", "YAML or TOML config file (optional)")
		preset      = fs.String("preset", "", "Preset: all, inline-only, references-only")
		historyPath = fs.String("history", "", "SQLite history database (optional)")
	)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: citeclean [flags] [input]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	logger := log.New(stderr, "citeclean: ", 0)

	loader := config.Loader{ConfigPath: *configPath, Preset: *preset}
	cfg, err := loader.Load()
	if err != nil {
		logger.Printf("Failed to load configuration: %v", err)
		return 1
	}

	inPath := fs.Arg(0)
	text, err := textio.ReadInput(inPath, stdin)
	if err != nil {
		logger.Printf("%v", err)
		return 1
	}

	out, rep := citeclean.New(cfg).RunWithReport(text)
	rep.Source = inPath

	if err := textio.WriteOutput(*outPath, out, stdout); err != nil {
		logger.Printf("%v", err)
		return 1
	}

	if *verbose {
		logger.Println(rep.Summary())
	}

	if *historyPath != "" {
		if err := record(*historyPath, rep); err != nil {
			logger.Printf("Failed to record history: %v", err)
			return 1
		}
	}
	return 0
}

func record(path string, rep report.Report) error {
	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.RecordRun(ctx, store.FromReport(rep))
}
