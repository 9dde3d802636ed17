// Command citeclean-batch cleans a directory tree or a JSONL file of
// documents, optionally watching the directory for changes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cognicore/citeclean/pkg/citeclean"
	"github.com/cognicore/citeclean/pkg/citeclean/batch"
	"github.com/cognicore/citeclean/pkg/citeclean/config"
	"github.com/cognicore/citeclean/pkg/citeclean/metrics"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
	"github.com/cognicore/citeclean/pkg/citeclean/store/sqlite"
	"github.com/cognicore/citeclean/pkg/citeclean/watch"
)

// patternList collects a repeatable or comma-separated flag.
type patternList []string

func (p *patternList) String() string { return strings.Join(*p, ",") }

func (p *patternList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	return nil
}

type options struct {
	in, out     string
	include     patternList
	exclude     patternList
	configPath  string
	preset      string
	historyPath string
	metricsOut  string
	watch       bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("citeclean-batch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var o options
	fs.StringVar(&o.in, "in", "", "Input directory or .jsonl file (required)")
	fs.StringVar(&o.out, "out", "", "Output directory or .jsonl file (required)")
	fs.Var(&o.include, "include", "Include glob, repeatable (default *.md,*.markdown)")
	fs.Var(&o.exclude, "exclude", "Exclude glob, repeatable")
	fs.StringVar(&o.configPath, "config", "", "YAML or TOML config file (optional)")
	fs.StringVar(&o.preset, "preset", "", "Preset: all, inline-only, references-only")
	fs.StringVar(&o.historyPath, "history", "", "SQLite history database (optional)")
	fs.StringVar(&o.metricsOut, "metrics-out", "", "Write Prometheus textfile metrics here (optional)")
	fs.BoolVar(&o.watch, "watch", false, "Keep running and clean files as they change")
	fs.BoolVar(&o.verbose, "v", false, "Log every document")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := log.New(stderr, "citeclean-batch: ", log.LstdFlags)

	if o.in == "" {
		logger.Print("--in required")
		return 2
	}
	if o.out == "" {
		logger.Print("--out required")
		return 2
	}

	if err := execute(ctx, o, logger); err != nil {
		logger.Printf("%v", err)
		return 1
	}
	return 0
}

func isJSONL(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".jsonl")
}

func execute(ctx context.Context, o options, logger *log.Logger) error {
	loader := config.Loader{ConfigPath: o.configPath, Preset: o.preset}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cleaner := citeclean.New(cfg)

	var st store.Store
	if o.historyPath != "" {
		st, err = sqlite.OpenSQLite(ctx, o.historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer st.Close()
	}

	m := metrics.New()
	defer func() {
		if o.metricsOut == "" {
			return
		}
		if err := m.WriteTextfile(o.metricsOut); err != nil {
			logger.Printf("Warning: %v", err)
		}
	}()

	if o.watch {
		if isJSONL(o.in) {
			return errors.New("--watch needs a directory input")
		}
		w, err := watch.New(cleaner, o.in, o.out, watch.Options{
			Include: o.include,
			Exclude: o.exclude,
			Initial: true,
			Store:   st,
			Metrics: m,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		logger.Printf("Watching %s -> %s (mode %s)", o.in, o.out, cleaner.Mode())
		return w.Run(ctx)
	}

	src, sink, err := open(o)
	if err != nil {
		return err
	}
	defer sink.Close()

	r := batch.Runner{
		Cleaner: cleaner,
		Source:  src,
		Sink:    sink,
		Store:   st,
		Metrics: m,
		Logger:  logger,
		Verbose: o.verbose,
	}
	res, err := r.Run(ctx)
	logger.Printf("Processed %d documents (%d changed, %d errors)", res.Processed, res.Changed, res.Errors)
	if err != nil {
		return err
	}
	if res.Errors > 0 {
		return fmt.Errorf("%d documents failed", res.Errors)
	}
	return nil
}

func open(o options) (batch.Source, batch.Sink, error) {
	if isJSONL(o.in) {
		if !isJSONL(o.out) {
			return nil, nil, errors.New("--out must be a .jsonl file when --in is one")
		}
		src, err := batch.NewJSONLSource(o.in)
		if err != nil {
			return nil, nil, err
		}
		sink, err := batch.NewJSONLSink(o.out)
		if err != nil {
			return nil, nil, err
		}
		return src, sink, nil
	}

	filter, err := batch.NewFilter(o.include, o.exclude)
	if err != nil {
		return nil, nil, err
	}
	src, err := batch.NewDirSource(o.in, filter)
	if err != nil {
		return nil, nil, err
	}
	if isJSONL(o.out) {
		sink, err := batch.NewJSONLSink(o.out)
		if err != nil {
			return nil, nil, err
		}
		return src, sink, nil
	}
	return src, &batch.DirSink{Root: o.out}, nil
}
