// Package batch cleans many documents in one pass, from a directory tree or
// a JSONL file, recording each run to an optional history store.
package batch

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/cognicore/citeclean/pkg/citeclean"
	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
	"github.com/cognicore/citeclean/pkg/citeclean/report"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
)

// Observer receives one call per processed document.
type Observer interface {
	Observe(r report.Report, took time.Duration)
	ObserveError()
}

// Runner drains a Source through a Cleaner into a Sink. Store and Metrics
// are optional; a nil Logger means log.Default(). Failures are always
// logged, per-document summaries only when Verbose is set.
type Runner struct {
	Cleaner *citeclean.Cleaner
	Source  Source
	Sink    Sink
	Store   store.Store
	Metrics Observer
	Logger  *log.Logger
	Verbose bool
}

// Result summarizes the batch run.
type Result struct {
	Processed int
	Changed   int
	Errors    int
}

// Run processes documents until the source is exhausted or ctx is done.
// Per-document failures are counted and do not stop the run.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	var res Result
	if r.Cleaner == nil || r.Source == nil || r.Sink == nil {
		return res, errors.New("batch: runner needs a cleaner, source and sink")
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		doc, ok, err := r.Source.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			r.fail(&res, doc.ID, err)
			continue
		}
		if !ok {
			break
		}

		changed, err := r.process(ctx, doc)
		if err != nil {
			r.fail(&res, doc.ID, err)
			continue
		}
		res.Processed++
		if changed {
			res.Changed++
		}
	}
	return res, nil
}

func (r *Runner) process(ctx context.Context, doc Doc) (bool, error) {
	start := time.Now()
	out, rep := r.Cleaner.RunWithReport(doc.Text)
	took := time.Since(start)
	rep.Source = doc.ID

	if err := r.Sink.Write(ctx, Doc{ID: doc.ID, Text: out}); err != nil {
		return false, err
	}
	if r.Store != nil {
		if err := r.Store.RecordRun(ctx, store.FromReport(rep)); err != nil {
			return false, errors.Join(internalerr.ErrStoreUnavailable, err)
		}
	}
	if r.Metrics != nil {
		r.Metrics.Observe(rep, took)
	}
	if r.Verbose {
		r.logger().Println(rep.Summary())
	}
	return rep.Changed(), nil
}

func (r *Runner) fail(res *Result, id string, err error) {
	res.Errors++
	if r.Metrics != nil {
		r.Metrics.ObserveError()
	}
	r.logger().Printf("Warning: %s: %v", id, err)
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
