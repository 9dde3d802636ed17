package store

import (
	"context"
	"time"

	"github.com/cognicore/citeclean/pkg/citeclean/report"
)

// Store persists the history of cleanup runs.
type Store interface {
	Close() error

	RecordRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	// ListRuns returns the most recent runs first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Totals(ctx context.Context) (Totals, error)
}

// Run is a stored cleanup run.
type Run struct {
	ID            string
	Source        string
	Mode          string
	CreatedAt     time.Time
	InputBytes    int64
	OutputBytes   int64
	InlineRemoved int64
	BoundaryFound bool
	BoundaryLine  int64
	LinesDropped  int64
}

// Totals aggregates every recorded run.
type Totals struct {
	Runs          int64
	Changed       int64
	InputBytes    int64
	OutputBytes   int64
	InlineRemoved int64
	LinesDropped  int64
}

// FromReport converts a cleanup report into a storable run.
func FromReport(r report.Report) Run {
	return Run{
		ID:            r.ID,
		Source:        r.Source,
		Mode:          r.Mode,
		CreatedAt:     r.CreatedAt,
		InputBytes:    int64(r.InputBytes),
		OutputBytes:   int64(r.OutputBytes),
		InlineRemoved: int64(r.InlineRemoved),
		BoundaryFound: r.BoundaryFound,
		BoundaryLine:  int64(r.BoundaryLine),
		LinesDropped:  int64(r.LinesDropped),
	}
}

// Changed reports whether the run altered its input.
func (r Run) Changed() bool {
	return r.InputBytes != r.OutputBytes || r.InlineRemoved > 0 || r.BoundaryFound
}

// Add folds r into t.
func (t *Totals) Add(r Run) {
	t.Runs++
	if r.Changed() {
		t.Changed++
	}
	t.InputBytes += r.InputBytes
	t.OutputBytes += r.OutputBytes
	t.InlineRemoved += r.InlineRemoved
	t.LinesDropped += r.LinesDropped
}

// Saved returns the number of bytes removed across all runs.
func (t Totals) Saved() int64 {
	return t.InputBytes - t.OutputBytes
}
