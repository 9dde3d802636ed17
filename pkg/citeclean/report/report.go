package report

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Stats are the raw measurements of one cleanup run.
type Stats struct {
	InputBytes    int
	OutputBytes   int
	InlineRemoved int
	BoundaryFound bool
	BoundaryLine  int // zero-based; meaningful only when BoundaryFound
	LinesDropped  int
}

// Report describes one cleanup run. IDs are ULIDs and sort by creation time.
type Report struct {
	ID        string
	Source    string // file path or record id; empty for in-memory input
	Mode      string // preset name, or "custom"
	CreatedAt time.Time
	Stats
}

// Changed reports whether the run altered its input.
func (r Report) Changed() bool {
	return r.InputBytes != r.OutputBytes || r.InlineRemoved > 0 || r.BoundaryFound
}

// Summary renders a single line for diagnostics.
func (r Report) Summary() string {
	src := r.Source
	if src == "" {
		src = "-"
	}
	boundary := "none"
	if r.BoundaryFound {
		boundary = fmt.Sprintf("line %d (%d lines dropped)", r.BoundaryLine+1, r.LinesDropped)
	}
	return fmt.Sprintf("run %s source=%s mode=%s bytes=%d->%d inline=%d references=%s",
		r.ID, src, r.Mode, r.InputBytes, r.OutputBytes, r.InlineRemoved, boundary)
}

// Builder stamps reports with monotonic ULIDs. It is safe for concurrent use.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a new report builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Build creates a report for a finished run.
func (b *Builder) Build(source, mode string, s Stats) Report {
	b.mu.Lock()
	now := b.now()
	id := ulid.MustNew(ulid.Timestamp(now), b.entropy).String()
	b.mu.Unlock()

	return Report{
		ID:        id,
		Source:    source,
		Mode:      mode,
		CreatedAt: now.UTC(),
		Stats:     s,
	}
}
