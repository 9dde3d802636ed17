package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/citeclean/internal/textio"
	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// Sink receives cleaned documents.
type Sink interface {
	Write(ctx context.Context, doc Doc) error
	Close() error
}

// DirSink mirrors document IDs as paths under Root.
type DirSink struct {
	Root string
}

func (s *DirSink) Write(ctx context.Context, doc Doc) error {
	rel := filepath.FromSlash(doc.ID)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: document id %q escapes output directory", internalerr.ErrInvalidInput, doc.ID)
	}
	return textio.WriteOutput(filepath.Join(s.Root, rel), doc.Text, nil)
}

func (s *DirSink) Close() error { return nil }

// JSONLSink appends cleaned documents to a JSONL file.
type JSONLSink struct {
	f *os.File
}

// NewJSONLSink creates (or truncates) path.
func NewJSONLSink(path string) (*JSONLSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %v", internalerr.ErrIO, dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", internalerr.ErrIO, path, err)
	}
	return &JSONLSink{f: f}, nil
}

func (s *JSONLSink) Write(ctx context.Context, doc Doc) error {
	return textio.AppendJSONL(s.f, textio.Record{ID: doc.ID, Text: doc.Text})
}

func (s *JSONLSink) Close() error {
	return s.f.Close()
}
