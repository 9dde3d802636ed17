package batch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/cognicore/citeclean/internal/textio"
)

// Doc is one document flowing through a batch run.
type Doc struct {
	ID   string // path relative to the source root, or JSONL record id
	Text string
}

// Source abstracts how we iterate documents for cleaning. Next returns
// ok=false once the source is exhausted. An error applies to a single
// document; the source has already advanced past it.
type Source interface {
	Next(ctx context.Context) (Doc, bool, error)
}

// DirSource yields the files below Root selected by a Filter, in lexical order.
type DirSource struct {
	Root  string
	files []string
	idx   int
}

// NewDirSource lists the matching files under root.
func NewDirSource(root string, filter *Filter) (*DirSource, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if filter.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return &DirSource{Root: root, files: files}, nil
}

// Len returns the number of files selected.
func (s *DirSource) Len() int { return len(s.files) }

func (s *DirSource) Next(ctx context.Context) (Doc, bool, error) {
	if err := ctx.Err(); err != nil {
		return Doc{}, false, err
	}
	if s.idx >= len(s.files) {
		return Doc{}, false, nil
	}
	rel := s.files[s.idx]
	s.idx++

	text, err := textio.ReadInput(filepath.Join(s.Root, rel), nil)
	if err != nil {
		return Doc{ID: filepath.ToSlash(rel)}, true, err
	}
	return Doc{ID: filepath.ToSlash(rel), Text: text}, true, nil
}

// JSONLSource yields the records of a JSONL file.
type JSONLSource struct {
	records []textio.Record
	idx     int
}

// NewJSONLSource loads every record of path.
func NewJSONLSource(path string) (*JSONLSource, error) {
	records, err := textio.LoadJSONL(path)
	if err != nil {
		return nil, err
	}
	return &JSONLSource{records: records}, nil
}

func (s *JSONLSource) Next(ctx context.Context) (Doc, bool, error) {
	if err := ctx.Err(); err != nil {
		return Doc{}, false, err
	}
	if s.idx >= len(s.records) {
		return Doc{}, false, nil
	}
	rec := s.records[s.idx]
	s.idx++
	return Doc{ID: rec.ID, Text: rec.Text}, true, nil
}
