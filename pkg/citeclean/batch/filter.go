package batch

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// DefaultInclude selects Markdown files when no include pattern is given.
var DefaultInclude = []string{"*.md", "*.markdown"}

// Filter decides which files under a root take part in a run. Patterns are
// matched against the slash-separated path relative to the root and against
// the base name, so "*.md" and "drafts/**" both work.
type Filter struct {
	include []glob.Glob
	exclude []glob.Glob
}

// NewFilter compiles include and exclude patterns. An empty include list
// means DefaultInclude.
func NewFilter(include, exclude []string) (*Filter, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	f := &Filter{}
	var err error
	if f.include, err = compileAll(include); err != nil {
		return nil, err
	}
	if f.exclude, err = compileAll(exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pattern %q: %v", internalerr.ErrInvalidConfig, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Match reports whether rel, a path relative to the root, is selected.
func (f *Filter) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	if !anyMatch(f.include, rel, base) {
		return false
	}
	return !anyMatch(f.exclude, rel, base)
}

func anyMatch(globs []glob.Glob, rel, base string) bool {
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
