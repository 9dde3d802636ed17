// Package refsection finds where a bibliography starts in a document and cuts
// the document there.
package refsection

import (
	"strings"

	"github.com/cognicore/citeclean/pkg/citeclean/config"
	"github.com/cognicore/citeclean/pkg/citeclean/patterns"
)

// Boundary describes the outcome of a Remove call.
type Boundary struct {
	Found   bool
	Line    int // index of the first removed line; meaningful only when Found
	Dropped int // number of lines removed, including the boundary line
}

// Locate returns the index of the first line that opens a reference section.
// Headers count only when cfg.RemoveReferenceHeaders is set; definition and
// entry lines always count. Lines after the first hit are not inspected.
func Locate(lines []string, cfg config.Config) (int, bool) {
	p := patterns.Get()
	for i, line := range lines {
		if cfg.RemoveReferenceHeaders && p.IsHeader(line) {
			return i, true
		}
		if p.IsDefinition(line) || p.IsEntry(line) {
			return i, true
		}
	}
	return 0, false
}

// Remove drops every line from the reference boundary onward. The returned
// text is unchanged when no boundary exists.
func Remove(text string, cfg config.Config) (string, Boundary) {
	lines := strings.Split(text, "\n")
	idx, ok := Locate(lines, cfg)
	if !ok {
		return text, Boundary{}
	}
	return strings.Join(lines[:idx], "\n"), Boundary{
		Found:   true,
		Line:    idx,
		Dropped: len(lines) - idx,
	}
}
