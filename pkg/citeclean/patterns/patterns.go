// Package patterns holds the compiled matchers used to recognize citation
// markers, reference definitions, bibliography headers and whitespace runs in
// AI-generated Markdown.
//
// Inline shapes that are recognized:
//
//	[^1] [^note] [^1_2] [^section-1]    footnote style
//	[1] [23] [999]                      numeric
//	[source:1] [ref:2] [cite:a-b]       named (source, ref, cite, note, fig, table, eq)
//
// Ordinary links [text](url), images ![alt](url) and bracketed prose such as
// [[nested]] or [other:1] are not matched. Numeric brackets in code
// (array[1]) are matched too; there is no code-fence awareness.
package patterns

import (
	"regexp"
	"strings"
	"sync"
)

// citationID is the identifier alphabet shared by footnote and named markers.
const citationID = `[A-Za-z0-9_\-]+`

// marker is a line-leading citation marker: [^ID] or [N].
const marker = `\[(?:\^` + citationID + `|\d+)\]`

const (
	inlineExpr = `\[\^` + citationID + `\]` +
		`|\[\d+\]` +
		`|\[(?:source|ref|cite|note|fig|table|eq):` + citationID + `\]`

	definitionExpr = `^(?:` +
		`\[\^` + citationID + `\]:.*` + // [^1]: text
		`|\[\d+\]:.*` + // [1]: https://...
		`|\[\d+\]\s+\S.*` + // [1] https://...
		`|` + marker + `\(https?://[^)]+\)` + // [1](https://...)
		`)$`

	headerExpr = `(?i)^#{1,6}\s*(?:references?|citations?|sources?|bibliograph(?:y|ies)|notes?)\s*$`

	entryExpr = `^` + marker + `\s+\S.*$`
)

// Set is an immutable group of compiled matchers. A Set is safe for
// concurrent use by any number of goroutines.
type Set struct {
	// Inline matches footnote, numeric and named inline citations.
	Inline *regexp.Regexp
	// Definition matches a whole reference definition line.
	Definition *regexp.Regexp
	// Header matches a bibliography section heading.
	Header *regexp.Regexp
	// Entry matches a bibliography entry that is not a URL definition,
	// e.g. "[1] Author, A. (2024). Title."
	Entry *regexp.Regexp

	MultiSpace     *regexp.Regexp
	ExcessNewlines *regexp.Regexp
}

var shared = sync.OnceValue(compile)

// Get returns the process-wide Set, compiling it on first use.
func Get() *Set {
	return shared()
}

// compile panics on a malformed expression; the expressions are constants.
func compile() *Set {
	return &Set{
		Inline:         regexp.MustCompile(inlineExpr),
		Definition:     regexp.MustCompile(definitionExpr),
		Header:         regexp.MustCompile(headerExpr),
		Entry:          regexp.MustCompile(entryExpr),
		MultiSpace:     regexp.MustCompile(` {2,}`),
		ExcessNewlines: regexp.MustCompile(`\n{3,}`),
	}
}

// IsInlineCitation reports whether s contains an inline citation marker.
func (s *Set) IsInlineCitation(text string) bool {
	return s.Inline.MatchString(text)
}

// IsHeader reports whether line is a reference section heading.
func (s *Set) IsHeader(line string) bool {
	return s.Header.MatchString(trimCR(line))
}

// IsDefinition reports whether line is a reference definition.
func (s *Set) IsDefinition(line string) bool {
	return s.Definition.MatchString(trimCR(line))
}

// IsEntry reports whether line is a bibliography entry.
func (s *Set) IsEntry(line string) bool {
	return s.Entry.MatchString(trimCR(line))
}

// IsReferenceLine reports whether line is a definition or an entry.
func (s *Set) IsReferenceLine(line string) bool {
	return s.IsDefinition(line) || s.IsEntry(line)
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
