// Package whitespace tidies the gaps left behind by citation removal.
package whitespace

import (
	"strings"
	"unicode"

	"github.com/cognicore/citeclean/pkg/citeclean/patterns"
)

// CollapseSpaces replaces runs of two or more spaces with one. Tabs and
// newlines are left alone.
func CollapseSpaces(text string) string {
	return patterns.Get().MultiSpace.ReplaceAllLiteralString(text, " ")
}

// CollapseBlankLines caps consecutive blank lines at one.
func CollapseBlankLines(text string) string {
	return patterns.Get().ExcessNewlines.ReplaceAllLiteralString(text, "\n\n")
}

// TrimLines strips trailing whitespace from every line and keeps
// indentation.
func TrimLines(text string) string {
	if text == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.Join(lines, "\n")
}
