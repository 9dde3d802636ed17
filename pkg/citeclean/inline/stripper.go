// Package inline removes inline citation markers from running text.
package inline

import "github.com/cognicore/citeclean/pkg/citeclean/patterns"

// Strip deletes every inline citation marker and leaves all other
// characters, including surrounding spaces, untouched.
func Strip(text string) string {
	return patterns.Get().Inline.ReplaceAllLiteralString(text, "")
}

// StripCount is Strip that also reports how many markers were removed.
func StripCount(text string) (string, int) {
	re := patterns.Get().Inline
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text, 0
	}
	return re.ReplaceAllLiteralString(text, ""), len(locs)
}

// Find returns the markers in order of appearance.
func Find(text string) []string {
	return patterns.Get().Inline.FindAllString(text, -1)
}
