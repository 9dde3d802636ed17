package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/citeclean/pkg/citeclean/internalerr"
)

// Config toggles the individual cleanup stages. The zero value disables
// everything; use Default or one of the presets.
type Config struct {
	// RemoveInlineCitations deletes markers like [1], [^1_2] and [source:3].
	RemoveInlineCitations bool
	// RemoveReferenceLinks truncates at definition lines like "[1]: https://...".
	RemoveReferenceLinks bool
	// RemoveReferenceHeaders truncates at headings like "## References".
	RemoveReferenceHeaders bool
	// RemoveReferenceEntries truncates at entries like "[1] Author (2024). Title."
	RemoveReferenceEntries bool
	// NormalizeWhitespace collapses runs of spaces.
	NormalizeWhitespace bool
	// RemoveBlankLines caps runs of blank lines at one.
	RemoveBlankLines bool
	// TrimLines strips trailing whitespace from every line.
	TrimLines bool
}

// RemovesReferences reports whether the reference section stage is enabled.
func (c Config) RemovesReferences() bool {
	return c.RemoveReferenceLinks || c.RemoveReferenceEntries || c.RemoveReferenceHeaders
}

// Default enables every stage.
func Default() Config {
	return Config{
		RemoveInlineCitations:  true,
		RemoveReferenceLinks:   true,
		RemoveReferenceHeaders: true,
		RemoveReferenceEntries: true,
		NormalizeWhitespace:    true,
		RemoveBlankLines:       true,
		TrimLines:              true,
	}
}

// InlineOnly removes inline markers and leaves reference sections alone.
// Blank lines are left as they are.
func InlineOnly() Config {
	return Config{
		RemoveInlineCitations: true,
		NormalizeWhitespace:   true,
		TrimLines:             true,
	}
}

// ReferencesOnly removes reference sections and keeps inline markers.
func ReferencesOnly() Config {
	return Config{
		RemoveReferenceLinks:   true,
		RemoveReferenceHeaders: true,
		RemoveReferenceEntries: true,
		NormalizeWhitespace:    true,
		RemoveBlankLines:       true,
		TrimLines:              true,
	}
}

// Mode names a preset.
type Mode int

const (
	// ModeAll removes every citation type.
	ModeAll Mode = iota
	// ModeInlineOnly removes inline citations and keeps reference lists.
	ModeInlineOnly
	// ModeReferencesOnly removes reference lists and keeps inline citations.
	ModeReferencesOnly
)

func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeInlineOnly:
		return "inline-only"
	case ModeReferencesOnly:
		return "references-only"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a preset name. Empty input maps to ModeAll.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "default":
		return ModeAll, nil
	case "inline-only", "inline":
		return ModeInlineOnly, nil
	case "references-only", "references", "refs":
		return ModeReferencesOnly, nil
	}
	return ModeAll, fmt.Errorf("%w: unknown preset %q", internalerr.ErrInvalidConfig, s)
}

// Preset returns the configuration for a mode.
func Preset(m Mode) Config {
	switch m {
	case ModeInlineOnly:
		return InlineOnly()
	case ModeReferencesOnly:
		return ReferencesOnly()
	default:
		return Default()
	}
}

// ModeOf returns the mode whose preset equals c, if any.
func ModeOf(c Config) (Mode, bool) {
	for _, m := range []Mode{ModeAll, ModeInlineOnly, ModeReferencesOnly} {
		if Preset(m) == c {
			return m, true
		}
	}
	return ModeAll, false
}
