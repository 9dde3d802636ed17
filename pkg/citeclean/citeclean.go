// Package citeclean removes AI-generated citation markers and bibliography
// sections from Markdown while leaving the rest of the formatting intact.
//
//	out := citeclean.Clean("AI research shows promise[1][2].\n\n[1]: https://example.com")
//	// out == "AI research shows promise.\n"
//
// Processing runs in a fixed order: reference section removal, inline
// citation removal, then whitespace cleanup. Reference removal goes first
// because definition lines are only recognizable while their leading marker
// is still present.
//
// Citations inside fenced code blocks are removed like any other text; the
// cleaner has no notion of Markdown block structure.
package citeclean

import (
	"github.com/cognicore/citeclean/pkg/citeclean/config"
	"github.com/cognicore/citeclean/pkg/citeclean/inline"
	"github.com/cognicore/citeclean/pkg/citeclean/refsection"
	"github.com/cognicore/citeclean/pkg/citeclean/report"
	"github.com/cognicore/citeclean/pkg/citeclean/whitespace"
)

// Cleaner applies a fixed configuration to any number of inputs. It is safe
// for concurrent use.
type Cleaner struct {
	cfg     config.Config
	mode    string
	reports *report.Builder
}

// stage is one conditional step of the pipeline.
type stage struct {
	enabled func(config.Config) bool
	apply   func(text string, cfg config.Config, s *report.Stats) string
}

// stages run in this order; each one only deletes or shrinks text.
var stages = []stage{
	{enabled: config.Config.RemovesReferences, apply: removeReferences},
	{enabled: func(c config.Config) bool { return c.RemoveInlineCitations }, apply: removeInline},
	{enabled: func(c config.Config) bool { return c.NormalizeWhitespace }, apply: collapseSpaces},
	{enabled: func(c config.Config) bool { return c.RemoveBlankLines }, apply: collapseBlankLines},
	{enabled: func(c config.Config) bool { return c.TrimLines }, apply: trimLines},
}

// New creates a Cleaner for cfg.
func New(cfg config.Config) *Cleaner {
	mode := "custom"
	if m, ok := config.ModeOf(cfg); ok {
		mode = m.String()
	}
	return &Cleaner{
		cfg:     cfg,
		mode:    mode,
		reports: report.New(),
	}
}

// Config returns the configuration the cleaner was built with.
func (c *Cleaner) Config() config.Config {
	return c.cfg
}

// Mode returns the preset name of the configuration, or "custom".
func (c *Cleaner) Mode() string {
	return c.mode
}

// Run cleans text.
func (c *Cleaner) Run(text string) string {
	var s report.Stats
	return c.run(text, &s)
}

// RunWithReport cleans text and describes what was removed.
func (c *Cleaner) RunWithReport(text string) (string, report.Report) {
	var s report.Stats
	out := c.run(text, &s)
	return out, c.reports.Build("", c.mode, s)
}

func (c *Cleaner) run(text string, s *report.Stats) string {
	s.InputBytes = len(text)
	for _, st := range stages {
		if st.enabled(c.cfg) {
			text = st.apply(text, c.cfg, s)
		}
	}
	s.OutputBytes = len(text)
	return text
}

// Clean runs the full pipeline with the default configuration.
func Clean(text string) string {
	return defaultCleaner.Run(text)
}

// CleanWithConfig runs the pipeline with cfg.
func CleanWithConfig(text string, cfg config.Config) string {
	return New(cfg).Run(text)
}

var defaultCleaner = New(config.Default())

func removeReferences(text string, cfg config.Config, s *report.Stats) string {
	out, b := refsection.Remove(text, cfg)
	s.BoundaryFound = b.Found
	s.BoundaryLine = b.Line
	s.LinesDropped = b.Dropped
	return out
}

func removeInline(text string, _ config.Config, s *report.Stats) string {
	out, n := inline.StripCount(text)
	s.InlineRemoved = n
	return out
}

func collapseSpaces(text string, _ config.Config, _ *report.Stats) string {
	return whitespace.CollapseSpaces(text)
}

func collapseBlankLines(text string, _ config.Config, _ *report.Stats) string {
	return whitespace.CollapseBlankLines(text)
}

func trimLines(text string, _ config.Config, _ *report.Stats) string {
	return whitespace.TrimLines(text)
}
