package citeclean

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/cognicore/citeclean/pkg/citeclean/config"
)

func TestInlineNumericCitations(t *testing.T) {
	if got := Clean("Recent research[1][2] shows promise[3]."); got != "Recent research shows promise." {
		t.Errorf("got %q", got)
	}
}

func TestInlineNamedCitations(t *testing.T) {
	if got := Clean("Studies[source:1] indicate[ref:2] success[cite:3]."); got != "Studies indicate success." {
		t.Errorf("got %q", got)
	}
}

func TestMixedInlineCitations(t *testing.T) {
	in := "Text[1] with[source:2] mixed[3][ref:4] citations[note:5] and footnotes[^1_2]."
	if got := Clean(in); got != "Text with mixed citations and footnotes." {
		t.Errorf("got %q", got)
	}
}

func TestReferenceLinks(t *testing.T) {
	got := Clean("Content here.\n\n[1]: https://example.com\n[2]: https://test.com")
	if strings.TrimSpace(got) != "Content here." {
		t.Errorf("got %q", got)
	}
}

func TestReferenceSectionWithHeader(t *testing.T) {
	got := Clean("Content.\n\n## References\n[1] Author (2024). Title.")
	if strings.TrimSpace(got) != "Content." {
		t.Errorf("got %q", got)
	}
}

func TestReferenceHeaderVariants(t *testing.T) {
	for _, header := range []string{"# Citations", "### Bibliography", "# Notes", "## Sources", "## references"} {
		got := Clean("Content.\n\n" + header + "\n[1]: https://example.com")
		if strings.TrimSpace(got) != "Content." {
			t.Errorf("%s: got %q", header, got)
		}
	}
}

func TestPreservesMarkdownFormatting(t *testing.T) {
	in := "# Heading\n\n**Bold text**[1] and *italic*[2].\n\n- List item[3]\n\n[1]: https://example.com"
	got := Clean(in)
	for _, want := range []string{"# Heading", "**Bold text**", "*italic*", "- List item"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q lost %q", got, want)
		}
	}
	for _, gone := range []string{"[1]", "[2]", "[3]", "https://example.com"} {
		if strings.Contains(got, gone) {
			t.Errorf("output %q still contains %q", got, gone)
		}
	}
}

func TestCleanPreservesMarkdownExactly(t *testing.T) {
	in := "# Heading\n\nSome **bold** text[1] and *italic*[2].\n\n[1]: https://example.com"
	if got := strings.TrimSpace(Clean(in)); got != "# Heading\n\nSome **bold** text and *italic*." {
		t.Errorf("got %q", got)
	}
}

func TestPreservesMarkdownLinks(t *testing.T) {
	in := "Check out [this link](https://example.com) for more[1].\n\n[1]: https://citation.com"
	got := Clean(in)
	if !strings.Contains(got, "[this link](https://example.com)") {
		t.Errorf("link lost: %q", got)
	}
	if strings.Contains(got, "[1]") || strings.Contains(got, "https://citation.com") {
		t.Errorf("citation survived: %q", got)
	}
}

func TestPreservesImages(t *testing.T) {
	got := Clean("Image: ![alt text](image.png) here[1].\n\n[1]: https://example.com")
	if !strings.Contains(got, "![alt text](image.png)") {
		t.Errorf("image lost: %q", got)
	}
	if strings.Contains(got, "[1]") {
		t.Errorf("citation survived: %q", got)
	}
}

func TestNestedBracketsNotCitations(t *testing.T) {
	got := Clean("Array access [[nested]] is preserved.")
	if !strings.Contains(got, "[[nested]]") {
		t.Errorf("got %q", got)
	}
}

func TestEmptyString(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestNoCitations(t *testing.T) {
	in := "Just regular markdown text with no citations."
	if got := Clean(in); got != in {
		t.Errorf("got %q", got)
	}
}

func TestCitationsWithPunctuation(t *testing.T) {
	if got := Clean("Text[1]. More text[2], and more[3]; finally[4]!"); got != "Text. More text, and more; finally!" {
		t.Errorf("got %q", got)
	}
}

func TestLargeCitationNumbers(t *testing.T) {
	if got := Clean("Text[999] with[1000] large[12345] numbers."); got != "Text with large numbers." {
		t.Errorf("got %q", got)
	}
}

func TestWhitespaceNormalization(t *testing.T) {
	got := Clean("Text  with    multiple     spaces[1].")
	if strings.Contains(got, "  ") || strings.Contains(got, "[1]") {
		t.Errorf("got %q", got)
	}
}

func TestExcessiveNewlinesRemoval(t *testing.T) {
	if got := Clean("Paragraph 1.\n\n\n\n\nParagraph 2."); got != "Paragraph 1.\n\nParagraph 2." {
		t.Errorf("got %q", got)
	}
}

func TestFullPipeline(t *testing.T) {
	got := Clean("Text[1]  with   spaces.\n\n\n\n## References\n[1]: https://example.com")
	for _, bad := range []string{"[1]", "https://example.com", "  ", "\n\n\n"} {
		if strings.Contains(got, bad) {
			t.Errorf("output %q contains %q", got, bad)
		}
	}
}

func TestCitationAtStartOfLine(t *testing.T) {
	// The line looks like a reference entry, so the whole document goes.
	if got := Clean("[1] This starts with a citation."); strings.TrimSpace(got) != "" {
		t.Errorf("got %q", got)
	}
}

func TestCitationAtEndOfLine(t *testing.T) {
	if got := Clean("This ends with a citation[1]"); got != "This ends with a citation" {
		t.Errorf("got %q", got)
	}
}

func TestOnlyCitations(t *testing.T) {
	if got := Clean("[1][2][3]"); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestCitationsInCodeBlocksAreStripped(t *testing.T) {
	got := Clean("Text[1].\n\n```rust\nlet x = array[1];\n```")
	if strings.Contains(got, "Text[1]") || strings.Contains(got, "array[1]") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "```rust") || !strings.Contains(got, "let x = array;") {
		t.Errorf("code fence damaged: %q", got)
	}
}

func TestReferenceWithTitle(t *testing.T) {
	got := Clean("Content.\n\n[1]: https://example.com \"Page Title\"")
	if strings.TrimSpace(got) != "Content." {
		t.Errorf("got %q", got)
	}
}

func TestMultipleReferenceSections(t *testing.T) {
	in := "Content.\n\n## References\n[1]: https://example.com\n\n## Sources\n[2]: https://test.com"
	if got := strings.TrimSpace(Clean(in)); got != "Content." {
		t.Errorf("got %q", got)
	}
}

func TestMixedReferenceFormats(t *testing.T) {
	in := "Content.\n\n[1]: https://example.com\n[2] https://test.com\n[3]: https://another.com"
	if got := strings.TrimSpace(Clean(in)); got != "Content." {
		t.Errorf("got %q", got)
	}
}

func TestPerplexityMarkdownLinkReferences(t *testing.T) {
	in := "Answer text[^1_1] here[^1_2].\n\n[^1_1](https://a.example.com)\n[^1_2](https://b.example.com)"
	if got := strings.TrimSpace(Clean(in)); got != "Answer text here." {
		t.Errorf("got %q", got)
	}
}

func TestUnicodeContentPreserved(t *testing.T) {
	got := Clean("Unicode: 你好[1] مرحبا[2] Привет[3] 🚀[4].\n\n[1]: https://example.com")
	for _, want := range []string{"你好", "مرحبا", "Привет", "🚀"} {
		if !strings.Contains(got, want) {
			t.Errorf("lost %q in %q", want, got)
		}
	}
	if strings.Contains(got, "[1]") {
		t.Errorf("got %q", got)
	}
}

func TestVeryLongDocument(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 1000; i++ {
		fmt.Fprintf(&b, "Paragraph %d with citation[%d].\n\n", i, i)
	}
	b.WriteString("## References\n")
	for i := 1; i <= 1000; i++ {
		fmt.Fprintf(&b, "[%d]: https://example.com/%d\n", i, i)
	}

	got := Clean(b.String())
	for _, bad := range []string{"[1]", "[500]", "[1000]", "https://example.com"} {
		if strings.Contains(got, bad) {
			t.Errorf("output still contains %q", bad)
		}
	}
	for _, want := range []string{"Paragraph 1 ", "Paragraph 500 ", "Paragraph 1000 "} {
		if !strings.Contains(got, want) {
			t.Errorf("output lost %q", want)
		}
	}
}

func TestConfigInlineOnly(t *testing.T) {
	got := CleanWithConfig("Text[1] here.\n\n[1]: https://example.com", config.InlineOnly())
	if strings.Contains(got, "[1]") {
		t.Errorf("inline marker survived: %q", got)
	}
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("reference URL should be kept: %q", got)
	}
}

func TestConfigInlineOnlyKeepsParagraphs(t *testing.T) {
	got := CleanWithConfig("Text[1] here.\n\nSome content.", config.InlineOnly())
	if strings.TrimSpace(got) != "Text here.\n\nSome content." {
		t.Errorf("got %q", got)
	}
}

func TestConfigReferencesOnly(t *testing.T) {
	got := CleanWithConfig("Text[1] here.\n\n[1]: https://example.com", config.ReferencesOnly())
	if !strings.Contains(got, "[1]") {
		t.Errorf("inline marker should be kept: %q", got)
	}
	if strings.Contains(got, "https://example.com") {
		t.Errorf("reference URL survived: %q", got)
	}
}

func TestConfigAllDisabled(t *testing.T) {
	in := "Text[1].\n\n[1]: https://example.com"
	if got := CleanWithConfig(in, config.Config{}); got != in {
		t.Errorf("got %q", got)
	}
}

func TestConfigInlineWithoutCleanup(t *testing.T) {
	got := CleanWithConfig("Text[1].\n\n[1]: https://example.com", config.Config{RemoveInlineCitations: true})
	if strings.Contains(got, "[1]") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("got %q", got)
	}
}

func TestConfigHeadersOnlyStillStopsAtDefinitions(t *testing.T) {
	cfg := config.Config{RemoveReferenceHeaders: true}
	got := CleanWithConfig("Body.\n[1]: https://example.com", cfg)
	if got != "Body." {
		t.Errorf("got %q", got)
	}
}

func TestCleanerReusability(t *testing.T) {
	c := New(config.Default())
	for in, want := range map[string]string{
		"Text[1].":  "Text.",
		"More[2].":  "More.",
		"Final[3].": "Final.",
	} {
		if got := c.Run(in); got != want {
			t.Errorf("Run(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCleanerConcurrentUse(t *testing.T) {
	c := New(config.Default())
	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := fmt.Sprintf("Doc %d[%d].\n\n[%d]: https://example.com/%d", i, i, i, i)
			want := fmt.Sprintf("Doc %d.\n", i)
			if got := c.Run(in); got != want {
				errs <- fmt.Sprintf("got %q, want %q", got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestCleanerMode(t *testing.T) {
	if m := New(config.Default()).Mode(); m != "all" {
		t.Errorf("got %q", m)
	}
	if m := New(config.InlineOnly()).Mode(); m != "inline-only" {
		t.Errorf("got %q", m)
	}
	if m := New(config.Config{TrimLines: true}).Mode(); m != "custom" {
		t.Errorf("got %q", m)
	}
	if c := New(config.ReferencesOnly()); c.Config() != config.ReferencesOnly() {
		t.Errorf("Config() = %+v", c.Config())
	}
}

func TestRunWithReport(t *testing.T) {
	in := "Intro[1] text[2].\n\n## References\n[1]: https://a.example\n[2]: https://b.example"
	out, r := New(config.Default()).RunWithReport(in)
	if out != "Intro text.\n" {
		t.Errorf("got %q", out)
	}
	if r.ID == "" {
		t.Error("report should carry an ID")
	}
	if r.Mode != "all" {
		t.Errorf("mode = %q", r.Mode)
	}
	if r.InlineRemoved != 2 {
		t.Errorf("InlineRemoved = %d, want 2", r.InlineRemoved)
	}
	if !r.BoundaryFound || r.BoundaryLine != 2 || r.LinesDropped != 3 {
		t.Errorf("unexpected boundary: %+v", r.Stats)
	}
	if r.InputBytes != len(in) || r.OutputBytes != len(out) {
		t.Errorf("byte counts %d->%d", r.InputBytes, r.OutputBytes)
	}
	if !r.Changed() {
		t.Error("report should be marked changed")
	}
}

func TestRunWithReportUnchanged(t *testing.T) {
	out, r := New(config.Default()).RunWithReport("plain text")
	if out != "plain text" || r.Changed() {
		t.Errorf("got %q, %+v", out, r.Stats)
	}
}
