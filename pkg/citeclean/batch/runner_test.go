package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/citeclean/internal/textio"
	"github.com/cognicore/citeclean/pkg/citeclean"
	"github.com/cognicore/citeclean/pkg/citeclean/config"
	"github.com/cognicore/citeclean/pkg/citeclean/report"
	"github.com/cognicore/citeclean/pkg/citeclean/store/memstore"
)

type fakeSource struct {
	docs []Doc
	errs map[int]error
	idx  int
}

func (f *fakeSource) Next(ctx context.Context) (Doc, bool, error) {
	if f.idx >= len(f.docs) {
		return Doc{}, false, nil
	}
	i := f.idx
	f.idx++
	if err := f.errs[i]; err != nil {
		return Doc{ID: f.docs[i].ID}, true, err
	}
	return f.docs[i], true, nil
}

type memSink struct {
	docs map[string]string
	err  error
}

func (s *memSink) Write(ctx context.Context, doc Doc) error {
	if s.err != nil {
		return s.err
	}
	if s.docs == nil {
		s.docs = make(map[string]string)
	}
	s.docs[doc.ID] = doc.Text
	return nil
}

func (s *memSink) Close() error { return nil }

type countingObserver struct {
	observed, errors int
}

func (o *countingObserver) Observe(report.Report, time.Duration) { o.observed++ }
func (o *countingObserver) ObserveError()                        { o.errors++ }

func TestRunnerCleansAndRecords(t *testing.T) {
	st := memstore.New()
	sink := &memSink{}
	obs := &countingObserver{}
	r := Runner{
		Cleaner: citeclean.New(config.Default()),
		Source: &fakeSource{docs: []Doc{
			{ID: "a", Text: "Claim[1].\n\n[1]: https://example.com"},
			{ID: "b", Text: "Nothing to strip."},
		}},
		Sink:    sink,
		Store:   st,
		Metrics: obs,
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Processed: 2, Changed: 1}, res)
	assert.Equal(t, "Claim.\n", sink.docs["a"])
	assert.Equal(t, "Nothing to strip.", sink.docs["b"])
	assert.Equal(t, 2, obs.observed)

	runs, err := st.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	sources := []string{runs[0].Source, runs[1].Source}
	assert.ElementsMatch(t, []string{"a", "b"}, sources)
}

func TestRunnerCountsErrors(t *testing.T) {
	obs := &countingObserver{}
	r := Runner{
		Cleaner: citeclean.New(config.Default()),
		Source: &fakeSource{
			docs: []Doc{{ID: "bad"}, {ID: "good", Text: "x[2]"}},
			errs: map[int]error{0: errors.New("unreadable")},
		},
		Sink:    &memSink{},
		Metrics: obs,
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 1, obs.errors)
}

func TestRunnerSinkErrors(t *testing.T) {
	r := Runner{
		Cleaner: citeclean.New(config.Default()),
		Source:  &fakeSource{docs: []Doc{{ID: "a", Text: "a"}}},
		Sink:    &memSink{err: errors.New("disk full")},
	}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Errors: 1}, res)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := Runner{
		Cleaner: citeclean.New(config.Default()),
		Source:  &fakeSource{docs: []Doc{{ID: "a"}}},
		Sink:    &memSink{},
	}
	res, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, res.Processed)
}

func TestRunnerInvalidConfiguration(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background())
	assert.Error(t, err)
}

func TestDirSourceToDirSink(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	files := map[string]string{
		"one.md":            "First[1].\n\n## Sources\n[1]: https://a.example\n",
		"nested/two.md":     "Second[^1] point.\n",
		"nested/skip.txt":   "Not markdown[1].",
		"drafts/ignored.md": "Draft[1].",
	}
	for rel, text := range files {
		path := filepath.Join(in, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}

	filter, err := NewFilter(nil, []string{"drafts/**"})
	require.NoError(t, err)
	src, err := NewDirSource(in, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, src.Len())

	r := Runner{
		Cleaner: citeclean.New(config.Default()),
		Source:  src,
		Sink:    &DirSink{Root: out},
	}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Processed: 2, Changed: 2}, res)

	got, err := os.ReadFile(filepath.Join(out, "one.md"))
	require.NoError(t, err)
	assert.Equal(t, "First.\n", string(got))

	got, err = os.ReadFile(filepath.Join(out, "nested", "two.md"))
	require.NoError(t, err)
	assert.Equal(t, "Second point.\n", string(got))

	_, err = os.Stat(filepath.Join(out, "nested", "skip.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(out, "drafts", "ignored.md"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirSinkRejectsEscapingIDs(t *testing.T) {
	s := &DirSink{Root: t.TempDir()}
	assert.Error(t, s.Write(context.Background(), Doc{ID: "../evil.md"}))
}

func TestJSONLSourceToJSONLSink(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.jsonl")
	outPath := filepath.Join(dir, "out", "clean.jsonl")
	require.NoError(t, os.WriteFile(inPath, []byte(
		`{"id":"r1","text":"Alpha[1] beta."}`+"\n"+
			`{"id":"r2","text":"Gamma.\n\n[1]: https://g.example"}`+"\n"), 0o644))

	src, err := NewJSONLSource(inPath)
	require.NoError(t, err)
	sink, err := NewJSONLSink(outPath)
	require.NoError(t, err)

	r := Runner{Cleaner: citeclean.New(config.Default()), Source: src, Sink: sink}
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.Equal(t, 2, res.Processed)

	recs, err := textio.LoadJSONL(outPath)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, textio.Record{ID: "r1", Text: "Alpha beta."}, recs[0])
	assert.Equal(t, textio.Record{ID: "r2", Text: "Gamma.\n"}, recs[1])
}
