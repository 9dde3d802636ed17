// Package watch keeps an output directory in sync with a directory of
// Markdown files, cleaning each file shortly after it changes.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cognicore/citeclean/internal/textio"
	"github.com/cognicore/citeclean/pkg/citeclean"
	"github.com/cognicore/citeclean/pkg/citeclean/batch"
	"github.com/cognicore/citeclean/pkg/citeclean/metrics"
	"github.com/cognicore/citeclean/pkg/citeclean/store"
)

const DefaultDebounce = 200 * time.Millisecond

type Options struct {
	Include  []string
	Exclude  []string
	Debounce time.Duration
	// Initial cleans every matching file once before waiting for changes.
	Initial bool
	Store   store.Store
	Metrics *metrics.Metrics
	Logger  *log.Logger
}

type Watcher struct {
	cleaner *citeclean.Cleaner
	inDir   string
	outDir  string
	filter  *batch.Filter
	opts    Options
	ready   chan struct{}

	pendingMu sync.Mutex
	pending   map[string]struct{}
	timer     *time.Timer
	flush     chan struct{}
}

// New validates the directories and patterns. Nothing is watched until Run.
func New(cleaner *citeclean.Cleaner, inDir, outDir string, opts Options) (*Watcher, error) {
	if cleaner == nil {
		return nil, errors.New("watch: nil cleaner")
	}
	info, err := os.Stat(inDir)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", inDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch %s: not a directory", inDir)
	}
	filter, err := batch.NewFilter(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	absIn, err := filepath.Abs(inDir)
	if err != nil {
		return nil, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, err
	}
	if absIn == absOut {
		return nil, fmt.Errorf("watch %s: output directory must differ from input", inDir)
	}
	return &Watcher{
		cleaner: cleaner,
		inDir:   absIn,
		outDir:  absOut,
		filter:  filter,
		opts:    opts,
		ready:   make(chan struct{}),
		pending: make(map[string]struct{}),
		flush:   make(chan struct{}, 1),
	}, nil
}

// Ready is closed once every directory is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.watchRecursive(fsw, w.inDir); err != nil {
		return err
	}
	if w.opts.Initial {
		w.enqueueExisting(w.inDir)
	}
	close(w.ready)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logf("Warning: watcher error: %v", err)

		case <-w.flush:
			w.process(ctx, w.drain())
		}
	}
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if w.inOutput(event.Name) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchRecursive(fsw, event.Name); err != nil {
				w.logf("Warning: failed to watch new directory %s: %v", event.Name, err)
				return
			}
			w.enqueueExisting(event.Name)
			return
		}
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		w.schedule(event.Name)
	}
}

func (w *Watcher) watchRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.inOutput(path) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) enqueueExisting(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.inOutput(path) {
				return filepath.SkipDir
			}
			return nil
		}
		w.schedule(path)
		return nil
	})
}

// inOutput reports whether path lies in the output tree, which may be nested
// inside the input tree.
func (w *Watcher) inOutput(path string) bool {
	path = filepath.Clean(path)
	return path == w.outDir || strings.HasPrefix(path, w.outDir+string(filepath.Separator))
}

func (w *Watcher) schedule(path string) {
	rel, err := filepath.Rel(w.inDir, path)
	if err != nil || !w.filter.Match(rel) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.flush <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) drain() []string {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	paths := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		paths = append(paths, rel)
	}
	w.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}

func (w *Watcher) stopTimer() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) process(ctx context.Context, rels []string) {
	if len(rels) == 0 {
		return
	}
	r := batch.Runner{
		Cleaner: w.cleaner,
		Source:  &fileSource{root: w.inDir, rels: rels},
		Sink:    &batch.DirSink{Root: w.outDir},
		Store:   w.opts.Store,
		Logger:  w.logger(),
	}
	if w.opts.Metrics != nil {
		r.Metrics = w.opts.Metrics
		for range rels {
			w.opts.Metrics.ObserveWatchEvent()
		}
	}
	res, err := r.Run(ctx)
	if err != nil {
		return
	}
	w.logf("cleaned %d files (%d changed, %d errors)", res.Processed, res.Changed, res.Errors)
}

func (w *Watcher) logf(format string, args ...any) {
	w.logger().Printf(format, args...)
}

func (w *Watcher) logger() *log.Logger {
	if w.opts.Logger != nil {
		return w.opts.Logger
	}
	return log.Default()
}

// fileSource yields a fixed list of files. Files deleted before they are
// read are skipped.
type fileSource struct {
	root string
	rels []string
	idx  int
}

func (s *fileSource) Next(ctx context.Context) (batch.Doc, bool, error) {
	for s.idx < len(s.rels) {
		rel := s.rels[s.idx]
		s.idx++
		text, err := textio.ReadInput(filepath.Join(s.root, rel), nil)
		if err != nil {
			if _, statErr := os.Stat(filepath.Join(s.root, rel)); os.IsNotExist(statErr) {
				continue
			}
			return batch.Doc{ID: rel}, true, err
		}
		return batch.Doc{ID: filepath.ToSlash(rel), Text: text}, true, nil
	}
	return batch.Doc{}, false, nil
}
