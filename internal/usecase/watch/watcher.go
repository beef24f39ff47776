// Package watch keeps one package directory in sync with the document table.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/srcdex/internal/domain"
	"github.com/kailas-cloud/srcdex/internal/pathcodec"
)

// DefaultDebounce is the quiet period before pending changes are applied.
const DefaultDebounce = 250 * time.Millisecond

// Flush summarizes one batch of applied changes.
type Flush struct {
	Added   []string
	Failed  []string
	Removed int
}

// Watcher re-adds written files and cleans up the package after removals.
// Changes are coalesced until no event arrived for the debounce period.
type Watcher struct {
	table    Table
	filter   Filter
	dir      string
	name     string
	pkg      string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *zap.Logger
	onFlush  func(Flush)

	mu      sync.Mutex
	pending map[string]struct{}
	removed bool
}

// New creates a watcher for the package rooted at dir. name overrides the
// package name, which otherwise is the base name of dir.
func New(table Table, filter Filter, dir, name string, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.NewIOError(dir, err)
	}
	if name == "" {
		name = filepath.Base(abs)
	}
	pkg, err := pathcodec.ToUTF8(name)
	if err != nil {
		return nil, domain.NewEncodingError(name, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		table:    table,
		filter:   filter,
		dir:      abs,
		name:     name,
		pkg:      pkg,
		debounce: debounce,
		fsw:      fsw,
		logger:   zap.NewNop(),
		pending:  make(map[string]struct{}),
	}, nil
}

// WithLogger sets the logger.
func (w *Watcher) WithLogger(l *zap.Logger) *Watcher {
	if l != nil {
		w.logger = l
	}
	return w
}

// OnFlush registers a callback invoked after each applied batch.
func (w *Watcher) OnFlush(fn func(Flush)) *Watcher {
	w.onFlush = fn
	return w
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	if err := w.watchTree(w.dir); err != nil {
		return err
	}
	w.logger.Info("Watching package",
		zap.String("package", w.pkg),
		zap.String("dir", w.dir),
		zap.Duration("debounce", w.debounce),
	)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watch error", zap.Error(err))
		case <-timer.C:
			w.flush(ctx)
		}
	}
}

// watchTree registers dir and every non-ignored directory below it.
func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return domain.NewIOError(path, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.dir && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return domain.NewIOError(path, err)
		}
		return nil
	})
}

// handle records ev and reports whether anything became pending.
func (w *Watcher) handle(ev fsnotify.Event) bool {
	if ev.Name == w.dir || w.ignored(ev.Name) {
		return false
	}
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil {
		return false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, rel)
		w.removed = true
		w.mu.Unlock()
		return true
	case ev.Has(fsnotify.Create):
		if err := w.watchTree(ev.Name); err == nil {
			// A directory moved in brings files that never produced events.
			w.queueTree(ev.Name)
		}
		return true
	case ev.Has(fsnotify.Write):
		w.queue(rel)
		return true
	}
	return false
}

func (w *Watcher) queue(rel string) {
	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
}

// queueTree queues path if it is a regular file, or every regular file below it.
func (w *Watcher) queueTree(path string) {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.ignored(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			if rel, err := filepath.Rel(w.dir, p); err == nil {
				w.queue(rel)
			}
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	if w.filter == nil {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	return w.filter.Ignored(rel)
}

// flush applies pending changes: every queued file is offered to Add and,
// after any removal, the package is cleaned up.
func (w *Watcher) flush(ctx context.Context) Flush {
	w.mu.Lock()
	rels := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		rels = append(rels, rel)
	}
	removed := w.removed
	w.pending = make(map[string]struct{})
	w.removed = false
	w.mu.Unlock()
	sort.Strings(rels)

	var out Flush
	for _, rel := range rels {
		outcome, err := w.table.Add(ctx, w.dir, rel, w.name)
		if err != nil {
			// Short-lived files are routinely gone by the time the batch runs.
			if errors.Is(err, domain.ErrIO) {
				removed = true
			}
			w.logger.Warn("Failed to add file",
				zap.String("package", w.pkg),
				zap.String("restpath", rel),
				zap.Error(err),
			)
			out.Failed = append(out.Failed, rel)
			continue
		}
		w.logger.Debug("File changed",
			zap.String("package", w.pkg),
			zap.String("restpath", rel),
			zap.Stringer("outcome", outcome),
		)
		out.Added = append(out.Added, rel)
	}

	if removed {
		n, err := w.table.CleanupPackageName(ctx, w.pkg, nil)
		if err != nil {
			w.logger.Error("Package cleanup failed", zap.String("package", w.pkg), zap.Error(err))
		}
		out.Removed = n
	}

	if w.onFlush != nil {
		w.onFlush(out)
	}
	return out
}
