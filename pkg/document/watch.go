package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a watcher waits for more changes before
// checking again
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-checks a workspace whenever one of its selected files changes
type Watcher struct {
	ws       *Workspace
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a watcher for ws. A debounce of zero uses
// DefaultDebounce.
func NewWatcher(ws *Workspace, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{ws: ws, watcher: watcher, debounce: debounce}, nil
}

// Run checks the workspace once, then again after every burst of changes,
// passing each report to onReport. It returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, onReport func(*Report)) error {
	defer w.watcher.Close()

	if err := w.addWatches(w.ws.Root()); err != nil {
		return err
	}
	if err := w.check(ctx, onReport); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handle(event) && !pending {
				pending = true
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.ws.log.Warningf("watch error: %s", err)

		case <-timer.C:
			pending = false
			if err := w.check(ctx, onReport); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.ws.log.Errorf("check failed: %s", err)
			}
		}
	}
}

// handle updates the cache for event and reports whether a selected file
// changed
func (w *Watcher) handle(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.ws.Root(), event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatches(event.Name); err != nil {
				w.ws.log.Warningf("failed to watch %s: %s", rel, err)
			}
			return true
		}
	}
	if !w.ws.cfg.Files.Matches(rel) {
		return false
	}
	w.ws.log.Debugf("%s: %s", event.Op, rel)
	w.ws.Invalidate(rel)
	return true
}

func (w *Watcher) check(ctx context.Context, onReport func(*Report)) error {
	report, err := w.ws.Check(ctx)
	if err != nil {
		return err
	}
	onReport(report)
	return nil
}

// addWatches watches root and every directory below it, skipping hidden
// directories
func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
