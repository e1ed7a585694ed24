// Package watch re-runs the indexer when export files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/Zuo-Peng/chatx/internal/scan"
)

const DefaultDebounce = 2 * time.Second

// Watcher monitors every directory beneath a set of roots using OS-level
// notifications.
type Watcher struct {
	fsw      *fsnotify.Watcher
	roots    []string
	include  []string
	debounce time.Duration
	onChange func(ctx context.Context)
}

// New creates a Watcher for roots. onChange runs after a burst of relevant
// events has been quiet for debounce. Runs never overlap.
func New(roots, include []string, debounce time.Duration, onChange func(ctx context.Context)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:      fsw,
		include:  include,
		debounce: debounce,
		onChange: onChange,
	}
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		if st, err := os.Stat(abs); err != nil || !st.IsDir() {
			log.Printf("[watch] skipping %s: not a directory", root)
			continue
		}
		w.roots = append(w.roots, abs)
		w.addTree(abs)
	}
	return w, nil
}

// addTree watches dir and every directory below it.
func (w *Watcher) addTree(dir string) {
	if err := w.fsw.Add(dir); err != nil {
		log.Printf("[watch] cannot watch %s: %v", dir, err)
		return
	}
	err := doublestar.GlobWalk(os.DirFS(dir), "**", func(path string, d fs.DirEntry) error {
		if !d.IsDir() || path == "." {
			return nil
		}
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := w.fsw.Add(full); err != nil {
			log.Printf("[watch] cannot watch %s: %v", full, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("[watch] walk %s: %v", dir, err)
	}
}

// Roots returns the absolute roots being watched.
func (w *Watcher) Roots() []string {
	return w.roots
}

func (w *Watcher) relevant(path string) bool {
	for _, root := range w.roots {
		if scan.Matches(root, w.include, path) {
			return true
		}
	}
	return false
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			trigger := w.relevant(ev.Name)
			if ev.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					// files may land before the new directory is watched
					w.addTree(ev.Name)
					trigger = true
				}
			}
			if !trigger {
				continue
			}
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true
		case <-timer.C:
			pending = false
			w.onChange(ctx)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			log.Printf("[watch] error: %v", err)
		}
	}
}
