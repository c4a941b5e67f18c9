// Package watch regenerates the changelog whenever the repository's refs move.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// RegenerateFunc rebuilds the changelog. Errors are logged and watching continues.
type RegenerateFunc func(ctx context.Context) error

// RefWatcher watches a git directory for ref changes: new commits on a
// branch, created or deleted tags, HEAD moves, and packed-refs rewrites.
type RefWatcher struct {
	gitDir   string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	closed   bool
}

// NewRefWatcher creates a RefWatcher for gitDir.
func NewRefWatcher(gitDir string, debounce time.Duration) (*RefWatcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	rw := &RefWatcher{
		gitDir:   gitDir,
		debounce: debounce,
		watcher:  watcher,
	}
	if err := rw.addTree(); err != nil {
		watcher.Close()
		return nil, err
	}
	return rw, nil
}

// Run regenerates once, then again after every burst of ref changes, until
// ctx is cancelled. Regenerations never overlap; changes that arrive while
// one is running are coalesced into a single follow-up run.
func (w *RefWatcher) Run(ctx context.Context, regenerate RegenerateFunc) error {
	log := logr.FromContextOrDiscard(ctx).WithName("watch")

	// capacity 1: a pending trigger absorbs any further ones
	triggers := make(chan struct{}, 1)
	triggers <- struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(triggers)
		return w.pump(ctx, log, triggers)
	})
	g.Go(func() error {
		for range triggers {
			if ctx.Err() != nil {
				return nil
			}
			if err := regenerate(ctx); err != nil {
				log.Error(err, "regeneration failed")
			}
		}
		return nil
	})

	return g.Wait()
}

// Close stops watching. It is safe to call more than once.
func (w *RefWatcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.watcher.Close()
}

// pump turns fsnotify events into debounced triggers.
func (w *RefWatcher) pump(ctx context.Context, log logr.Logger, triggers chan<- struct{}) error {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.trackNewDir(event, log)
			if !w.relevant(event) {
				continue
			}
			log.V(1).Info("ref change", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			select {
			case triggers <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "watcher error")
		}
	}
}

// relevant reports whether an event can change the changelog.
func (w *RefWatcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if strings.HasSuffix(event.Name, ".lock") {
		return false
	}
	rel, err := filepath.Rel(w.gitDir, event.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	switch {
	case rel == "HEAD", rel == "packed-refs":
		return true
	case strings.HasPrefix(rel, "refs/"):
		return true
	default:
		return false
	}
}

// trackNewDir starts watching directories created under refs/, such as
// refs/tags/release/ for a tag named release/v1.
func (w *RefWatcher) trackNewDir(event fsnotify.Event, log logr.Logger) {
	if !event.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(event.Name); err != nil {
		log.V(1).Info("could not watch directory", "path", event.Name, "error", err.Error())
	}
}

// addTree watches the git directory itself and every directory under refs/.
func (w *RefWatcher) addTree() error {
	if err := w.watcher.Add(w.gitDir); err != nil {
		return fmt.Errorf("watching %s: %w", w.gitDir, err)
	}
	refs := filepath.Join(w.gitDir, "refs")
	err := filepath.WalkDir(refs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching refs: %w", err)
	}
	return nil
}
