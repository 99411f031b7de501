package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Holder publishes the current store. Sessions take a store once when they
// start, so a reload only affects sessions created afterwards.
type Holder struct {
	p atomic.Pointer[Store]
}

// NewHolder returns a holder publishing s, or the empty store if s is nil.
func NewHolder(s *Store) *Holder {
	h := &Holder{}
	h.Set(s)
	return h
}

// Current returns the published store.
func (h *Holder) Current() *Store {
	return h.p.Load()
}

// Set publishes s. A nil store publishes Empty().
func (h *Holder) Set(s *Store) {
	if s == nil {
		s = Empty()
	}
	h.p.Store(s)
}

// ReloadDebounce is how long the watcher waits after the last change before reloading.
var ReloadDebounce = 300 * time.Millisecond

// Watch reloads the catalog at path into h whenever the file changes, until
// ctx is cancelled. The parent directory is watched because the sync tool
// replaces the file by rename. A reload that fails keeps the previous store.
func Watch(ctx context.Context, h *Holder, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create catalog watcher: %w", err)
	}
	defer watcher.Close()

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Info("watching catalog", "path", path)

	src := DirSource(dir)
	reload := func() {
		store, err := Load(ctx, src, name)
		if err != nil {
			slog.Warn("catalog reload failed, keeping previous catalog", "path", path, "error", err)
			return
		}
		h.Set(store)
		slog.Info("catalog reloaded", "path", path, "projects", store.Len())
	}

	// Reloads run on this goroutine, so they never overlap and never start
	// after ctx is done.
	timer := time.NewTimer(ReloadDebounce)
	timer.Stop()
	defer timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pending:
			pending = nil
			reload()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			slog.Debug("catalog changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(ReloadDebounce)
			pending = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("catalog watcher error", "error", err)
		}
	}
}
