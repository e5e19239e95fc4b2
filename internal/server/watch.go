package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before reloading.
const DefaultDebounce = 300 * time.Millisecond

// Watch reloads whenever the file at path changes, until ctx is done.
// The parent directory is watched so editors that replace the file by
// renaming keep triggering reloads.
func (s *Server) Watch(ctx context.Context, path string, wait time.Duration) error {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	s.logger.Info("watching for changes", "path", abs, "debounce", wait)

	debounced := debounce.New(wait)
	reload := func() { s.Reload(ctx) }

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.logger.Debug("source changed", "op", event.Op.String())
				debounced(reload)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", "error", err)
		}
	}
}

// Poll reloads every interval until ctx is done. It serves sources that
// cannot be watched, such as REST tables and databases.
func (s *Server) Poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Reload(ctx)
		}
	}
}
