// Package configwatch reloads settings when the config file changes on disk.
package configwatch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce is how long the watcher waits after the last change before
// calling reload. Editors often write a file in several steps.
const Debounce = 200 * time.Millisecond

// ReloadFunc is called after the watched file settles. A returned error is
// logged and the previous settings stay in effect.
type ReloadFunc func() error

// Watch watches path until ctx is cancelled and calls reload after each
// burst of changes. The parent directory is watched rather than the file
// itself so atomic replace-by-rename saves are seen.
func Watch(ctx context.Context, path string, logger *slog.Logger, reload ReloadFunc) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("path", abs))

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-fire:
			fire = nil
			if err := reload(); err != nil {
				logger.Warn("config watcher: reload failed",
					slog.String("path", abs),
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("config watcher: reloaded", slog.String("path", abs))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(Debounce)
			} else {
				timer.Reset(Debounce)
			}
			fire = timer.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
