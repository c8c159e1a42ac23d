package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce absorbs the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// WatchSiteFile calls onChange with the freshly decoded file every time the
// site config file at path is written, created or replaced. It watches the
// parent directory so atomic-rename saves are seen. Decoding errors are
// logged and skipped. WatchSiteFile blocks until ctx is cancelled.
func WatchSiteFile(ctx context.Context, path string, debounce time.Duration, onChange func(SiteFile)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("site config watch: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("site config watch: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("site config watch %s: %w", filepath.Dir(abs), err)
	}

	slog.Info("watching site config", "path", abs)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		reload = func() {
			sf, err := ReadSiteFile(abs)
			if err != nil {
				slog.Warn("site config reload failed", "path", abs, "error", err)
				return
			}
			slog.Info("site config reloaded", "path", abs)
			onChange(sf)
		}
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("site config watcher error", "error", err)
		}
	}
}
