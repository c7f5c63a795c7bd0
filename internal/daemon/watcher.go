package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Watch reloads the config whenever one of its files changes, until ctx is
// cancelled. Parent directories are watched rather than the files so that
// editors replacing a file atomically are still noticed.
func Watch(ctx context.Context, r *Reloader, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := map[string]struct{}{}
	tracked := map[string]struct{}{}
	refresh := func() {
		tracked = map[string]struct{}{}
		for _, f := range append([]string{r.Path()}, r.Files()...) {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			tracked[abs] = struct{}{}
			dir := filepath.Dir(abs)
			if _, ok := watched[dir]; ok {
				continue
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				logger.Debug("watcher: config dir missing", slog.String("dir", dir))
				continue
			}
			if err := w.Add(dir); err != nil {
				logger.Warn("watcher: add dir failed", slog.String("dir", dir), slog.String("error", err.Error()))
				continue
			}
			watched[dir] = struct{}{}
		}
	}
	refresh()

	logger.Info("watcher: started", slog.String("config", r.Path()))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			if err := r.Reload(); err == nil {
				refresh()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := tracked[abs]; !ok {
				continue
			}
			logger.Debug("watcher: config changed", slog.String("path", abs), slog.String("op", ev.Op.String()))
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
