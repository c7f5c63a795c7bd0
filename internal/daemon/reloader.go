package daemon

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/nosyt/nosytos/internal/config"
)

// AppSetter receives the launcher map on reload.
type AppSetter interface {
	SetApps(apps map[string]config.App) int
}

// Reloader re-reads the config file and applies the parts that can change
// while the daemon runs: the launcher map and the log level. Windows are
// fixed at start-up.
type Reloader struct {
	path   string
	desk   AppSetter
	level  *slog.LevelVar
	logger *slog.Logger

	mu    sync.Mutex
	files []string
}

func NewReloader(path string, desk AppSetter, level *slog.LevelVar, logger *slog.Logger) *Reloader {
	return &Reloader{
		path:   path,
		desk:   desk,
		level:  level,
		logger: logger,
	}
}

// Reload loads the config and applies it. A failed load leaves the running
// state untouched.
func (r *Reloader) Reload() (err error) {
	// A panic here must not take the daemon down.
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("reload panic recovered", "error", rec)
			err = fmt.Errorf("reload panicked: %v", rec)
		}
	}()

	res, err := config.LoadFromPath(r.path)
	if err != nil {
		r.logger.Warn("config reload failed", "path", r.path, "error", err)
		return err
	}
	r.apply(res)
	return nil
}

func (r *Reloader) apply(res *config.LoadResult) {
	apps := r.desk.SetApps(res.Config.Apps)
	if r.level != nil {
		r.level.Set(res.Config.SlogLevel())
	}

	r.mu.Lock()
	r.files = append([]string(nil), res.Files...)
	r.mu.Unlock()

	r.logger.Info("config reloaded", "path", r.path, "apps", apps, "log_level", res.Config.SlogLevel().String())
}

// Path is the root config file.
func (r *Reloader) Path() string {
	return r.path
}

// Files lists the config files read by the last successful load, includes
// included.
func (r *Reloader) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}

func (r *Reloader) setFiles(files []string) {
	r.mu.Lock()
	r.files = append([]string(nil), files...)
	r.mu.Unlock()
}
