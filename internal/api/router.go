// Package api implements the browser-facing REST API of the desktop using chi.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
	"github.com/nosyt/nosytos/internal/journal"
)

// Desktop is the window state served over HTTP.
type Desktop interface {
	Windows() []desktop.WindowView
	Window(id string) (desktop.WindowView, bool)
	Taskbar() []desktop.TaskbarEntry
	Apps() []desktop.AppView
	Open(appID string) bool
	Apply(action, id string) (bool, error)
	ClickTaskbar(id string) bool
}

// Dispatcher routes raw pointer and keyboard events.
type Dispatcher interface {
	Dispatch(e events.Event) (bool, error)
}

// Journal serves recorded transitions.
type Journal interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Deps are the collaborators mounted by NewRouter. Stream and Journal are
// optional.
type Deps struct {
	Desktop    Desktop
	Dispatcher Dispatcher
	Stream     http.Handler
	Journal    Journal
}

// NewRouter creates the full HTTP handler: middleware, health checks, and the
// API under /api.
func NewRouter(deps Deps) chi.Router {
	h := NewHandler(deps)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/windows", h.ListWindows)
		r.Get("/windows/{id}", h.GetWindow)
		r.Post("/windows/{id}/{action}", h.WindowAction)

		r.Get("/taskbar", h.Taskbar)
		r.Post("/taskbar/{id}/click", h.ClickTaskbar)

		r.Get("/apps", h.ListApps)
		r.Post("/apps/{appID}/open", h.OpenApp)

		r.Post("/input", h.Input)
		r.Get("/journal", h.Journal)

		if deps.Stream != nil {
			r.Get("/stream", deps.Stream.ServeHTTP)
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
