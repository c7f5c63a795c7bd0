package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nosyt/nosytos/internal/events"
)

// Handler holds API route handlers.
type Handler struct {
	desk       Desktop
	dispatcher Dispatcher
	journal    Journal
}

func NewHandler(deps Deps) *Handler {
	return &Handler{desk: deps.Desktop, dispatcher: deps.Dispatcher, journal: deps.Journal}
}

// ListWindows handles GET /api/windows.
func (h *Handler) ListWindows(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"windows": h.desk.Windows()})
}

// GetWindow handles GET /api/windows/{id}.
func (h *Handler) GetWindow(w http.ResponseWriter, r *http.Request) {
	view, ok := h.desk.Window(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("window not found"))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// WindowAction handles POST /api/windows/{id}/{action}.
func (h *Handler) WindowAction(w http.ResponseWriter, r *http.Request) {
	applied, err := h.desk.Apply(chi.URLParam(r, "action"), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// Taskbar handles GET /api/taskbar.
func (h *Handler) Taskbar(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": h.desk.Taskbar()})
}

// ClickTaskbar handles POST /api/taskbar/{id}/click.
func (h *Handler) ClickTaskbar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: h.desk.ClickTaskbar(chi.URLParam(r, "id"))})
}

// ListApps handles GET /api/apps.
func (h *Handler) ListApps(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"apps": h.desk.Apps()})
}

// OpenApp handles POST /api/apps/{appID}/open.
func (h *Handler) OpenApp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: h.desk.Open(chi.URLParam(r, "appID"))})
}

// Input handles POST /api/input. The body is a single pointer or keyboard
// event as produced by the browser shell.
func (h *Handler) Input(w http.ResponseWriter, r *http.Request) {
	var e events.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&e); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
		return
	}
	applied, err := h.dispatcher.Dispatch(e)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, AppliedResponse{Applied: applied})
}

// Journal handles GET /api/journal?limit=N.
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeJSON(w, http.StatusNotFound, errorBody("journal disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.journal.Recent(r.Context(), limit)
	if err != nil {
		slog.Error("journal query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
