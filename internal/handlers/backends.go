package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/module"
)

// BackendsHandler groups backend management HTTP handlers.
type BackendsHandler struct {
	Backends *models.BackendStore
}

// backendView is a BackendRow with masked config fields redacted. Raw
// configs hold credentials and never leave the database through the API.
type backendView struct {
	models.BackendRow
	Config map[string]string `json:"config"`
}

func redactRow(row models.BackendRow) backendView {
	view := backendView{BackendRow: row, Config: row.Config}
	if m, ok := module.Get(row.Module); ok {
		view.Config = m.Redact(module.Config(row.Config))
	}
	return view
}

// ListBackends handles GET /api/backends.
func (h *BackendsHandler) ListBackends(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Backends.ListAll(r.Context())
	if err != nil {
		slog.Error("list backends", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]backendView, 0, len(rows))
	for _, row := range rows {
		views = append(views, redactRow(row))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backends": views,
		"count":    len(views),
	})
}

// CreateBackend handles POST /api/backends. The config is validated against
// the module schema before anything is stored.
func (h *BackendsHandler) CreateBackend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string            `json:"name"`
		Module string            `json:"module"`
		Config map[string]string `json:"config"`
		Active *bool             `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || body.Module == "" {
		writeError(w, http.StatusBadRequest, "name and module are required")
		return
	}

	m, ok := module.Get(body.Module)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown module: "+body.Module)
		return
	}
	cfg, err := m.ValidateConfig(module.Config(body.Config))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if body.Active != nil {
		active = *body.Active
	}
	row := models.BackendRow{
		Name:   body.Name,
		Module: m.Name,
		Config: cfg,
		Active: active,
	}
	if err := h.Backends.Create(r.Context(), &row); err != nil {
		slog.Error("create backend", "name", body.Name, "err", err)
		writeError(w, http.StatusInternalServerError, "could not create backend")
		return
	}

	writeJSON(w, http.StatusCreated, redactRow(row))
}

// ToggleBackend handles POST /api/backends/{name}/toggle.
func (h *BackendsHandler) ToggleBackend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Backends.ToggleActive(r.Context(), name, body.Active); err != nil {
		slog.Error("toggle backend", "name", name, "err", err)
		writeError(w, http.StatusNotFound, "backend not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"name": name, "active": body.Active})
}

// DeleteBackend handles DELETE /api/backends/{name}.
func (h *BackendsHandler) DeleteBackend(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Backends.Delete(r.Context(), name); err != nil {
		slog.Error("delete backend", "name", name, "err", err)
		writeError(w, http.StatusNotFound, "backend not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
