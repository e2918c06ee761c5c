package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/models"
)

// SnapshotsHandler serves the captured listings from the refresh worker.
type SnapshotsHandler struct {
	Snapshots *models.SnapshotStore
}

// ListSnapshots handles GET /api/snapshots/{backend} and returns the latest
// snapshot of every kind captured for the backend.
func (h *SnapshotsHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")

	snaps, err := h.Snapshots.ListForBackend(r.Context(), backend)
	if err != nil {
		slog.Error("list snapshots", "backend", backend, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snaps == nil {
		snaps = []models.Snapshot{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":   backend,
		"snapshots": snaps,
		"count":     len(snaps),
	})
}

// GetLatestSnapshot handles GET /api/snapshots/{backend}/latest?kind=. The
// kind is a query parameter because kinds like "transactions/42" contain
// slashes.
func (h *SnapshotsHandler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	backend := chi.URLParam(r, "backend")
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		writeError(w, http.StatusBadRequest, "kind query parameter is required")
		return
	}

	snap, err := h.Snapshots.Latest(r.Context(), backend, kind)
	if err != nil {
		if errors.Is(err, models.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("latest snapshot", "backend", backend, "kind", kind, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, snap)
}
