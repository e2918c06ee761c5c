package handlers

import (
	"net/http"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// TorrentsHandler serves torrent capability endpoints.
type TorrentsHandler struct {
	opener
}

// NewTorrentsHandler creates a TorrentsHandler backed by the backend store.
func NewTorrentsHandler(backends *models.BackendStore) *TorrentsHandler {
	return &TorrentsHandler{opener{backends: backends}}
}

type torrentHit struct {
	Backend string `json:"backend"`
	capability.TorrentResult
}

// SearchTorrents handles GET /api/torrents?backend=&q=. Without ?backend=
// the search fans out across every active torrent backend.
func (h *TorrentsHandler) SearchTorrents(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("q")
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	targets, err := h.pick(r.Context(), r.URL.Query().Get("backend"), capability.TorrentName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	hits := []torrentHit{}
	for _, backend := range targets {
		cap, err := backend.AsTorrent()
		if err != nil {
			continue
		}
		results, err := cap.SearchTorrents(r.Context(), pattern)
		if err != nil {
			logSearchErr("search torrents", backend.Name, err)
			continue
		}
		for _, res := range results {
			hits = append(hits, torrentHit{Backend: backend.Name, TorrentResult: res})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"torrents": hits,
		"count":    len(hits),
	})
}
