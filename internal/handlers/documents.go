package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/storage"
)

// DocumentsHandler serves document capability endpoints and drives the
// archive.
type DocumentsHandler struct {
	opener
	Archive      *storage.Client
	Fingerprints *models.FingerprintStore
}

// NewDocumentsHandler creates a DocumentsHandler.
func NewDocumentsHandler(backends *models.BackendStore, archive *storage.Client, fingerprints *models.FingerprintStore) *DocumentsHandler {
	return &DocumentsHandler{
		opener:       opener{backends: backends},
		Archive:      archive,
		Fingerprints: fingerprints,
	}
}

// ListSubscriptions handles GET /api/backends/{name}/subscriptions.
func (h *DocumentsHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	docs, err := backend.AsDocument()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	subscriptions, err := docs.Subscriptions(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if subscriptions == nil {
		subscriptions = []capability.Subscription{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":       name,
		"subscriptions": subscriptions,
		"count":         len(subscriptions),
	})
}

// ListDocuments handles GET /api/backends/{name}/subscriptions/{id}/documents.
func (h *DocumentsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	subscriptionID := chi.URLParam(r, "id")

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	docs, err := backend.AsDocument()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	documents, err := docs.Documents(r.Context(), subscriptionID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if documents == nil {
		documents = []capability.Document{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":      name,
		"subscription": subscriptionID,
		"documents":    documents,
		"count":        len(documents),
	})
}

// DownloadDocument handles POST /api/backends/{name}/documents/download.
// The document is fetched from the site, archived to object storage and
// returned inline.
func (h *DocumentsHandler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var body struct {
		DocumentID string `json:"document_id"`
		Label      string `json:"label,omitempty"`
		Format     string `json:"format,omitempty"`
		URL        string `json:"url,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	docs, err := backend.AsDocument()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	data, err := docs.DownloadDocument(r.Context(), body.DocumentID)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	archived := false
	if h.Archive.Configured() {
		if err := h.Archive.Store(r.Context(), name, body.DocumentID, body.Label, body.Format, data); err != nil {
			slog.Error("archive document", "backend", name, "document", body.DocumentID, "err", err)
		} else {
			archived = true
			h.recordFingerprint(r, name, body.URL, data)
		}
	}

	w.Header().Set("X-Gleaner-Archived", boolHeader(archived))
	contentType := "application/octet-stream"
	if body.Format == "pdf" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write document body", "err", err)
	}
}

// FetchArchived handles GET /api/backends/{name}/archive/{documentID} and
// serves a previously archived document from object storage.
func (h *DocumentsHandler) FetchArchived(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	documentID := chi.URLParam(r, "documentID")

	if !h.Archive.Configured() {
		writeError(w, http.StatusServiceUnavailable, "document archive not configured")
		return
	}

	data, manifest, err := h.Archive.Fetch(r.Context(), name, documentID)
	if err != nil {
		slog.Warn("fetch archived document", "backend", name, "document", documentID, "err", err)
		writeError(w, http.StatusNotFound, "archived document not found")
		return
	}

	contentType := "application/octet-stream"
	if manifest.Format == "pdf" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Gleaner-SHA256", manifest.SHA256)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("write archived document", "err", err)
	}
}

// DeleteArchived handles DELETE /api/backends/{name}/archive/{documentID}.
func (h *DocumentsHandler) DeleteArchived(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	documentID := chi.URLParam(r, "documentID")

	if !h.Archive.Configured() {
		writeError(w, http.StatusServiceUnavailable, "document archive not configured")
		return
	}

	if err := h.Archive.Delete(r.Context(), name, documentID); err != nil {
		slog.Error("delete archived document", "backend", name, "document", documentID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentsHandler) recordFingerprint(r *http.Request, backend, docURL string, data []byte) {
	if docURL == "" {
		return
	}
	urlHash := models.HashDocumentURL(backend, docURL)
	exists, _, err := h.Fingerprints.ExistsOrBlocked(r.Context(), urlHash)
	if err != nil || exists {
		return
	}
	fp := &models.Fingerprint{URLHash: urlHash, ContentHash: models.HashContent(data)}
	if err := h.Fingerprints.Create(r.Context(), fp); err != nil {
		slog.Error("create fingerprint", "backend", backend, "err", err)
	}
}

func boolHeader(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
