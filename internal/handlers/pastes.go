package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// PastesHandler serves paste capability endpoints.
type PastesHandler struct {
	opener
}

// NewPastesHandler creates a PastesHandler backed by the backend store.
func NewPastesHandler(backends *models.BackendStore) *PastesHandler {
	return &PastesHandler{opener{backends: backends}}
}

// CreatePaste handles POST /api/pastes. The paste is uploaded to the named
// backend; for encrypted services the returned ID and URL carry the
// decryption key in the fragment.
func (h *PastesHandler) CreatePaste(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Backend  string `json:"backend"`
		Title    string `json:"title,omitempty"`
		Contents string `json:"contents"`
		Public   bool   `json:"public"`
		// MaxAge is a Go duration string ("10m", "24h"). Empty or "0"
		// means keep forever.
		MaxAge string `json:"max_age,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Backend == "" || body.Contents == "" {
		writeError(w, http.StatusBadRequest, "backend and contents are required")
		return
	}

	var maxAge time.Duration
	if body.MaxAge != "" && body.MaxAge != "0" {
		d, err := time.ParseDuration(body.MaxAge)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, "invalid max_age")
			return
		}
		maxAge = d
	}

	backend, err := h.open(r.Context(), body.Backend)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	cap, err := backend.AsPaste()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	if !cap.CanPost(body.Contents, body.Public, maxAge) {
		writeError(w, http.StatusUnprocessableEntity, "backend rejects this paste")
		return
	}

	record := &capability.PasteRecord{
		Title:    body.Title,
		Contents: body.Contents,
		Public:   body.Public,
	}
	if err := cap.PostPaste(r.Context(), record, maxAge); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"backend": body.Backend,
		"paste":   record,
	})
}

// GetPaste handles GET /api/pastes/{id}?backend=&key=. Browsers never send
// URL fragments, so the decryption key travels as a query parameter and is
// reattached here.
func (h *PastesHandler) GetPaste(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	name := r.URL.Query().Get("backend")
	if name == "" {
		writeError(w, http.StatusBadRequest, "backend is required")
		return
	}
	if key := r.URL.Query().Get("key"); key != "" {
		id = id + "#" + key
	}

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	cap, err := backend.AsPaste()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	record, err := cap.Paste(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend": name,
		"paste":   record,
	})
}
