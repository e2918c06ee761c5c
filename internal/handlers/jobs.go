package handlers

import (
	"net/http"
	"strconv"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// JobsHandler serves job capability endpoints.
type JobsHandler struct {
	opener
}

// NewJobsHandler creates a JobsHandler backed by the backend store.
func NewJobsHandler(backends *models.BackendStore) *JobsHandler {
	return &JobsHandler{opener{backends: backends}}
}

type jobHit struct {
	Backend string `json:"backend"`
	capability.JobAdvert
}

// SearchJobs handles GET /api/jobs?backend=&q=&category=&limit=. Without
// ?backend= the search fans out across every active job backend.
func (h *JobsHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := capability.JobFilters{
		Pattern:  q.Get("q"),
		Category: q.Get("category"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filters.Limit = n
	}

	targets, err := h.pick(r.Context(), q.Get("backend"), capability.JobName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	hits := []jobHit{}
	for _, backend := range targets {
		cap, err := backend.AsJob()
		if err != nil {
			continue
		}
		adverts, err := cap.AdvancedSearchJobs(r.Context(), filters)
		if err != nil {
			logSearchErr("search jobs", backend.Name, err)
			continue
		}
		for _, ad := range adverts {
			hits = append(hits, jobHit{Backend: backend.Name, JobAdvert: ad})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":  hits,
		"count": len(hits),
	})
}
