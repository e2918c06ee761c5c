package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gleanerd/gleaner/internal/module"
)

// HealthHandler reports service health.
type HealthHandler struct {
	Pool *pgxpool.Pool
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := h.Pool.Ping(r.Context()); err != nil {
		dbOK = false
	}

	status := http.StatusOK
	state := "ok"
	if !dbOK {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":  state,
		"db":      dbOK,
		"modules": len(module.List()),
		"time":    time.Now().UTC(),
	})
}
