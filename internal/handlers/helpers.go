// Package handlers implements the HTTP API: module and backend management
// plus per-capability accessors that drive the site modules live.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/module"
)

// writeJSON encodes v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeBackendError translates capability sentinel errors into HTTP status
// codes. Upstream site failures become 502: the problem is the scraped
// site, not this service.
func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, capability.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, capability.ErrNotSupported):
		writeError(w, http.StatusNotImplemented, err.Error())
	case errors.Is(err, capability.ErrIncorrectCredentials),
		errors.Is(err, capability.ErrNotLoggedIn),
		errors.Is(err, capability.ErrCaptchaRequired),
		errors.Is(err, capability.ErrSiteUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		slog.Error("backend operation", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// logSearchErr records a per-backend failure during a fan-out search.
// Aggregation keeps going: one broken site must not empty the response.
func logSearchErr(op, backend string, err error) {
	slog.Warn(op, "backend", backend, "err", err)
}

// opener resolves backend names from the database into opened module
// instances. Every capability handler embeds one.
type opener struct {
	backends *models.BackendStore
}

// open looks up one backend by name and instantiates its module.
func (o opener) open(ctx context.Context, name string) (*module.Backend, error) {
	row, err := o.backends.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return module.OpenBackend(row.Name, row.Module, module.Config(row.Config))
}

// openAll instantiates every active backend advertising the capability.
// Backends that fail to open are logged and skipped.
func (o opener) openAll(ctx context.Context, cap capability.Name) ([]*module.Backend, error) {
	rows, err := o.backends.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var out []*module.Backend
	for _, row := range rows {
		mod, ok := module.Get(row.Module)
		if !ok || !capability.Has(mod.Capabilities, cap) {
			continue
		}
		b, err := module.OpenBackend(row.Name, row.Module, module.Config(row.Config))
		if err != nil {
			slog.Error("open backend", "backend", row.Name, "err", err)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// pick returns the single named backend, or all active backends with the
// capability when name is empty. Aggregation endpoints use this to fan out.
func (o opener) pick(ctx context.Context, name string, cap capability.Name) ([]*module.Backend, error) {
	if name != "" {
		b, err := o.open(ctx, name)
		if err != nil {
			return nil, err
		}
		return []*module.Backend{b}, nil
	}
	return o.openAll(ctx, cap)
}
