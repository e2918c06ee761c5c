package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// WeatherHandler serves weather capability endpoints.
type WeatherHandler struct {
	opener
}

// NewWeatherHandler creates a WeatherHandler backed by the backend store.
func NewWeatherHandler(backends *models.BackendStore) *WeatherHandler {
	return &WeatherHandler{opener{backends: backends}}
}

type cityHit struct {
	Backend string `json:"backend"`
	capability.City
}

// SearchCities handles GET /api/weather/cities?backend=&q=.
func (h *WeatherHandler) SearchCities(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("q")
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	targets, err := h.pick(r.Context(), r.URL.Query().Get("backend"), capability.WeatherName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	hits := []cityHit{}
	for _, backend := range targets {
		cap, err := backend.AsWeather()
		if err != nil {
			continue
		}
		cities, err := cap.SearchCities(r.Context(), pattern)
		if err != nil {
			logSearchErr("search cities", backend.Name, err)
			continue
		}
		for _, city := range cities {
			hits = append(hits, cityHit{Backend: backend.Name, City: city})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cities": hits,
		"count":  len(hits),
	})
}

// GetWeather handles GET /api/weather/{cityID}?backend=. The response holds
// the current observation plus the daily forecasts.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	cityID := chi.URLParam(r, "cityID")
	name := r.URL.Query().Get("backend")
	if name == "" {
		writeError(w, http.StatusBadRequest, "backend is required")
		return
	}

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	cap, err := backend.AsWeather()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	current, err := cap.CurrentWeather(r.Context(), cityID)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	forecasts, err := cap.Forecasts(r.Context(), cityID)
	if err != nil {
		// The current observation is still worth returning.
		logSearchErr("forecasts", name, err)
		forecasts = nil
	}
	if forecasts == nil {
		forecasts = []capability.Forecast{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":   name,
		"current":   current,
		"forecasts": forecasts,
	})
}
