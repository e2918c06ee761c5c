package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// RecipesHandler serves recipe capability endpoints.
type RecipesHandler struct {
	opener
}

// NewRecipesHandler creates a RecipesHandler backed by the backend store.
func NewRecipesHandler(backends *models.BackendStore) *RecipesHandler {
	return &RecipesHandler{opener{backends: backends}}
}

type recipeHit struct {
	Backend string `json:"backend"`
	capability.Recipe
}

// SearchRecipes handles GET /api/recipes?backend=&q=. Without ?backend= the
// search fans out across every active recipe backend.
func (h *RecipesHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("q")
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	targets, err := h.pick(r.Context(), r.URL.Query().Get("backend"), capability.RecipeName)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	hits := []recipeHit{}
	for _, backend := range targets {
		cap, err := backend.AsRecipe()
		if err != nil {
			continue
		}
		recipes, err := cap.SearchRecipes(r.Context(), pattern)
		if err != nil {
			logSearchErr("search recipes", backend.Name, err)
			continue
		}
		for _, rec := range recipes {
			hits = append(hits, recipeHit{Backend: backend.Name, Recipe: rec})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"recipes": hits,
		"count":   len(hits),
	})
}

// GetRecipe handles GET /api/recipes/{id}?backend=.
func (h *RecipesHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
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
	cap, err := backend.AsRecipe()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	recipe, err := cap.Recipe(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, recipeHit{Backend: name, Recipe: *recipe})
}
