package handlers

import (
	"net/http"

	"github.com/gleanerd/gleaner/internal/module"
)

// ModulesHandler serves the module registry.
type ModulesHandler struct{}

type moduleInfo struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Version      string               `json:"version"`
	Capabilities []string             `json:"capabilities"`
	ConfigSchema []module.ConfigField `json:"config_schema"`
}

// ListModules handles GET /api/modules.
func (h *ModulesHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	mods := module.List()

	infos := make([]moduleInfo, 0, len(mods))
	for _, m := range mods {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		infos = append(infos, moduleInfo{
			Name:         m.Name,
			Description:  m.Description,
			Version:      m.Version,
			Capabilities: caps,
			ConfigSchema: m.ConfigSchema,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"modules": infos,
		"count":   len(infos),
	})
}
