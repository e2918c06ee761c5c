// Package mealdb implements a recipe backend over TheMealDB JSON API.
package mealdb

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "mealdb",
		Description:  "TheMealDB recipe database",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.RecipeName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "API base URL", Default: "https://www.themealdb.com"},
			{Key: "api_key", Label: "API key", Masked: true, Default: "1"},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg.Get("url"), cfg.Get("api_key"))
		},
	})
}
