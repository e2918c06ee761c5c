// Package remotive implements a job-posting backend over the Remotive
// remote-jobs JSON API.
package remotive

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "remotive",
		Description:  "Remotive remote job board",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.JobName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "API base URL", Default: "https://remotive.com"},
			{Key: "limit", Label: "Default result limit", Default: "50"},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg.Get("url"), cfg.Get("limit"))
		},
	})
}
