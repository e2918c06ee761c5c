// Package torznab implements a torrent-search backend speaking the Torznab
// API (Jackett, Prowlarr and most indexer proxies expose it), so one module
// covers every tracker those proxies front.
package torznab

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "torznab",
		Description:  "Generic Torznab torrent indexer",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.TorrentName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Indexer base URL", Required: true},
			{Key: "api_key", Label: "API key", Masked: true},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg.Get("url"), cfg.Get("api_key"))
		},
	})
}
