// Package webbills implements a document backend over any public billing or
// report portal that lists downloadable files in a table. The selectors are
// configuration, not code: pointing the module at a new portal means
// writing a backend config, nothing else.
package webbills

import (
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/module"
)

func init() {
	module.Register(&module.Module{
		Name:         "webbills",
		Description:  "Selector-driven document portal",
		Version:      "1.0",
		Capabilities: []capability.Name{capability.DocumentName},
		ConfigSchema: []module.ConfigField{
			{Key: "url", Label: "Listing page URL", Required: true},
			{Key: "label", Label: "Subscription label", Default: "main"},
			{Key: "row_selector", Label: "CSS selector for document rows", Required: true},
			{Key: "label_selector", Label: "CSS selector for the document label", Required: true},
			{Key: "date_selector", Label: "CSS selector for the document date"},
			{Key: "date_layout", Label: "Go time layout for the date"},
			{Key: "amount_selector", Label: "CSS selector for the document total"},
			{Key: "link_selector", Label: "CSS selector for the file link", Default: "a"},
			{Key: "currency", Label: "Fallback currency code", Default: "EUR"},
		},
		New: func(name string, cfg module.Config) (any, error) {
			return newClient(name, cfg), nil
		},
	})
}
