// Package module holds the registry of site modules and the machinery to
// turn a module plus a config into a usable backend instance.
package module

import (
	"fmt"

	"github.com/gleanerd/gleaner/internal/capability"
)

// ConfigField describes one key a module accepts in its backend config.
type ConfigField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	// Masked marks secrets (passwords, API keys) that must never appear
	// in logs or API responses.
	Masked  bool   `json:"masked"`
	Default string `json:"default,omitempty"`
}

// Config holds the per-backend configuration values keyed by field key.
type Config map[string]string

// Get returns the value for key, or the empty string.
func (c Config) Get(key string) string {
	return c[key]
}

// Module describes a site module: what it scrapes, which capabilities it
// offers, and how to build a backend from a config.
type Module struct {
	Name         string
	Description  string
	Version      string
	Capabilities []capability.Name
	ConfigSchema []ConfigField

	// New builds a backend instance from a validated config. The returned
	// value must implement the advertised capability interfaces.
	New func(name string, cfg Config) (any, error)
}

// ValidateConfig checks cfg against the module's schema, applies defaults
// and rejects unknown or missing keys. It returns the effective config.
func (m *Module) ValidateConfig(cfg Config) (Config, error) {
	known := make(map[string]ConfigField, len(m.ConfigSchema))
	for _, f := range m.ConfigSchema {
		known[f.Key] = f
	}

	for key := range cfg {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("module %s: unknown config key %q", m.Name, key)
		}
	}

	out := make(Config, len(m.ConfigSchema))
	for _, f := range m.ConfigSchema {
		v := cfg[f.Key]
		if v == "" {
			v = f.Default
		}
		if v == "" && f.Required {
			return nil, fmt.Errorf("module %s: missing required config key %q", m.Name, f.Key)
		}
		if v != "" {
			out[f.Key] = v
		}
	}
	return out, nil
}

// Redact returns a copy of cfg with masked fields replaced by asterisks,
// suitable for logging and API responses.
func (m *Module) Redact(cfg Config) Config {
	masked := make(map[string]bool)
	for _, f := range m.ConfigSchema {
		if f.Masked {
			masked[f.Key] = true
		}
	}
	out := make(Config, len(cfg))
	for k, v := range cfg {
		if masked[k] {
			out[k] = "********"
		} else {
			out[k] = v
		}
	}
	return out
}
