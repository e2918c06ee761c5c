package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/module"
)

// backendsFile is the on-disk declaration of backends, an alternative to
// managing them through the API. Example:
//
//	backends:
//	  - name: mybank
//	    module: webbank
//	    active: true
//	    config:
//	      url: https://bank.example.org
//	      username: alice
type backendsFile struct {
	Backends []backendEntry `yaml:"backends"`
}

type backendEntry struct {
	Name   string            `yaml:"name"`
	Module string            `yaml:"module"`
	Active *bool             `yaml:"active"`
	Config map[string]string `yaml:"config"`
}

// LoadBackendsFile parses a backends YAML file and validates every entry
// against its module's config schema.
func LoadBackendsFile(path string) ([]models.BackendRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sync: read backends file: %w", err)
	}

	var file backendsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("sync: parse backends file: %w", err)
	}

	var rows []models.BackendRow
	for i, entry := range file.Backends {
		if entry.Name == "" {
			return nil, fmt.Errorf("sync: backends file entry %d: missing name", i)
		}
		mod, ok := module.Get(entry.Module)
		if !ok {
			return nil, fmt.Errorf("sync: backend %q: unknown module %q", entry.Name, entry.Module)
		}
		cfg, err := mod.ValidateConfig(module.Config(entry.Config))
		if err != nil {
			return nil, fmt.Errorf("sync: backend %q: %w", entry.Name, err)
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		rows = append(rows, models.BackendRow{
			Name:   entry.Name,
			Module: mod.Name,
			Config: cfg,
			Active: active,
		})
	}
	return rows, nil
}

// SyncBackendsFile upserts every backend declared in the file into the
// database. Backends created through the API are left alone.
func SyncBackendsFile(ctx context.Context, store *models.BackendStore, path string) error {
	rows, err := LoadBackendsFile(path)
	if err != nil {
		return err
	}

	for i := range rows {
		if err := store.Upsert(ctx, &rows[i]); err != nil {
			return err
		}
		slog.Info("sync: backend upserted from file",
			"backend", rows[i].Name, "module", rows[i].Module, "active", rows[i].Active)
	}
	return nil
}
