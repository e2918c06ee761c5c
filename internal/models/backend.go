// Package models holds the persistent records and their pgx-backed stores:
// configured backends, capability snapshots, and download fingerprints.
package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BackendRow is a configured backend instance persisted in the database.
// The config column carries the raw (unredacted) module config; only the
// API layer redacts masked fields.
type BackendRow struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Module    string            `json:"module"`
	Config    map[string]string `json:"config"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
}

// BackendStore provides data access methods for backends.
type BackendStore struct {
	pool *pgxpool.Pool
}

// NewBackendStore creates a new BackendStore.
func NewBackendStore(pool *pgxpool.Pool) *BackendStore {
	return &BackendStore{pool: pool}
}

// ListAll returns all backends regardless of active status.
func (s *BackendStore) ListAll(ctx context.Context) ([]BackendRow, error) {
	return s.list(ctx, false)
}

// ListActive returns all backends where active = true.
func (s *BackendStore) ListActive(ctx context.Context) ([]BackendRow, error) {
	return s.list(ctx, true)
}

func (s *BackendStore) list(ctx context.Context, activeOnly bool) ([]BackendRow, error) {
	query := `
		SELECT id, name, module, config, active, created_at
		FROM backends
	`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name ASC"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("backend list: %w", err)
	}
	defer rows.Close()

	var backends []BackendRow
	for rows.Next() {
		b, err := scanBackend(rows)
		if err != nil {
			return nil, err
		}
		backends = append(backends, *b)
	}
	return backends, rows.Err()
}

// GetByName returns a backend by its unique name.
func (s *BackendStore) GetByName(ctx context.Context, name string) (*BackendRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, module, config, active, created_at
		FROM backends
		WHERE name = $1
	`, name)
	b, err := scanBackend(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("backend not found: %s", name)
		}
		return nil, err
	}
	return b, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBackend(row scannable) (*BackendRow, error) {
	var b BackendRow
	var configJSON []byte
	if err := row.Scan(&b.ID, &b.Name, &b.Module, &configJSON, &b.Active, &b.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("backend scan: %w", err)
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &b.Config); err != nil {
			return nil, fmt.Errorf("backend unmarshal config: %w", err)
		}
	}
	return &b, nil
}

// Create inserts a new backend.
func (s *BackendStore) Create(ctx context.Context, b *BackendRow) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	configJSON, err := json.Marshal(b.Config)
	if err != nil {
		return fmt.Errorf("backend marshal config: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO backends (id, name, module, config, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, b.ID, b.Name, b.Module, configJSON, b.Active).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("backend create: %w", err)
	}
	return nil
}

// Upsert inserts a backend or updates its module, config and active flag
// when the name already exists. Used when syncing the backends file.
func (s *BackendStore) Upsert(ctx context.Context, b *BackendRow) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	configJSON, err := json.Marshal(b.Config)
	if err != nil {
		return fmt.Errorf("backend marshal config: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO backends (id, name, module, config, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET module = EXCLUDED.module, config = EXCLUDED.config, active = EXCLUDED.active
		RETURNING created_at
	`, b.ID, b.Name, b.Module, configJSON, b.Active).Scan(&b.CreatedAt)
	if err != nil {
		return fmt.Errorf("backend upsert: %w", err)
	}
	return nil
}

// ToggleActive sets only the active flag on a backend.
func (s *BackendStore) ToggleActive(ctx context.Context, name string, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE backends SET active = $1 WHERE name = $2`, active, name)
	if err != nil {
		return fmt.Errorf("backend toggle: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("backend not found: %s", name)
	}
	return nil
}

// Delete removes a backend by name.
func (s *BackendStore) Delete(ctx context.Context, name string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM backends WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("backend delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("backend not found: %s", name)
	}
	return nil
}
