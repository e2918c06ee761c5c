package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a
// backend+kind pair.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one capability listing captured from a backend at a point in
// time: the accounts of a bank backend, the documents of a portal, and so
// on. The payload is the JSON-encoded record slice.
type Snapshot struct {
	ID          uuid.UUID       `json:"id"`
	Backend     string          `json:"backend"`
	Capability  string          `json:"capability"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	RecordCount int             `json:"record_count"`
	FetchedAt   time.Time       `json:"fetched_at"`
}

// SnapshotStore provides data access methods for snapshots.
type SnapshotStore struct {
	pool *pgxpool.Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Insert records a new snapshot. Older snapshots of the same backend and
// kind stay around until pruned, giving a short history of listings.
func (s *SnapshotStore) Insert(ctx context.Context, snap *Snapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO snapshots (id, backend, capability, kind, payload, record_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING fetched_at
	`, snap.ID, snap.Backend, snap.Capability, snap.Kind, snap.Payload, snap.RecordCount).Scan(&snap.FetchedAt)
	if err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot for a backend and kind.
func (s *SnapshotStore) Latest(ctx context.Context, backend, kind string) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, backend, capability, kind, payload, record_count, fetched_at
		FROM snapshots
		WHERE backend = $1 AND kind = $2
		ORDER BY fetched_at DESC
		LIMIT 1
	`, backend, kind)

	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Backend, &snap.Capability, &snap.Kind,
		&snap.Payload, &snap.RecordCount, &snap.FetchedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("snapshot %s/%s: %w", backend, kind, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("snapshot latest: %w", err)
	}
	return &snap, nil
}

// ListForBackend returns the latest snapshot of every kind captured for a
// backend.
func (s *SnapshotStore) ListForBackend(ctx context.Context, backend string) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (kind)
		       id, backend, capability, kind, payload, record_count, fetched_at
		FROM snapshots
		WHERE backend = $1
		ORDER BY kind, fetched_at DESC
	`, backend)
	if err != nil {
		return nil, fmt.Errorf("snapshot list: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Backend, &snap.Capability, &snap.Kind,
			&snap.Payload, &snap.RecordCount, &snap.FetchedAt); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// PruneOlderThan deletes snapshots fetched before the cutoff, keeping the
// most recent one per backend+kind regardless of age. Returns the number of
// rows removed.
func (s *SnapshotStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM snapshots
		WHERE fetched_at < $1
		  AND id NOT IN (
			SELECT DISTINCT ON (backend, kind) id
			FROM snapshots
			ORDER BY backend, kind, fetched_at DESC
		  )
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("snapshot prune: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
