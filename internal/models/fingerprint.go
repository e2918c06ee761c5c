package models

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Fingerprint tracks which documents have already been downloaded and
// archived, keyed by a hash of backend + document URL, so the refresh
// worker never fetches the same file twice.
type Fingerprint struct {
	ID          uuid.UUID `json:"id"`
	URLHash     string    `json:"url_hash"`
	ContentHash string    `json:"content_hash,omitempty"`
	Blocked     bool      `json:"blocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// HashDocumentURL builds the dedupe key for a document within a backend.
func HashDocumentURL(backend, documentURL string) string {
	h := sha256.Sum256([]byte(backend + "\x00" + documentURL))
	return fmt.Sprintf("%x", h)
}

// HashContent returns the hex-encoded SHA-256 hash of the given bytes.
func HashContent(content []byte) string {
	h := sha256.Sum256(content)
	return fmt.Sprintf("%x", h)
}

// FingerprintStore provides data access methods for fingerprints.
type FingerprintStore struct {
	pool *pgxpool.Pool
}

// NewFingerprintStore creates a new FingerprintStore.
func NewFingerprintStore(pool *pgxpool.Pool) *FingerprintStore {
	return &FingerprintStore{pool: pool}
}

// ExistsOrBlocked checks whether a fingerprint exists and whether it is
// blocked. Returns (exists, blocked, error).
func (s *FingerprintStore) ExistsOrBlocked(ctx context.Context, urlHash string) (bool, bool, error) {
	var blocked bool
	err := s.pool.QueryRow(ctx, `
		SELECT blocked FROM fingerprints WHERE url_hash = $1
	`, urlHash).Scan(&blocked)
	if err != nil {
		if err == pgx.ErrNoRows {
			return false, false, nil
		}
		return false, false, fmt.Errorf("fingerprint exists or blocked: %w", err)
	}
	return true, blocked, nil
}

// Create inserts a new fingerprint record.
func (s *FingerprintStore) Create(ctx context.Context, fp *Fingerprint) error {
	if fp.ID == uuid.Nil {
		fp.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO fingerprints (id, url_hash, content_hash, blocked)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, fp.ID, fp.URLHash, fp.ContentHash, fp.Blocked).Scan(&fp.CreatedAt)
	if err != nil {
		return fmt.Errorf("fingerprint create: %w", err)
	}
	return nil
}

// Block marks a document URL as blocked so the refresh worker never tries
// to fetch it again (corrupt files, dead links). Inserts the fingerprint
// when the document was never successfully downloaded.
func (s *FingerprintStore) Block(ctx context.Context, urlHash string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fingerprints (id, url_hash, blocked)
		VALUES ($1, $2, true)
		ON CONFLICT (url_hash) DO UPDATE SET blocked = true
	`, uuid.New(), urlHash)
	if err != nil {
		return fmt.Errorf("fingerprint block: %w", err)
	}
	return nil
}

// CountToday returns the number of fingerprints created since the start of
// today (UTC). Used to enforce the daily download budget.
func (s *FingerprintStore) CountToday(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM fingerprints
		WHERE created_at >= date_trunc('day', now() AT TIME ZONE 'UTC')
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("fingerprint count today: %w", err)
	}
	return count, nil
}
