// Package sync drives the background jobs: refreshing backend listings into
// snapshots, archiving new documents, and pruning old snapshots.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/module"
	"github.com/gleanerd/gleaner/internal/storage"
)

// Stores groups the data stores needed by the refresh job.
type Stores struct {
	Backends     *models.BackendStore
	Snapshots    *models.SnapshotStore
	Fingerprints *models.FingerprintStore
}

// RunRefresh iterates over all active backends, opens their modules and
// snapshots every listing capability they advertise. Failures are per
// backend: one broken site never blocks the others.
func RunRefresh(ctx context.Context, stores Stores, archive *storage.Client, maxDailyDownloads int) {
	slog.Info("refresh: starting run")
	startTime := time.Now()

	rows, err := stores.Backends.ListActive(ctx)
	if err != nil {
		slog.Error("refresh: list active backends", "err", err)
		return
	}
	if len(rows) == 0 {
		slog.Info("refresh: no active backends configured")
		return
	}

	downloaded, err := stores.Fingerprints.CountToday(ctx)
	if err != nil {
		slog.Error("refresh: count today", "err", err)
		downloaded = 0
	}
	budget := maxDailyDownloads - downloaded
	if budget < 0 {
		budget = 0
	}

	refreshed := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			break
		}

		backend, err := module.OpenBackend(row.Name, row.Module, module.Config(row.Config))
		if err != nil {
			slog.Error("refresh: open backend", "backend", row.Name, "module", row.Module, "err", err)
			continue
		}

		if backend.Has(capability.BankName) {
			refreshBank(ctx, stores, backend)
		}
		if backend.Has(capability.DocumentName) {
			budget = refreshDocuments(ctx, stores, backend, archive, budget)
		}
		refreshed++
	}

	slog.Info("refresh: run complete",
		"backends", refreshed,
		"download_budget_left", budget,
		"duration", time.Since(startTime).Round(time.Millisecond),
	)
}

// snapshot marshals records and inserts one snapshot row.
func snapshot(ctx context.Context, stores Stores, backend string, cap capability.Name, kind string, records any, count int) {
	payload, err := json.Marshal(records)
	if err != nil {
		slog.Error("refresh: marshal snapshot", "backend", backend, "kind", kind, "err", err)
		return
	}

	snap := &models.Snapshot{
		Backend:     backend,
		Capability:  string(cap),
		Kind:        kind,
		Payload:     payload,
		RecordCount: count,
	}
	if err := stores.Snapshots.Insert(ctx, snap); err != nil {
		slog.Error("refresh: insert snapshot", "backend", backend, "kind", kind, "err", err)
		return
	}

	slog.Info("refresh: snapshot stored", "backend", backend, "kind", kind, "records", count)
}

func refreshBank(ctx context.Context, stores Stores, backend *module.Backend) {
	bank, err := backend.AsBank()
	if err != nil {
		return
	}

	accounts, err := bank.Accounts(ctx)
	if err != nil {
		logCapErr("refresh: list accounts", backend.Name, err)
		return
	}
	snapshot(ctx, stores, backend.Name, capability.BankName, "accounts", accounts, len(accounts))

	for _, acc := range accounts {
		if ctx.Err() != nil {
			return
		}
		transactions, err := bank.Transactions(ctx, acc.ID)
		if err != nil {
			if errors.Is(err, capability.ErrNotSupported) {
				continue
			}
			logCapErr("refresh: list transactions", backend.Name, err)
			continue
		}
		snapshot(ctx, stores, backend.Name, capability.BankName,
			"transactions/"+acc.ID, transactions, len(transactions))
	}
}

func refreshDocuments(ctx context.Context, stores Stores, backend *module.Backend, archive *storage.Client, budget int) int {
	docs, err := backend.AsDocument()
	if err != nil {
		return budget
	}

	subscriptions, err := docs.Subscriptions(ctx)
	if err != nil {
		logCapErr("refresh: list subscriptions", backend.Name, err)
		return budget
	}
	snapshot(ctx, stores, backend.Name, capability.DocumentName,
		"subscriptions", subscriptions, len(subscriptions))

	for _, sub := range subscriptions {
		if ctx.Err() != nil {
			return budget
		}

		documents, err := docs.Documents(ctx, sub.ID)
		if err != nil {
			logCapErr("refresh: list documents", backend.Name, err)
			continue
		}
		snapshot(ctx, stores, backend.Name, capability.DocumentName,
			"documents/"+sub.ID, documents, len(documents))

		budget = archiveDocuments(ctx, stores, backend, docs, documents, archive, budget)
	}
	return budget
}

// archiveDocuments downloads and archives documents not seen before, within
// the daily budget.
func archiveDocuments(ctx context.Context, stores Stores, backend *module.Backend, cap capability.CapDocument, documents []capability.Document, archive *storage.Client, budget int) int {
	if !archive.Configured() {
		return budget
	}

	for _, doc := range documents {
		if ctx.Err() != nil || budget <= 0 {
			return budget
		}
		if !doc.HasFile {
			continue
		}

		urlHash := models.HashDocumentURL(backend.Name, doc.URL)
		exists, blocked, err := stores.Fingerprints.ExistsOrBlocked(ctx, urlHash)
		if err != nil {
			slog.Error("refresh: check fingerprint", "backend", backend.Name, "url", doc.URL, "err", err)
			continue
		}
		if exists || blocked {
			continue
		}

		body, err := cap.DownloadDocument(ctx, doc.ID)
		if err != nil {
			if errors.Is(err, capability.ErrNotFound) {
				// Dead link: block it so the next runs skip it.
				if berr := stores.Fingerprints.Block(ctx, urlHash); berr != nil {
					slog.Error("refresh: block fingerprint", "backend", backend.Name, "url", doc.URL, "err", berr)
				} else {
					slog.Warn("refresh: dead document link blocked",
						"backend", backend.Name, "document", doc.ID, "url", doc.URL)
				}
				continue
			}
			logCapErr("refresh: download document", backend.Name, err)
			continue
		}

		if err := archive.Store(ctx, backend.Name, doc.ID, doc.Label, doc.Format, body); err != nil {
			slog.Error("refresh: archive document", "backend", backend.Name, "document", doc.ID, "err", err)
			continue
		}

		fp := &models.Fingerprint{
			URLHash:     urlHash,
			ContentHash: models.HashContent(body),
		}
		if err := stores.Fingerprints.Create(ctx, fp); err != nil {
			slog.Error("refresh: create fingerprint", "backend", backend.Name, "url", doc.URL, "err", err)
			continue
		}

		budget--
		slog.Info("refresh: document archived",
			"backend", backend.Name,
			"document", doc.ID,
			"label", doc.Label,
			"bytes", len(body),
		)
	}
	return budget
}

// logCapErr downgrades expected capability errors to debug noise.
func logCapErr(msg, backend string, err error) {
	switch {
	case errors.Is(err, capability.ErrNotSupported):
		slog.Debug(msg, "backend", backend, "err", err)
	case errors.Is(err, capability.ErrIncorrectCredentials),
		errors.Is(err, capability.ErrCaptchaRequired):
		slog.Warn(msg, "backend", backend, "err", err)
	default:
		slog.Error(msg, "backend", backend, "err", err)
	}
}

// RunPrune deletes snapshots older than the retention window.
func RunPrune(ctx context.Context, snapshots *models.SnapshotStore, retentionDays int) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	removed, err := snapshots.PruneOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("prune: snapshots", "err", err)
		return
	}
	slog.Info("prune: complete", "removed", removed, "cutoff", cutoff)
}
