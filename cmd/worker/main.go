// Command worker runs the Gleaner background jobs. It periodically refreshes
// every active backend, snapshots its listings, archives new documents and
// prunes old snapshots.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gleanerd/gleaner/internal/config"
	"github.com/gleanerd/gleaner/internal/db"
	"github.com/gleanerd/gleaner/internal/models"
	"github.com/gleanerd/gleaner/internal/storage"
	gsync "github.com/gleanerd/gleaner/internal/sync"

	// Site modules register themselves at init time.
	_ "github.com/gleanerd/gleaner/internal/modules/mealdb"
	_ "github.com/gleanerd/gleaner/internal/modules/openmeteo"
	_ "github.com/gleanerd/gleaner/internal/modules/privatebin"
	_ "github.com/gleanerd/gleaner/internal/modules/remotive"
	_ "github.com/gleanerd/gleaner/internal/modules/torznab"
	_ "github.com/gleanerd/gleaner/internal/modules/webbank"
	_ "github.com/gleanerd/gleaner/internal/modules/webbills"
)

func main() {
	// Structured JSON logging.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("worker: starting gleaner worker")

	// Load configuration.
	cfg := config.Load()

	// Create a root context that is cancelled on shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to the database.
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		slog.Error("worker: database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Create stores.
	stores := gsync.Stores{
		Backends:     models.NewBackendStore(pool),
		Snapshots:    models.NewSnapshotStore(pool),
		Fingerprints: models.NewFingerprintStore(pool),
	}

	// Sync declared backends into the database before scheduling anything.
	if cfg.Worker.BackendsFile != "" {
		if err := gsync.SyncBackendsFile(ctx, stores.Backends, cfg.Worker.BackendsFile); err != nil {
			slog.Error("worker: backends file sync failed", "path", cfg.Worker.BackendsFile, "err", err)
			os.Exit(1)
		}
	}

	// Create S3 archive client.
	archive, err := storage.NewClient(ctx, cfg.S3)
	if err != nil {
		slog.Error("worker: storage client creation failed", "err", err)
		os.Exit(1)
	}

	// Track in-flight jobs for graceful shutdown.
	var wg sync.WaitGroup

	// Set up cron scheduler (standard 5-field cron expressions).
	c := cron.New()

	// Backend refresh.
	_, err = c.AddFunc(cfg.Worker.RefreshSpec, func() {
		wg.Add(1)
		defer wg.Done()

		jobCtx, jobCancel := context.WithTimeout(ctx, 2*time.Hour)
		defer jobCancel()

		slog.Info("cron: refresh job triggered")
		gsync.RunRefresh(jobCtx, stores, archive, cfg.Worker.MaxDailyDownloads)
	})
	if err != nil {
		slog.Error("worker: add refresh cron", "err", err)
		os.Exit(1)
	}

	// Snapshot pruning.
	_, err = c.AddFunc(cfg.Worker.PruneSpec, func() {
		wg.Add(1)
		defer wg.Done()

		jobCtx, jobCancel := context.WithTimeout(ctx, 15*time.Minute)
		defer jobCancel()

		slog.Info("cron: prune job triggered")
		gsync.RunPrune(jobCtx, stores.Snapshots, cfg.Worker.SnapshotRetentionDays)
	})
	if err != nil {
		slog.Error("worker: add prune cron", "err", err)
		os.Exit(1)
	}

	// Start the cron scheduler.
	c.Start()
	slog.Info("worker: cron scheduler started",
		"jobs", len(c.Entries()),
	)

	// Run an initial refresh on startup so fresh deployments have data
	// before the first scheduled run.
	wg.Add(1)
	go func() {
		defer wg.Done()

		// Small delay to let everything settle.
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			return
		}

		jobCtx, jobCancel := context.WithTimeout(ctx, 2*time.Hour)
		defer jobCancel()

		slog.Info("worker: running initial refresh on startup")
		gsync.RunRefresh(jobCtx, stores, archive, cfg.Worker.MaxDailyDownloads)
	}()

	// ── Graceful Shutdown ──────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	slog.Info("worker: received shutdown signal", "signal", sig.String())

	// Stop accepting new cron jobs.
	slog.Info("worker: stopping cron scheduler")
	cronCtx := c.Stop()

	// Cancel the root context to signal all in-flight jobs to stop.
	cancel()

	// Wait for the cron scheduler to finish its currently running jobs.
	select {
	case <-cronCtx.Done():
		slog.Info("worker: cron scheduler stopped")
	case <-time.After(30 * time.Second):
		slog.Warn("worker: cron scheduler stop timed out")
	}

	// Wait for all in-flight goroutines.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("worker: all in-flight jobs complete")
	case <-time.After(60 * time.Second):
		slog.Warn("worker: timed out waiting for in-flight jobs")
	}

	// Close the database pool.
	pool.Close()
	slog.Info("worker: shutdown complete")
}
