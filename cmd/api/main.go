// Command api starts the Gleaner HTTP API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gleanerd/gleaner/internal/config"
	"github.com/gleanerd/gleaner/internal/db"
	"github.com/gleanerd/gleaner/internal/handlers"
	"github.com/gleanerd/gleaner/internal/middleware"
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
	// Structured logging.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database connection.
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		slog.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Data stores.
	backendStore := models.NewBackendStore(pool)
	snapshotStore := models.NewSnapshotStore(pool)
	fingerprintStore := models.NewFingerprintStore(pool)

	// Sync declared backends into the database before serving.
	if cfg.Worker.BackendsFile != "" {
		if err := gsync.SyncBackendsFile(ctx, backendStore, cfg.Worker.BackendsFile); err != nil {
			slog.Error("failed to sync backends file", "path", cfg.Worker.BackendsFile, "err", err)
			os.Exit(1)
		}
	}

	// S3 archive client (for document downloads).
	archive, err := storage.NewClient(ctx, cfg.S3)
	if err != nil {
		slog.Error("failed to create storage client", "err", err)
		os.Exit(1)
	}

	// Handlers.
	modulesHandler := &handlers.ModulesHandler{}
	backendsHandler := &handlers.BackendsHandler{Backends: backendStore}
	bankHandler := handlers.NewBankHandler(backendStore)
	documentsHandler := handlers.NewDocumentsHandler(backendStore, archive, fingerprintStore)
	recipesHandler := handlers.NewRecipesHandler(backendStore)
	jobsHandler := handlers.NewJobsHandler(backendStore)
	weatherHandler := handlers.NewWeatherHandler(backendStore)
	torrentsHandler := handlers.NewTorrentsHandler(backendStore)
	pastesHandler := handlers.NewPastesHandler(backendStore)
	snapshotsHandler := &handlers.SnapshotsHandler{Snapshots: snapshotStore}
	healthHandler := &handlers.HealthHandler{Pool: pool}

	// Router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes.
	r.Get("/api/health", healthHandler.Health)

	// Token-protected routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.Server.APIToken))

		// Registry and backend management.
		r.Get("/api/modules", modulesHandler.ListModules)
		r.Get("/api/backends", backendsHandler.ListBackends)
		r.Post("/api/backends", backendsHandler.CreateBackend)
		r.Post("/api/backends/{name}/toggle", backendsHandler.ToggleBackend)
		r.Delete("/api/backends/{name}", backendsHandler.DeleteBackend)

		// Bank.
		r.Get("/api/backends/{name}/accounts", bankHandler.ListAccounts)
		r.Get("/api/backends/{name}/accounts/{id}/transactions", bankHandler.ListTransactions)

		// Documents.
		r.Get("/api/backends/{name}/subscriptions", documentsHandler.ListSubscriptions)
		r.Get("/api/backends/{name}/subscriptions/{id}/documents", documentsHandler.ListDocuments)
		r.Post("/api/backends/{name}/documents/download", documentsHandler.DownloadDocument)
		r.Get("/api/backends/{name}/archive/{documentID}", documentsHandler.FetchArchived)
		r.Delete("/api/backends/{name}/archive/{documentID}", documentsHandler.DeleteArchived)

		// Aggregated capability searches.
		r.Get("/api/recipes", recipesHandler.SearchRecipes)
		r.Get("/api/recipes/{id}", recipesHandler.GetRecipe)
		r.Get("/api/jobs", jobsHandler.SearchJobs)
		r.Get("/api/weather/cities", weatherHandler.SearchCities)
		r.Get("/api/weather/{cityID}", weatherHandler.GetWeather)
		r.Get("/api/torrents", torrentsHandler.SearchTorrents)

		// Pastes.
		r.Post("/api/pastes", pastesHandler.CreatePaste)
		r.Get("/api/pastes/{id}", pastesHandler.GetPaste)

		// Snapshots.
		r.Get("/api/snapshots/{backend}", snapshotsHandler.ListSnapshots)
		r.Get("/api/snapshots/{backend}/latest", snapshotsHandler.GetLatestSnapshot)
	})

	// Start server.
	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-done
	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}

	slog.Info("server stopped")
}
