package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/briefhub/docsync/internal/api"
	"github.com/briefhub/docsync/internal/archive"
	"github.com/briefhub/docsync/internal/auth"
	"github.com/briefhub/docsync/internal/config"
	"github.com/briefhub/docsync/internal/database"
	"github.com/briefhub/docsync/internal/notify"
	"github.com/briefhub/docsync/internal/tracker"
	"github.com/briefhub/docsync/internal/version"
	"github.com/briefhub/docsync/internal/watch"
)

func main() {
	configPath := flag.String("config", "configs/syncd.local.yaml", "path to config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("syncd", version.String())
		return
	}

	// Set up structured logging
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting syncd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.API.BaseURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Token store
	tokens := auth.NewFileStore(cfg.Auth.TokenPath)
	if _, err := tokens.Token(); err != nil {
		logger.Warn("no auth token yet, connections will wait for one",
			"path", tokens.Path(), "error", err)
	}

	// REST client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		tokens,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Optional status archive
	var (
		pool   *pgxpool.Pool
		writer *archive.Writer
		sink   tracker.StatusSink
	)
	if cfg.ArchiveEnabled() {
		logger.Info("connecting to archive database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer = archive.NewWriter(archive.Config{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			BufferSize:    cfg.Archive.BufferSize,
		}, pool, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}
		sink = writer
		logger.Info("status archive enabled")
	} else {
		logger.Info("status archive disabled (no database configured)")
	}

	// Notifier and tracker registry
	notifier := notify.New()
	registry := tracker.New(trackerConfig(cfg), tokens, apiClient, sink, notifier, logger)

	// Document discovery
	watcher := watch.New(watch.Config{
		Interval: cfg.Watch.Interval,
		PageSize: cfg.Watch.PageSize,
		Timeout:  cfg.API.Timeout,
	}, apiClient, registry, logger)
	if err := watcher.Start(ctx); err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(pool, registry, writer, notifier),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	logger.Info("syncd running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := watcher.Stop(shutdownCtx); err != nil {
		logger.Warn("watcher stop", "error", err)
	}
	if err := registry.Close(shutdownCtx); err != nil {
		logger.Warn("registry close", "error", err)
	}
	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Warn("archive writer stop", "error", err)
		}
	}
	if err := g.Wait(); err != nil {
		logger.Warn("serve group", "error", err)
	}

	logger.Info("syncd stopped")
}

func trackerConfig(cfg *config.SyncConfig) tracker.Config {
	return tracker.Config{
		APIBaseURL:       cfg.API.BaseURL,
		Cooldown:         cfg.Tracker.Cooldown,
		RetryBaseDelay:   cfg.Tracker.RetryBaseDelay,
		RetryMaxDelay:    cfg.Tracker.RetryMaxDelay,
		MaxRetries:       cfg.Tracker.MaxRetries,
		PingInterval:     cfg.Tracker.PingInterval,
		GraceDelay:       cfg.Tracker.GraceDelay,
		DialTimeout:      cfg.Tracker.DialTimeout,
		WriteTimeout:     cfg.Tracker.WriteTimeout,
		ReconcileTimeout: cfg.Tracker.ReconcileTimeout,
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, registry *tracker.Registry, writer *archive.Writer, notifier *notify.Notifier) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}

		stats := registry.Stats()
		health.Components["tracker"] = map[string]interface{}{
			"tracked":  stats.Tracked,
			"open":     stats.Open,
			"terminal": stats.Terminal,
			"errored":  stats.Errored,
		}
		health.Components["notify_version"] = notifier.Version()

		if writer != nil {
			ws := writer.Stats()
			health.Components["archive"] = map[string]interface{}{
				"inserts": ws.Inserts,
				"errors":  ws.Errors,
				"dropped": ws.Dropped,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/documents", func(w http.ResponseWriter, r *http.Request) {
		infos := registry.Snapshot()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":     len(infos),
			"documents": infos,
		})
	})

	return mux
}
