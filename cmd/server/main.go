package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/config"
	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/history"
	"github.com/JonMunkholm/vizboard/internal/logging"
	"github.com/JonMunkholm/vizboard/internal/store"
	"github.com/JonMunkholm/vizboard/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"variant", cfg.Dashboard.Variant,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"render_workers", cfg.Render.Workers,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	sessions, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer sessions.Close()

	recorder, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Error("failed to open upload history", "error", err)
		os.Exit(1)
	}
	defer recorder.Close()

	service, err := core.NewService(cfg, sessions, recorder)
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("charts registered",
		"total", charts.Count(),
		"variant", service.Variant(),
		"served", len(charts.ForVariant(service.Variant())),
	)

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	go service.StartSessionSweeper(jobCtx, cfg.Session.SweepInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	drain := func(ctx context.Context) {
		cancelJobs()

		// Wait for active uploads to finish parsing
		uploadStatus := service.UploadLimiterStatus()
		if uploadStatus.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", uploadStatus.Active)
			if err := service.WaitForUploads(ctx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}
	}

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := serve(server, sigCh, cfg.Server.ShutdownTimeout, drain); err != nil {
		slog.Error("server failed", "error", err)
		return
	}
	slog.Info("server stopped")
}

type httpServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until stop fires, then drains background work and shuts the
// server down. It returns only after Shutdown has finished.
func serve(srv httpServer, stop <-chan os.Signal, timeout time.Duration, drain func(context.Context)) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop

		slog.Info("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		drain(ctx)
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

// openStore uses Redis when REDIS_URL is set so several instances can share
// sessions; otherwise datasets live in process memory.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Session.RedisURL == "" {
		slog.Info("using in-memory session store", "ttl", cfg.Session.TTL)
		return store.NewMemory(cfg.Session.TTL), nil
	}
	st, err := store.NewRedis(ctx, cfg.Session.RedisURL, cfg.Session.RedisPrefix, cfg.Session.TTL)
	if err != nil {
		return nil, err
	}
	slog.Info("using redis session store", "prefix", cfg.Session.RedisPrefix, "ttl", cfg.Session.TTL)
	return st, nil
}

func openHistory(ctx context.Context, cfg *config.Config) (history.Recorder, error) {
	if !cfg.Database.Enabled() {
		slog.Info("upload history disabled")
		return history.Nop{}, nil
	}
	return history.Open(ctx, cfg.Database)
}
