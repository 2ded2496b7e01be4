package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/contacts/internal/config"
	"github.com/JonMunkholm/contacts/internal/core"
	"github.com/JonMunkholm/contacts/internal/logging"
	"github.com/JonMunkholm/contacts/internal/metrics"
	"github.com/JonMunkholm/contacts/internal/phone"
	"github.com/JonMunkholm/contacts/internal/store"
	"github.com/JonMunkholm/contacts/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
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

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	parser, err := phone.New(cfg.Normalize.Region)
	if err != nil {
		slog.Error("invalid phone region", "region", cfg.Normalize.Region, "error", err)
		os.Exit(1)
	}
	normalizer := core.NewNormalizer(parser, cfg.Normalize.Region, core.WithLogger(logger))

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	opts := []web.Option{web.WithMetrics(m)}

	ctx := context.Background()
	if cfg.Database.Enabled() {
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
		pool, err := store.Connect(connectCtx, cfg.Database)
		cancel()
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		st := store.New(pool, logger)
		if err := st.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("persistence enabled")
		opts = append(opts, web.WithStore(st))
	} else {
		slog.Info("persistence disabled, DATABASE_URL not set")
	}

	server := web.NewServer(cfg, normalizer, opts...)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown on signal or on a failed listener.
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
