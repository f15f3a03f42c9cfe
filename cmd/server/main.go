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

	"github.com/agenthands/archivegraph/internal/config"
	"github.com/agenthands/archivegraph/internal/core"
	"github.com/agenthands/archivegraph/internal/driver"
	"github.com/agenthands/archivegraph/internal/server"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Warn("using default configuration", "error", err)
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := driver.NewNeo4jDriver(ctx, cfg.Neo4j)
	if err != nil {
		slog.Error("failed to connect to graph database", "error", err)
		os.Exit(1)
	}
	defer d.Close(context.Background())

	svc := core.NewService(d, core.Options{
		StrictFilters: cfg.Query.StrictFilters,
		BatchSize:     cfg.Query.BatchSize,
		DefaultLimit:  cfg.Query.DefaultLimit,
	})
	if err := svc.BuildIndices(ctx); err != nil {
		slog.Warn("failed to build indices", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewServer(svc, cfg.Server).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
