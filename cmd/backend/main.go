package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/boothscan/external/config"
	"github.com/foxseedlab/boothscan/external/discord"
	"github.com/foxseedlab/boothscan/external/httpapi"
	"github.com/foxseedlab/boothscan/external/queue"
	repositoryimpl "github.com/foxseedlab/boothscan/external/repository"
	"github.com/foxseedlab/boothscan/external/webhook"
	"github.com/foxseedlab/boothscan/internal/alert"
	"github.com/foxseedlab/boothscan/internal/config"
	"github.com/foxseedlab/boothscan/internal/offline"
	"github.com/foxseedlab/boothscan/internal/scan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const alertDrainTimeout = 15 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "event_id", cfg.EventID)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching scan station")
	runStation(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	queue.RegisterDI(injector)
	webhook.RegisterDI(injector)
	discord.RegisterDI(injector)
	alert.RegisterDI(injector, webhook.ServiceName, discord.ServiceName)
	scan.RegisterDI(injector)
	offline.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runStation(injector do.Injector) {
	server, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}
	coordinator, err := do.Invoke[*offline.Coordinator](injector)
	if err != nil {
		slog.Error("failed to resolve offline coordinator", "error", err)
		os.Exit(1)
	}
	classifier, err := do.Invoke[*scan.Classifier](injector)
	if err != nil {
		slog.Error("failed to resolve scan classifier", "error", err)
		os.Exit(1)
	}
	monitor, err := do.Invoke[*offline.Monitor](injector)
	if err != nil {
		slog.Error("failed to resolve connectivity monitor", "error", err)
		os.Exit(1)
	}
	defer closeResources(injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		coordinator.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	if err := server.Run(ctx); err != nil {
		slog.Error("http server stopped", "error", err)
		stop()
	}
	wg.Wait()

	drainCtx, cancel := context.WithTimeout(context.Background(), alertDrainTimeout)
	defer cancel()
	if err := classifier.DrainAlerts(drainCtx); err != nil {
		slog.Warn("shutting down before all alerts were delivered", "error", err)
	}
	slog.Info("shutting down")
}

func closeResources(injector do.Injector) {
	if q, err := do.Invoke[*queue.SQLiteQueue](injector); err == nil {
		if err := q.Close(); err != nil {
			slog.Error("offline queue close failed", "error", err)
		}
	}
	if pool, err := do.Invoke[*pgxpool.Pool](injector); err == nil {
		pool.Close()
	}
}
