package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	corecfg "github.com/tollgate-lab/tollgate/internal/core/config"
	"github.com/tollgate-lab/tollgate/internal/core/storage"
	"github.com/tollgate-lab/tollgate/internal/core/storage/memory"
	"github.com/tollgate-lab/tollgate/internal/core/storage/postgres"
	"github.com/tollgate-lab/tollgate/internal/ingestion"
	"github.com/tollgate-lab/tollgate/internal/migrations"
	"github.com/tollgate-lab/tollgate/internal/queue"
	"github.com/tollgate-lab/tollgate/internal/reporting"
	"github.com/tollgate-lab/tollgate/internal/server"
	"github.com/tollgate-lab/tollgate/internal/telemetry"
)

// usageStore is what the binary needs from a backing store.
type usageStore interface {
	storage.UsageStore
	server.HealthChecker
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Logger
	handlerOpts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("Loaded config",
		"database_type", cfg.Database.Type,
		"database_driver", cfg.Database.Driver,
		"topic", cfg.Queue.Topic,
		"partitions", cfg.Queue.Partitions)

	// 3. Initialize Storage
	store, closeStore, err := openStore(cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	hook := telemetry.Multi(telemetry.NewSlogHook(nil), telemetry.PromHook{})

	// 4. Initialize the usages topic
	topic := queue.NewTopic(cfg.Queue.Topic, queue.Options{
		Partitions:      cfg.Queue.Partitions,
		BufferSize:      cfg.Queue.BufferSize,
		MaxDeliveries:   cfg.Queue.MaxDeliveries,
		RedeliveryDelay: cfg.Queue.RedeliveryDelayDuration(),
	})

	// 5. Initialize Ingestion (producer route + consumer)
	ingestionSvc := ingestion.NewService(store, topic, hook, cfg.Server.MaxBodySizeMB)

	// 6. Initialize Reporting
	reportingSvc := reporting.NewService(store, hook, cfg.Database.QueryTimeoutDuration())

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), store, cfg.Server.Mode, cfg.Server.ShutdownTimeoutDuration())
	ingestionSvc.RegisterRoutes(srv.Engine)
	reportingSvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The consumer outlives the HTTP server: it keeps draining until the
	// topic is closed, and only then is its context cancelled.
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()

	var g errgroup.Group
	g.Go(func() error {
		return topic.Run(consumerCtx, ingestionSvc.HandleMessage)
	})
	g.Go(func() error {
		defer topic.Close()
		if err := srv.Run(sigCtx); err != nil {
			stop()
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	<-sigCtx.Done()
	slog.Info("Signal received, draining...", "pending", topic.Len())

	if err := g.Wait(); err != nil {
		slog.Error("Shutdown with error", "error", err)
		closeStore()
		os.Exit(1)
	}

	slog.Info("Shutdown complete")
}

func openStore(cfg corecfg.DatabaseConfig) (usageStore, func(), error) {
	if cfg.Type == "memory" {
		slog.Warn("Using in-memory store; usages are lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	adapter, err := postgres.NewAdapter(cfg.Driver, cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns)
	if err != nil {
		return nil, nil, err
	}

	if err := migrations.Run(adapter.DB(), migrations.Options{Apply: cfg.AutoMigrate}); err != nil {
		adapter.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := adapter.Prepare(); err != nil {
		adapter.Close()
		return nil, nil, err
	}

	return adapter, func() {
		if err := adapter.Close(); err != nil {
			slog.Warn("Failed to close database", "error", err)
		}
	}, nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
