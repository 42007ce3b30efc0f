package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/angeloszaimis/healthwatch/config"
	"github.com/angeloszaimis/healthwatch/internal/directory"
	"github.com/angeloszaimis/healthwatch/internal/events"
	"github.com/angeloszaimis/healthwatch/internal/httpserver"
	"github.com/angeloszaimis/healthwatch/internal/metrics"
	"github.com/angeloszaimis/healthwatch/internal/registration"
	"github.com/angeloszaimis/healthwatch/internal/store"
	"github.com/angeloszaimis/healthwatch/internal/watcher"
	"github.com/angeloszaimis/healthwatch/pkg/logger"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Register the configured instances and watch their health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				log.Error("Failed to initialize", slog.Any("err", err))
				return err
			}
			defer a.Close()

			return a.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.yaml (defaults to ./config/config.yaml or ./config.yaml)")

	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

type app struct {
	cfg        *config.Config
	log        *slog.Logger
	closeStore func() error
	directory  *directory.Directory
	bus        *events.InProcessBus
	collector  *metrics.Collector
	watcher    *watcher.Watcher
	server     *httpserver.Server
}

// newApp wires the pipeline. Polls started by the watcher derive from ctx.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	st, closeStore, err := createStore(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Store.Type, err)
	}

	dir := directory.New(st)
	bus := events.NewBus(log)

	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log)
	collector.Subscribe(bus)

	timeout := cfg.HealthCheck.TimeoutDuration()
	w := watcher.New(dir, watcher.NewHTTPFetcher(timeout), bus, log,
		watcher.Context(ctx),
		watcher.Timeout(timeout),
	)
	w.Register(bus)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(dir, collector, log), httpserver.Logger(log))
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("create server: %w", err)
	}

	return &app{
		cfg:        cfg,
		log:        log,
		closeStore: closeStore,
		directory:  dir,
		bus:        bus,
		collector:  collector,
		watcher:    w,
		server:     srv,
	}, nil
}

// Run registers the configured instances, then sweeps and serves until ctx
// is cancelled. In-flight polls are awaited and pending metrics drained
// before it returns.
func (a *app) Run(ctx context.Context) error {
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()
	a.collector.Start(collectorCtx)

	registrar := registration.New(a.directory, a.bus, a.log)
	if err := registrar.Register(ctx, registration.Sources(a.cfg.Instances)); err != nil {
		a.log.Warn("Some configured instances were not registered", slog.Any("err", err))
	}

	scheduler := watcher.NewScheduler(a.collector.Instrument(a.watcher), a.cfg.HealthCheck.IntervalDuration(), a.log)

	var wg conc.WaitGroup
	wg.Go(func() {
		scheduler.Run(ctx)
	})

	err := a.server.Run(ctx)
	if err != nil {
		a.log.Error("Error running HTTP server", slog.Any("err", err))
	}

	a.log.Info("Shutting down gracefully...")
	wg.Wait()
	a.watcher.Wait()

	return err
}

func (a *app) Close() {
	if err := a.closeStore(); err != nil {
		a.log.Error("Error closing store", slog.Any("err", err))
	}
}

func createStore(ctx context.Context, cfg config.StoreConfig, log *slog.Logger) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Type {
	case config.StoreMemory, "":
		return store.NewMemory(), noop, nil

	case config.StoreRedis:
		client, err := store.NewRedisUniversalClient(cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, err
		}
		log.Info("Using redis store", slog.String("prefix", cfg.Redis.Prefix))
		return store.NewRedis(client, cfg.Redis.Prefix), client.Close, nil

	case config.StoreSQLite:
		s, err := store.OpenSQLite(cfg.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using sqlite store", slog.String("dsn", cfg.SQLite.DSN))
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
