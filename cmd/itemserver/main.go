package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/itemcore/internal/config"
	"github.com/udisondev/itemcore/internal/data"
	"github.com/udisondev/itemcore/internal/db"
	"github.com/udisondev/itemcore/internal/game/decay"
	"github.com/udisondev/itemcore/internal/game/transfer"
	"github.com/udisondev/itemcore/internal/gameloop"
	"github.com/udisondev/itemcore/internal/world"
)

const ConfigPath = "config/itemserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("ITEMCORE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("itemserver starting", "config", cfgPath, "log_level", cfg.LogLevel)

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	sched, err := decay.NewScheduler(cfg.Decay.Buckets, cfg.Decay.Interval)
	if err != nil {
		return fmt.Errorf("creating decay scheduler: %w", err)
	}
	engine := transfer.NewEngine(catalog, sched, transfer.Options{
		MaxRedirectDepth: cfg.Transfer.MaxRedirectDepth,
	})
	registry := world.NewRegistry(engine, world.Options{
		DepotItemID:   data.ItemDepotChest,
		MaxDepotItems: cfg.Transfer.MaxDepotItems,
		TileItemLimit: cfg.Transfer.TileItemLimit,
		InventoryCap:  cfg.Transfer.InventoryCap,
	})
	engine.Subscribe(registry)

	store := &persistence{
		catalog:  catalog,
		engine:   engine,
		registry: registry,
		path:     cfg.Snapshot.Path,
	}

	if cfg.Database.Enabled {
		database, err := db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
		store.repo = db.NewItemRepository(database.Pool(), catalog.DigestHex())
	}

	// Restore выполняется до старта loop: других goroutine ещё нет.
	if err := store.restore(ctx); err != nil {
		return fmt.Errorf("restoring world: %w", err)
	}

	loop := gameloop.New(cfg.Loop.QueueSize)
	if err := loop.Every("decay", sched.Interval(), sched.Tick); err != nil {
		return err
	}
	loop.OnTickEnd(engine.Cleanup)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting game loop", "decay_interval", sched.Interval(), "decay_buckets", cfg.Decay.Buckets)
		if err := loop.Run(gctx); err != nil {
			return fmt.Errorf("game loop: %w", err)
		}
		return nil
	})

	if store.enabled() {
		g.Go(func() error {
			slog.Info("starting persistence loop", "interval", cfg.Snapshot.Interval)
			return store.run(gctx, loop, cfg.Snapshot.Interval)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	// loop остановлен, world читается из текущей goroutine.
	if store.enabled() {
		if err := store.save(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("final save: %w", err)
		}
	}
	slog.Info("itemserver stopped", "tracked_items", sched.Len())
	return nil
}

func loadCatalog(path string) (*data.Catalog, error) {
	var (
		catalog *data.Catalog
		err     error
	)
	if path == "" {
		catalog = data.Default()
	} else if catalog, err = data.LoadCatalogFile(path); err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	for _, p := range catalog.Problems() {
		slog.Warn("catalog data problem", "problem", p)
	}
	slog.Info("catalog loaded",
		"path", path,
		"items", catalog.Len(),
		"digest", catalog.DigestHex())
	return catalog, nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
