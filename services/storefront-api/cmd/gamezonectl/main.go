package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamezone/services/storefront-api/internal/cli"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/cache"
	"gamezone/shared/pkg/config"
	"gamezone/shared/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := &cli.App{
		Config: cfg,
		Log:    logger.New("gamezonectl", cfg.Common.LogLevel),
		Open:   open,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = app.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func open(ctx context.Context, cfg config.Config) (cli.Backend, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return cli.Backend{Store: repo.NewMemoryStore().Store()}, nil
	case "postgres":
	default:
		return cli.Backend{}, config.ErrUnknownDriver
	}
	if cfg.Postgres.DSN == "" {
		return cli.Backend{}, config.ErrMissingDSN
	}

	ctxDB, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		return cli.Backend{}, fmt.Errorf("pg connect: %w", err)
	}
	if err := db.Ping(ctxDB); err != nil {
		db.Close()
		return cli.Backend{}, fmt.Errorf("pg ping: %w", err)
	}

	b := cli.Backend{
		Store: repo.NewPGStore(db),
		Migrate: func(ctx context.Context) ([]string, error) {
			return repo.Migrate(ctx, db)
		},
		Close: db.Close,
	}
	if cfg.Redis.Addr != "" {
		withCatalogCache(ctx, cfg, &b)
	}
	return b, nil
}

// withCatalogCache routes product writes through the catalog cache the API reads.
func withCatalogCache(ctx context.Context, cfg config.Config, b *cli.Backend) {
	log := logger.New("gamezonectl", cfg.Common.LogLevel)
	rdb := cache.New(cfg.Redis.Addr)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, catalog cache not invalidated")
		_ = rdb.Close()
		return
	}

	b.CacheCatalog(rdb, cfg.Catalog.CacheTTL, log)
	closeDB := b.Close
	b.Close = func() {
		_ = rdb.Close()
		closeDB()
	}
}
