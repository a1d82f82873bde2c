package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpx "gamezone/services/outbox-worker/internal/http"
	"gamezone/services/outbox-worker/internal/outbox"
	"gamezone/shared/pkg/config"
	"gamezone/shared/pkg/logger"
	"gamezone/shared/pkg/rabbit"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("outbox-worker", cfg.Common.LogLevel)
	if cfg.Postgres.DSN == "" {
		log.Fatal().Err(config.ErrMissingDSN).Msg("invalid config")
	}
	if cfg.Rabbit.URL == "" {
		log.Fatal().Err(config.ErrMissingRabbitURL).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctxDB, cancelDB := context.WithTimeout(ctx, 5*time.Second)
	defer cancelDB()
	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	rc, err := rabbit.Connect(cfg.Rabbit.URL, "outbox-worker")
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}

	store := &outbox.PGStore{DB: db}
	runner := &outbox.Runner{
		Log:          log,
		Store:        store,
		EventsPub:    rabbit.NewPublisher(rc.Ch, rabbit.ExchangeEvents),
		PollInterval: cfg.Outbox.PollInterval,
		BatchSize:    cfg.Outbox.BatchSize,
		MaxAttempts:  cfg.Outbox.MaxAttempts,
		BackoffMax:   cfg.Outbox.BackoffMax,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Outbox.Addr,
		Handler:           (&httpx.Server{Outbox: store}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case amqpErr := <-rc.NotifyClosed():
			if amqpErr == nil {
				return errors.New("rabbit connection closed")
			}
			return amqpErr
		}
	})
	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Msg("http started")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutdown...")
		shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shCancel()
		return httpSrv.Shutdown(shCtx)
	})

	log.Info().Msg("outbox-worker started")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("outbox-worker stopped with error")
	}
}
