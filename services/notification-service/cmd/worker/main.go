package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpx "gamezone/services/notification-service/internal/http"
	"gamezone/services/notification-service/internal/notify"
	"gamezone/services/notification-service/internal/worker"
	"gamezone/shared/pkg/cache"
	"gamezone/shared/pkg/config"
	"gamezone/shared/pkg/logger"
	"gamezone/shared/pkg/models"
	"gamezone/shared/pkg/rabbit"

	"golang.org/x/sync/errgroup"
)

const (
	queueName = "notification.q"
	dlqName   = "notification.dlq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("notification-service", cfg.Common.LogLevel)
	if cfg.Rabbit.URL == "" {
		log.Fatal().Err(config.ErrMissingRabbitURL).Msg("invalid config")
	}
	if cfg.Redis.Addr == "" {
		log.Fatal().Err(config.ErrMissingRedis).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := cache.New(cfg.Redis.Addr)
	defer func() { _ = rdb.Close() }()
	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	err = rdb.Ping(pingCtx)
	cancelPing()
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}

	rc, err := rabbit.Connect(cfg.Rabbit.URL, "notification-service")
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}
	if err := rabbit.DeclareQueueWithDLQ(rc.Ch, rabbit.QueueSpec{
		Name:     queueName,
		BindKeys: []string{"orders.#", "users.#"},
		DLQ:      dlqName,
		Prefetch: cfg.Notify.Prefetch,
	}); err != nil {
		log.Fatal().Err(err).Msg("declare notification topology failed")
	}

	ttlMs := int(cfg.Notify.RetryDelay / time.Millisecond)
	for _, rk := range []string{models.EventOrderPlaced, models.EventOrderStatusChanged, models.EventUserDeleted} {
		retryKey := worker.Service + "." + rk
		if err := rabbit.DeclareRetryQueue(rc.Ch, "notification.retry."+rk, retryKey, rk, ttlMs); err != nil {
			log.Fatal().Err(err).Str("rk", rk).Msg("declare retry queue failed")
		}
	}

	deliveries, err := rc.Consume(rabbit.ConsumeOptions{
		Queue:    queueName,
		Tag:      worker.Service,
		Prefetch: cfg.Notify.Prefetch,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	w := &worker.Consumer{
		Log:         log,
		Dedupe:      &worker.RedisDedupe{Redis: rdb, TTL: cfg.Notify.DedupeTTL},
		Sink:        notify.LogSink{Log: log},
		RetryPub:    rabbit.NewPublisher(rc.Ch, rabbit.ExchangeRetry),
		DLQPub:      rabbit.NewPublisher(rc.Ch, rabbit.ExchangeDLX),
		DLQKey:      dlqName,
		MaxAttempts: cfg.Notify.MaxAttempts,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Notify.Addr,
		Handler:           httpx.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		w.Run(gctx, deliveries)
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
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})

	log.Info().Msg("notification worker started")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("notification worker stopped with error")
	}
}
