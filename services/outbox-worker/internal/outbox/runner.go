package outbox

import (
	"context"
	"math"
	"time"

	"gamezone/services/outbox-worker/internal/metrics"
	"gamezone/shared/pkg/rabbit"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Runner relays committed outbox rows to the events exchange, using the
// event type as routing key.
type Runner struct {
	Log   zerolog.Logger
	Store Store

	EventsPub rabbit.Sender

	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BackoffMax   time.Duration

	Now func() time.Time
}

func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(r.PollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Log.Info().Msg("outbox runner stopped")
			return
		case <-t.C:
			if err := r.Tick(ctx); err != nil {
				r.Log.Error().Err(err).Msg("outbox tick failed")
			}
		}
	}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Tick runs one relay pass.
func (r *Runner) Tick(ctx context.Context) error {
	if n, err := r.Store.Pending(ctx); err == nil {
		metrics.OutboxPending.Set(float64(n))
	}

	return r.Store.WithinTx(ctx, func(tx Tx) error {
		batch, err := tx.Due(ctx, r.BatchSize)
		if err != nil {
			return err
		}

		for _, e := range batch {
			if e.Attempts >= r.MaxAttempts {
				if err := tx.MarkDropped(ctx, e.ID, "max attempts reached"); err != nil {
					return err
				}
				metrics.OutboxDroppedTotal.Inc()
				r.Log.Warn().Str("id", e.ID).Str("type", e.Type).Int("attempts", e.Attempts).Msg("outbox drop (max attempts), marked sent")
				continue
			}

			pubCtx, cancel := rabbit.WithTimeout(ctx)
			err := r.EventsPub.Publish(pubCtx, e.Type, e.Payload, amqp.Table{
				rabbit.HeaderOutboxID:       e.ID,
				rabbit.HeaderAggregateID:    e.AggregateID,
				rabbit.HeaderOutboxAttempts: int32(e.Attempts),
			})
			cancel()

			if err == nil {
				metrics.OutboxSentTotal.WithLabelValues(e.Type).Inc()
				if err := tx.MarkSent(ctx, e.ID); err != nil {
					return err
				}
				continue
			}

			metrics.OutboxPublishErrorsTotal.Inc()
			next := r.now().Add(backoff(e.Attempts+1, r.BackoffMax))
			if err2 := tx.Reschedule(ctx, e.ID, next, err.Error()); err2 != nil {
				return err2
			}
			r.Log.Error().Err(err).Str("id", e.ID).Str("type", e.Type).Int("attempts", e.Attempts+1).Time("next", next).Msg("publish failed -> retry scheduled")
		}
		return nil
	})
}

func backoff(attempt int, max time.Duration) time.Duration {
	sec := math.Pow(2, float64(attempt))
	d := time.Duration(sec) * time.Second
	if d > max {
		return max
	}
	if d < time.Second {
		return time.Second
	}
	return d
}
