package worker

import (
	"context"
	"encoding/json"
	"errors"

	"gamezone/services/notification-service/internal/metrics"
	"gamezone/services/notification-service/internal/notify"
	"gamezone/shared/pkg/models"
	"gamezone/shared/pkg/rabbit"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const Service = "notification"

type Consumer struct {
	Log    zerolog.Logger
	Dedupe Dedupe
	Sink   notify.Sink

	RetryPub    rabbit.Sender
	DLQPub      rabbit.Sender
	DLQKey      string
	MaxAttempts int32
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.Log.Info().Msg("notification consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.Log.Info().Msg("deliveries closed")
				return
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var evt models.EventRaw
	if err := json.Unmarshal(d.Body, &evt); err != nil || evt.ID == "" {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		metrics.NotificationFailuresTotal.WithLabelValues("dlq").Inc()
		_ = d.Nack(false, false)
		return
	}
	log := c.Log.With().Str("event_id", evt.ID).Str("type", evt.Type).Logger()

	msg, err := notify.Render(evt)
	if errors.Is(err, notify.ErrUnsupported) {
		log.Debug().Msg("no notification for event")
		_ = d.Ack(false)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("bad payload -> dlq")
		metrics.NotificationFailuresTotal.WithLabelValues("dlq").Inc()
		_ = d.Nack(false, false)
		return
	}

	first, err := c.Dedupe.Claim(ctx, evt.ID)
	if err != nil {
		c.retry(ctx, log, d, err)
		return
	}
	if !first {
		log.Info().Msg("duplicate event, skipped")
		metrics.NotificationDuplicatesTotal.Inc()
		_ = d.Ack(false)
		return
	}

	if err := c.Sink.Deliver(ctx, msg); err != nil {
		if rerr := c.Dedupe.Release(ctx, evt.ID); rerr != nil {
			log.Warn().Err(rerr).Msg("dedupe release failed")
		}
		c.retry(ctx, log, d, err)
		return
	}

	metrics.NotificationsSentTotal.WithLabelValues(evt.Type).Inc()
	_ = d.Ack(false)
}

func (c *Consumer) retry(ctx context.Context, log zerolog.Logger, d amqp.Delivery, cause error) {
	err := rabbit.RetryOrDLQ(ctx, d, Service, c.MaxAttempts, c.RetryPub, c.DLQPub, c.DLQKey)
	switch {
	case errors.Is(err, rabbit.ErrRetryScheduled):
		metrics.NotificationFailuresTotal.WithLabelValues("retry").Inc()
		log.Warn().Err(cause).Int32("attempt", rabbit.GetAttempts(d.Headers)+1).Msg("notify failed -> retry scheduled")
	case errors.Is(err, rabbit.ErrSentToDLQ):
		metrics.NotificationFailuresTotal.WithLabelValues("dlq").Inc()
		log.Error().Err(cause).Msg("notify failed -> dlq")
	default:
		metrics.NotificationFailuresTotal.WithLabelValues("requeued").Inc()
		log.Error().Err(err).AnErr("cause", cause).Msg("retry publish failed, requeued")
	}
}
