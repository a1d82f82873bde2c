package rabbit

import (
	"context"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Header names. HeaderAttempts counts consumer retries; the outbox relay
// reports its own publish attempts under HeaderOutboxAttempts so the two
// never share a budget.
const (
	HeaderAttempts       = "x-attempts"
	HeaderOutboxID       = "x-outbox-id"
	HeaderAggregateID    = "x-aggregate-id"
	HeaderOutboxAttempts = "x-outbox-attempts"
)

var (
	ErrRetryScheduled = errors.New("scheduled retry")
	ErrSentToDLQ      = errors.New("max attempts reached -> dlq")
)

func GetAttempts(h amqp.Table) int32 {
	if h == nil {
		return 0
	}
	v, ok := h[HeaderAttempts]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int32:
		return t
	case int64:
		return int32(t)
	case int:
		return int32(t)
	case float64:
		return int32(t)
	default:
		return 0
	}
}

// RetryOrDLQ republishes a failed delivery:
//   - to retryPub with routing "<service>.<originalRK>" and attempts+1, or
//   - to dlqPub with dlqRoutingKey once attempts >= maxAttempts.
//
// The original delivery is acked when the publish succeeds and requeued when it fails.
// The returned error says which way the message went.
func RetryOrDLQ(
	ctx context.Context,
	d amqp.Delivery,
	service string,
	maxAttempts int32,
	retryPub Sender,
	dlqPub Sender,
	dlqRoutingKey string,
) error {
	attempts := GetAttempts(d.Headers)

	pubCtx, cancel := WithTimeout(ctx)
	defer cancel()

	if attempts >= maxAttempts {
		if err := dlqPub.Publish(pubCtx, dlqRoutingKey, d.Body, amqp.Table{HeaderAttempts: attempts}); err != nil {
			_ = d.Nack(false, true)
			return err
		}
		_ = d.Ack(false)
		return ErrSentToDLQ
	}

	retryKey := service + "." + d.RoutingKey
	headers := amqp.Table{HeaderAttempts: attempts + 1}

	if err := retryPub.Publish(pubCtx, retryKey, d.Body, headers); err != nil {
		_ = d.Nack(false, true)
		return err
	}

	_ = d.Ack(false)
	return ErrRetryScheduled
}
