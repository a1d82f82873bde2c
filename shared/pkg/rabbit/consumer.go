package rabbit

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscriber is the part of *amqp.Channel a consumer needs.
type Subscriber interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

var _ Subscriber = (*amqp.Channel)(nil)

// ConsumeOptions describes one manual-ack subscription.
type ConsumeOptions struct {
	Queue string
	// Tag names the consumer in the management UI; empty lets the broker pick.
	Tag string
	// Prefetch bounds unacked deliveries; values below 1 mean 1.
	Prefetch int
}

// Consume sets the prefetch window and starts delivering opts.Queue with manual acks.
func Consume(ch Subscriber, opts ConsumeOptions) (<-chan amqp.Delivery, error) {
	if opts.Queue == "" {
		return nil, fmt.Errorf("consume: queue name required")
	}
	prefetch := opts.Prefetch
	if prefetch < 1 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("qos %s: %w", opts.Queue, err)
	}
	deliveries, err := ch.Consume(opts.Queue, opts.Tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", opts.Queue, err)
	}
	return deliveries, nil
}

// Consume subscribes on the connection's channel.
func (c *Conn) Consume(opts ConsumeOptions) (<-chan amqp.Delivery, error) {
	return Consume(c.Ch, opts)
}
