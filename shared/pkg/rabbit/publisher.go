package rabbit

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Sender is what the relay and the retry helpers need from a publisher.
type Sender interface {
	Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ publishChannel = (*amqp.Channel)(nil)

// Publisher sends persistent JSON messages to one exchange.
type Publisher struct {
	ch       publishChannel
	exchange string
	now      func() time.Time
}

func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

// Publish sends body under routingKey. The outbox id header, when present,
// doubles as the AMQP message id.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		Headers:      headers,
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now(),
	}
	if id, ok := headers[HeaderOutboxID].(string); ok {
		msg.MessageId = id
	}
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}
