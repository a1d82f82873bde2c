package rabbit

import amqp "github.com/rabbitmq/amqp091-go"

const (
	ExchangeEvents = "gamezone.events"
	ExchangeDLX    = "gamezone.dlx"
	ExchangeRetry  = "gamezone.retry"
)

// Declarer is the subset of *amqp.Channel used to declare topology.
type Declarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
}

func DeclareBase(ch Declarer) error {
	for _, name := range []string{ExchangeEvents, ExchangeDLX, ExchangeRetry} {
		if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

type QueueSpec struct {
	Name     string
	BindKeys []string // routing keys on ExchangeEvents
	DLQ      string   // dlq routing key and queue name
	Prefetch int
}

func DeclareQueueWithDLQ(ch Declarer, q QueueSpec) error {
	args := amqp.Table{}
	if q.DLQ != "" {
		args["x-dead-letter-exchange"] = ExchangeDLX
		args["x-dead-letter-routing-key"] = q.DLQ
	}

	qq, err := ch.QueueDeclare(q.Name, true, false, false, false, args)
	if err != nil {
		return err
	}

	for _, key := range q.BindKeys {
		if err := ch.QueueBind(qq.Name, key, ExchangeEvents, false, nil); err != nil {
			return err
		}
	}

	if q.DLQ != "" {
		dlq, err := ch.QueueDeclare(q.DLQ, true, false, false, false, nil)
		if err != nil {
			return err
		}
		if err := ch.QueueBind(dlq.Name, q.DLQ, ExchangeDLX, false, nil); err != nil {
			return err
		}
	}

	return nil
}
