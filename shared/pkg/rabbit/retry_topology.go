package rabbit

import amqp "github.com/rabbitmq/amqp091-go"

// DeclareRetryQueue declares a parking queue bound to ExchangeRetry with bindKey
// (usually "<service>.<originalRK>"). Messages sit there for ttlMs and are then
// dead-lettered back to ExchangeEvents with deadRoutingKey.
func DeclareRetryQueue(ch Declarer, name string, bindKey string, deadRoutingKey string, ttlMs int) error {
	args := amqp.Table{
		"x-message-ttl":             ttlMs,
		"x-dead-letter-exchange":    ExchangeEvents,
		"x-dead-letter-routing-key": deadRoutingKey,
	}

	q, err := ch.QueueDeclare(name, true, false, false, false, args)
	if err != nil {
		return err
	}

	return ch.QueueBind(q.Name, bindKey, ExchangeRetry, false, nil)
}
