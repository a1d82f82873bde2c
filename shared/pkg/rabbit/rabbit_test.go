package rabbit

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeclarer struct {
	exchanges []string
	queues    map[string]amqp.Table
	binds     [][3]string
}

func (f *fakeDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.exchanges = append(f.exchanges, name+":"+kind)
	return nil
}

func (f *fakeDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.queues == nil {
		f.queues = map[string]amqp.Table{}
	}
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.binds = append(f.binds, [3]string{name, key, exchange})
	return nil
}

type sent struct {
	key     string
	body    string
	headers amqp.Table
}

type fakeSender struct {
	err  error
	msgs []sent
}

func (f *fakeSender) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, sent{key: routingKey, body: string(body), headers: headers})
	return nil
}

type fakeAck struct {
	acks, nacks int
	requeued    bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error { a.acks++; return nil }
func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacks++
	a.requeued = requeue
	return nil
}
func (a *fakeAck) Reject(tag uint64, requeue bool) error { a.nacks++; return nil }

func TestDeclareTopology(t *testing.T) {
	d := &fakeDeclarer{}
	require.NoError(t, DeclareBase(d))
	assert.Equal(t, []string{"gamezone.events:topic", "gamezone.dlx:topic", "gamezone.retry:topic"}, d.exchanges)

	require.NoError(t, DeclareQueueWithDLQ(d, QueueSpec{
		Name:     "notification.q",
		BindKeys: []string{"orders.#", "users.#"},
		DLQ:      "notification.dlq",
	}))
	assert.Equal(t, ExchangeDLX, d.queues["notification.q"]["x-dead-letter-exchange"])
	assert.Equal(t, "notification.dlq", d.queues["notification.q"]["x-dead-letter-routing-key"])
	assert.Contains(t, d.binds, [3]string{"notification.q", "orders.#", ExchangeEvents})
	assert.Contains(t, d.binds, [3]string{"notification.dlq", "notification.dlq", ExchangeDLX})

	require.NoError(t, DeclareRetryQueue(d, "notification.retry.orders.placed", "notification.orders.placed", "orders.placed", 5000))
	assert.Equal(t, 5000, d.queues["notification.retry.orders.placed"]["x-message-ttl"])
	assert.Contains(t, d.binds, [3]string{"notification.retry.orders.placed", "notification.orders.placed", ExchangeRetry})
}

func TestGetAttempts(t *testing.T) {
	assert.Equal(t, int32(0), GetAttempts(nil))
	assert.Equal(t, int32(0), GetAttempts(amqp.Table{}))
	assert.Equal(t, int32(3), GetAttempts(amqp.Table{"x-attempts": int32(3)}))
	assert.Equal(t, int32(4), GetAttempts(amqp.Table{"x-attempts": int64(4)}))
	assert.Equal(t, int32(5), GetAttempts(amqp.Table{"x-attempts": float64(5)}))
	assert.Equal(t, int32(0), GetAttempts(amqp.Table{"x-attempts": "7"}))
}

func TestRetryOrDLQSchedulesRetry(t *testing.T) {
	ack := &fakeAck{}
	retry, dlq := &fakeSender{}, &fakeSender{}
	d := amqp.Delivery{Acknowledger: ack, RoutingKey: "orders.placed", Body: []byte(`{}`), Headers: amqp.Table{"x-attempts": int32(1)}}

	err := RetryOrDLQ(context.Background(), d, "notification", 3, retry, dlq, "notification.dlq")

	assert.ErrorIs(t, err, ErrRetryScheduled)
	require.Len(t, retry.msgs, 1)
	assert.Equal(t, "notification.orders.placed", retry.msgs[0].key)
	assert.Equal(t, int32(2), retry.msgs[0].headers["x-attempts"])
	assert.Empty(t, dlq.msgs)
	assert.Equal(t, 1, ack.acks)
}

func TestRetryOrDLQSendsToDLQAtMax(t *testing.T) {
	ack := &fakeAck{}
	retry, dlq := &fakeSender{}, &fakeSender{}
	d := amqp.Delivery{Acknowledger: ack, RoutingKey: "orders.placed", Body: []byte(`{}`), Headers: amqp.Table{"x-attempts": int32(3)}}

	err := RetryOrDLQ(context.Background(), d, "notification", 3, retry, dlq, "notification.dlq")

	assert.ErrorIs(t, err, ErrSentToDLQ)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "notification.dlq", dlq.msgs[0].key)
	assert.Empty(t, retry.msgs)
	assert.Equal(t, 1, ack.acks)
}

func TestRetryOrDLQRequeuesOnPublishFailure(t *testing.T) {
	ack := &fakeAck{}
	boom := errors.New("channel closed")
	d := amqp.Delivery{Acknowledger: ack, RoutingKey: "users.deleted"}

	err := RetryOrDLQ(context.Background(), d, "notification", 3, &fakeSender{err: boom}, &fakeSender{}, "notification.dlq")

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeued)
}

type fakeSubscriber struct {
	prefetch int
	queue    string
	tag      string
	qosErr   error
}

func (f *fakeSubscriber) Qos(prefetchCount, _ int, _ bool) error {
	f.prefetch = prefetchCount
	return f.qosErr
}

func (f *fakeSubscriber) Consume(queue, consumer string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	if autoAck {
		return nil, errors.New("auto ack not expected")
	}
	f.queue, f.tag = queue, consumer
	return make(chan amqp.Delivery), nil
}

func TestConsume(t *testing.T) {
	sub := &fakeSubscriber{}
	d, err := Consume(sub, ConsumeOptions{Queue: "notification.q", Tag: "notification", Prefetch: 20})
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, 20, sub.prefetch)
	assert.Equal(t, "notification.q", sub.queue)
	assert.Equal(t, "notification", sub.tag)

	_, err = Consume(sub, ConsumeOptions{Queue: "notification.q"})
	require.NoError(t, err)
	assert.Equal(t, 1, sub.prefetch, "prefetch floor")

	_, err = Consume(sub, ConsumeOptions{})
	assert.Error(t, err)

	sub.qosErr = errors.New("channel closed")
	_, err = Consume(sub, ConsumeOptions{Queue: "notification.q"})
	assert.ErrorContains(t, err, "qos notification.q")
}

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return nil
}

func TestPublisherPublish(t *testing.T) {
	ch := &fakeChannel{}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	p := &Publisher{ch: ch, exchange: ExchangeEvents, now: func() time.Time { return at }}

	err := p.Publish(context.Background(), "orders.placed", []byte(`{}`), amqp.Table{HeaderOutboxID: "e1"})
	require.NoError(t, err)
	assert.Equal(t, ExchangeEvents, ch.exchange)
	assert.Equal(t, "orders.placed", ch.key)
	assert.Equal(t, "e1", ch.msg.MessageId)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, at, ch.msg.Timestamp)

	require.NoError(t, p.Publish(context.Background(), "notification.orders.placed", nil, amqp.Table{HeaderAttempts: int32(1)}))
	assert.Empty(t, ch.msg.MessageId)
}

func TestDialConfigNamesConnection(t *testing.T) {
	cfg := dialConfig("outbox-worker")
	assert.Equal(t, "outbox-worker", cfg.Properties["connection_name"])
	assert.Equal(t, heartbeat, cfg.Heartbeat)

	assert.NotContains(t, dialConfig("").Properties, "connection_name")
}
