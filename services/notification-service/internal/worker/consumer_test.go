package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"gamezone/services/notification-service/internal/notify"
	"gamezone/shared/pkg/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memDedupe struct {
	mu       sync.Mutex
	seen     map[string]bool
	err      error
	released []string
}

func (d *memDedupe) Claim(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedupe) Release(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
	d.released = append(d.released, id)
	return nil
}

type memSink struct {
	mu  sync.Mutex
	err error
	got []notify.Message
}

func (s *memSink) Deliver(_ context.Context, m notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, m)
	return nil
}

type sent struct {
	key     string
	headers amqp.Table
}

type fakeSender struct {
	msgs []sent
}

func (f *fakeSender) Publish(_ context.Context, key string, _ []byte, headers amqp.Table) error {
	f.msgs = append(f.msgs, sent{key: key, headers: headers})
	return nil
}

type fakeAck struct {
	mu      sync.Mutex
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAck) Ack(uint64, bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acks++
	return nil
}

func (a *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAck) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type fixture struct {
	c      *Consumer
	dedupe *memDedupe
	sink   *memSink
	retry  *fakeSender
	dlq    *fakeSender
}

func newFixture() *fixture {
	f := &fixture{dedupe: &memDedupe{}, sink: &memSink{}, retry: &fakeSender{}, dlq: &fakeSender{}}
	f.c = &Consumer{
		Log: zerolog.Nop(), Dedupe: f.dedupe, Sink: f.sink,
		RetryPub: f.retry, DLQPub: f.dlq, DLQKey: "notification.dlq", MaxAttempts: 3,
	}
	return f
}

func userDeleted(t *testing.T) []byte {
	t.Helper()
	b, err := json.Marshal(models.NewUserDeletedEvent(models.User{ID: 4, Name: "Leo", Email: "leo@example.com"}, 1, 0))
	require.NoError(t, err)
	return b
}

func delivery(ack *fakeAck, body []byte, attempts int32) amqp.Delivery {
	d := amqp.Delivery{Acknowledger: ack, Body: body, RoutingKey: models.EventUserDeleted}
	if attempts > 0 {
		d.Headers = amqp.Table{"x-attempts": attempts}
	}
	return d
}

func TestHandleDeliversOnce(t *testing.T) {
	f := newFixture()
	body := userDeleted(t)

	ack := &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, body, 0))
	f.c.handle(context.Background(), delivery(ack, body, 0))

	assert.Equal(t, 2, ack.acks)
	require.Len(t, f.sink.got, 1)
	assert.Equal(t, "leo@example.com", f.sink.got[0].To)
}

func TestHandleBadMessages(t *testing.T) {
	f := newFixture()

	ack := &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, []byte("{not json"), 0))
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeue, "dead-lettered, not requeued")

	ack = &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, []byte(`{"id":"e1","type":"orders.shipped","payload":{}}`), 0))
	assert.Equal(t, 1, ack.acks, "events without a notification are acked")

	ack = &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, []byte(`{"id":"e2","type":"users.deleted","payload":{"name":"x"}}`), 0))
	assert.Equal(t, 1, ack.nacks)
	assert.Empty(t, f.sink.got)
}

func TestHandleRetriesDedupeFailure(t *testing.T) {
	f := newFixture()
	f.dedupe.err = errors.New("redis down")

	ack := &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, userDeleted(t), 0))

	assert.Equal(t, 1, ack.acks)
	require.Len(t, f.retry.msgs, 1)
	assert.Equal(t, "notification.users.deleted", f.retry.msgs[0].key)
	assert.Equal(t, int32(1), f.retry.msgs[0].headers["x-attempts"])
	assert.Empty(t, f.dlq.msgs)
}

func TestHandleRelayAttemptsDoNotSpendRetries(t *testing.T) {
	f := newFixture()
	f.dedupe.err = errors.New("redis down")

	ack := &fakeAck{}
	d := delivery(ack, userDeleted(t), 0)
	d.Headers = amqp.Table{"x-outbox-id": "e1", "x-outbox-attempts": int32(5)}
	f.c.handle(context.Background(), d)

	require.Len(t, f.retry.msgs, 1)
	assert.Equal(t, int32(1), f.retry.msgs[0].headers["x-attempts"])
	assert.Empty(t, f.dlq.msgs)
}

func TestHandleSinkFailureEndsInDLQ(t *testing.T) {
	f := newFixture()
	f.sink.err = errors.New("smtp timeout")
	body := userDeleted(t)

	ack := &fakeAck{}
	f.c.handle(context.Background(), delivery(ack, body, 3))

	require.Len(t, f.dlq.msgs, 1)
	assert.Equal(t, "notification.dlq", f.dlq.msgs[0].key)
	assert.Len(t, f.dedupe.released, 1, "claim released so a replay can notify")

	f.sink.err = nil
	f.c.handle(context.Background(), delivery(ack, body, 0))
	assert.Len(t, f.sink.got, 1)
}

func TestRunStops(t *testing.T) {
	f := newFixture()
	deliveries := make(chan amqp.Delivery, 1)
	ack := &fakeAck{}
	deliveries <- delivery(ack, userDeleted(t), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.c.Run(ctx, deliveries)
		close(done)
	}()

	require.Eventually(t, func() bool {
		ack.mu.Lock()
		defer ack.mu.Unlock()
		return ack.acks == 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	closed := make(chan amqp.Delivery)
	close(closed)
	f.c.Run(context.Background(), closed)
}
