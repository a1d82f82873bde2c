package outbox

import (
	"context"
	"time"
)

type Event struct {
	ID          string
	AggregateID string
	Type        string
	Payload     []byte
	Attempts    int
}

// Tx is one relay pass over the outbox. Rows returned by Due stay locked
// until the pass ends.
type Tx interface {
	Due(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	MarkDropped(ctx context.Context, id, reason string) error
	Reschedule(ctx context.Context, id string, next time.Time, lastErr string) error
}

type Store interface {
	// WithinTx commits what fn recorded when it returns nil.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Pending(ctx context.Context) (int, error)
}
