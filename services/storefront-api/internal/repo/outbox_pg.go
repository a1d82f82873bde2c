package repo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxPG struct {
	DB *pgxpool.Pool
}

var _ Outbox = (*OutboxPG)(nil)

// Enqueue writes the event to outbox_events within the caller's transaction, if any.
func (o *OutboxPG) Enqueue(ctx context.Context, eventID, aggregateID, eventType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	_, err = conn(ctx, o.DB).Exec(ctx, `
		insert into outbox_events(
			id, aggregate_id, event_type, payload,
			attempts, next_attempt_at, created_at
		)
		values (
			$1::uuid, $2, $3, $4::jsonb,
			0, now(), now()
		)
	`, eventID, aggregateID, eventType, string(b))

	return pgErr(err, "")
}
