package outbox

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGStore struct {
	DB *pgxpool.Pool
}

var _ Store = (*PGStore)(nil)

func (s *PGStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Pending(ctx context.Context) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	var n int
	err := s.DB.QueryRow(ctx2, `select count(*) from outbox_events where sent_at is null`).Scan(&n)
	return n, err
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Due(ctx context.Context, limit int) ([]Event, error) {
	rows, err := t.tx.Query(ctx, `
		select id::text, aggregate_id, event_type, payload::text, attempts
		from outbox_events
		where sent_at is null and next_attempt_at <= now()
		order by created_at
		limit $1
		for update skip locked
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batch []Event
	for rows.Next() {
		var e Event
		var payloadText string
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.Type, &payloadText, &e.Attempts); err != nil {
			return nil, err
		}
		e.Payload = []byte(payloadText)
		batch = append(batch, e)
	}
	return batch, rows.Err()
}

func (t pgTx) MarkSent(ctx context.Context, id string) error {
	_, err := t.tx.Exec(ctx, `update outbox_events set sent_at=now(), last_error=null where id=$1::uuid`, id)
	return err
}

func (t pgTx) MarkDropped(ctx context.Context, id, reason string) error {
	_, err := t.tx.Exec(ctx, `update outbox_events set last_error=$2, sent_at=now() where id=$1::uuid`, id, reason)
	return err
}

func (t pgTx) Reschedule(ctx context.Context, id string, next time.Time, lastErr string) error {
	_, err := t.tx.Exec(ctx, `
		update outbox_events
		set attempts = attempts + 1,
		    next_attempt_at = $2,
		    last_error = $3
		where id = $1::uuid
	`, id, next, lastErr)
	return err
}
