package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgTxKey struct{}

// conn returns the transaction carried by ctx, or the pool.
func conn(ctx context.Context, db *pgxpool.Pool) querier {
	if tx, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return tx
	}
	return db
}

type TxPG struct {
	DB *pgxpool.Pool
}

func (t *TxPG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(pgTxKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := t.DB.Begin(ctx)
	if err != nil {
		return pgErr(err, "")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txCtx, hooks := withHooks(context.WithValue(ctx, pgTxKey{}, tx))
	if err := fn(txCtx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return pgErr(err, "")
	}
	hooks.run()
	return nil
}

// NewPGStore wires the Postgres repositories over one pool.
func NewPGStore(db *pgxpool.Pool) Store {
	return Store{
		Tx:       &TxPG{DB: db},
		Users:    &UsersPG{DB: db},
		Products: &ProductsPG{DB: db},
		Orders:   &OrdersPG{DB: db},
		Outbox:   &OutboxPG{DB: db},
	}
}
