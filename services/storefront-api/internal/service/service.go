package service

import (
	"context"

	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"
)

// enqueue stores evt in the outbox; call it inside the transaction that made the change.
func enqueue[T any](ctx context.Context, outbox repo.Outbox, evt models.Event[T]) error {
	return outbox.Enqueue(ctx, evt.ID, evt.AggregateID, evt.Type, evt)
}

func requireAdmin(actor models.User) error {
	if !actor.IsAdmin() {
		return apperr.New(apperr.TypeForbidden, "")
	}
	return nil
}
