package repo

import (
	"context"

	"gamezone/services/storefront-api/internal/cart"
	"gamezone/shared/pkg/models"
)

// TxManager runs fn inside one transaction. Repositories called with the ctx
// handed to fn take part in it; nested calls reuse the outer transaction.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role models.Role) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
	// LockAdmins counts administrators while holding their rows for the rest
	// of the transaction.
	LockAdmins(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type Products interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (models.Product, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id int64) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	// AdjustStock adds delta to the stock and returns the new value.
	// It fails with a stock error instead of going below zero.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	Delete(ctx context.Context, id int64) error
	CountByCreator(ctx context.Context, userID int64) (int, error)
	DeleteByCreator(ctx context.Context, userID int64) (int, error)
}

type Orders interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another and fails with
	// an order state error when the order is no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	DeleteByUser(ctx context.Context, userID int64) (int, error)
}

type Outbox interface {
	Enqueue(ctx context.Context, eventID, aggregateID, eventType string, payload any) error
}

type Carts interface {
	Get(ctx context.Context, userID int64) (cart.Cart, error)
	Save(ctx context.Context, c cart.Cart) error
	Delete(ctx context.Context, userID int64) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Tx       TxManager
	Users    Users
	Products Products
	Orders   Orders
	Outbox   Outbox
}
