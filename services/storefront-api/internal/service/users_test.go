package service

import (
	"context"
	"encoding/json"
	"testing"

	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsAndCascadeDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	seller := e.mustUser(t, "Vendedor", "seller@example.com", models.RoleAdmin)

	own, err := e.products.Create(ctx, seller, models.Product{Name: "Miku", Price: models.Pesos(180000), Stock: 4, Category: models.CategoryFigures})
	require.NoError(t, err)
	zelda := e.mustProduct(t, "Zelda", 250000, 5)

	_, err = e.orders.Place(ctx, seller, []models.OrderLine{{ProductID: zelda.ID, Quantity: 2}})
	require.NoError(t, err)
	done, err := e.orders.Place(ctx, seller, []models.OrderLine{{ProductID: zelda.ID, Quantity: 1}})
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, e.admin, done.ID, models.OrderStatusCompleted)
	require.NoError(t, err)

	// somebody else's order referencing the seller's product survives
	keep, err := e.orders.Place(ctx, e.customer, []models.OrderLine{{ProductID: own.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, e.stock(t, zelda.ID))

	stats, err := e.users.Stats(ctx, e.admin, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Products: 1, Orders: 2}, stats)

	deleted, err := e.users.Delete(ctx, e.admin, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Products: 1, Orders: 2}, deleted)

	assert.Equal(t, 4, e.stock(t, zelda.ID), "pending order released, completed one not")
	_, err = e.store.Users.GetByID(ctx, seller.ID)
	assert.Equal(t, apperr.TypeUserNotFound, apperr.TypeOf(err))
	_, err = e.store.Products.GetByID(ctx, own.ID)
	assert.Equal(t, apperr.TypeProductNotFound, apperr.TypeOf(err))

	survivor, err := e.orders.Get(ctx, e.customer, keep.ID)
	require.NoError(t, err)
	assert.Nil(t, survivor.Items[0].ProductID)
	assert.Equal(t, "Miku", survivor.Items[0].Name)

	events := e.mem.OutboxEvents()
	last := events[len(events)-1]
	assert.Equal(t, models.EventUserDeleted, last.Type)
	var evt models.Event[models.UserDeletedPayload]
	require.NoError(t, json.Unmarshal(last.Payload, &evt))
	assert.Equal(t, 2, evt.Payload.Orders)
	assert.Equal(t, "Vendedor", evt.Payload.Name)
}

func TestDeleteGuards(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.users.Delete(ctx, e.customer, e.admin.ID)
	assert.Equal(t, apperr.TypeForbidden, apperr.TypeOf(err))

	_, err = e.users.Delete(ctx, e.admin, e.admin.ID)
	assert.Equal(t, apperr.TypeForbidden, apperr.TypeOf(err))

	_, err = e.users.Delete(ctx, e.admin, 999)
	assert.Equal(t, apperr.TypeUserNotFound, apperr.TypeOf(err))

	other := e.mustUser(t, "Root", "root@example.com", models.RoleAdmin)
	_, err = e.users.Delete(ctx, other, e.admin.ID)
	require.NoError(t, err)

	promoted, err := e.users.ChangeRole(ctx, other, e.customer.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, promoted.IsAdmin())
	_, err = e.users.ChangeRole(ctx, other, e.customer.ID, models.RoleCustomer)
	require.NoError(t, err)

	// an actor whose rights were revoked after authenticating still cannot
	// remove the last administrator
	stale := other
	stale.ID = e.customer.ID
	_, err = e.users.Delete(ctx, stale, other.ID)
	assert.Equal(t, apperr.TypeLastAdmin, apperr.TypeOf(err))
}

func TestChangeRoleLastAdmin(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.users.ChangeRole(ctx, e.admin, e.admin.ID, models.RoleCustomer)
	assert.Equal(t, apperr.TypeLastAdmin, apperr.TypeOf(err))

	_, err = e.users.ChangeRole(ctx, e.admin, e.customer.ID, "root")
	assert.Equal(t, apperr.TypeValidation, apperr.TypeOf(err))

	_, err = e.users.ChangeRole(ctx, e.customer, e.customer.ID, models.RoleAdmin)
	assert.Equal(t, apperr.TypeForbidden, apperr.TypeOf(err))

	promoted, err := e.users.ChangeRole(ctx, e.admin, e.customer.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	demoted, err := e.users.ChangeRole(ctx, e.admin, e.admin.ID, models.RoleCustomer)
	require.NoError(t, err, "no longer the last administrator")
	assert.False(t, demoted.IsAdmin())

	list, err := e.users.List(ctx, promoted)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := e.store.Users.CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

type lockingUsers struct {
	repo.Users
	locks  int
	counts int
}

func (u *lockingUsers) LockAdmins(ctx context.Context) (int, error) {
	u.locks++
	return u.Users.LockAdmins(ctx)
}

func (u *lockingUsers) CountByRole(ctx context.Context, role models.Role) (int, error) {
	u.counts++
	return u.Users.CountByRole(ctx, role)
}

func TestAdminGuardsLockAdministrators(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	users := &lockingUsers{Users: e.store.Users}
	e.users.Store.Users = users

	second := e.mustUser(t, "Sofi", "sofi@gamezone.co", models.RoleAdmin)
	third := e.mustUser(t, "Tomas", "tomas@gamezone.co", models.RoleAdmin)

	_, err := e.users.ChangeRole(ctx, e.admin, second.ID, models.RoleCustomer)
	require.NoError(t, err)
	_, err = e.users.Delete(ctx, e.admin, third.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, users.locks)
	assert.Zero(t, users.counts, "guards must not count without the row lock")

	_, err = e.users.ChangeRole(ctx, e.admin, e.admin.ID, models.RoleCustomer)
	assert.Equal(t, apperr.TypeLastAdmin, apperr.TypeOf(err))
}
