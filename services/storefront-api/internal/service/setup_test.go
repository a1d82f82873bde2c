package service

import (
	"context"
	"testing"
	"time"

	"gamezone/services/storefront-api/internal/auth"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	mem   *repo.MemoryStore
	store repo.Store
	carts *repo.CartsMemory

	auth     *AuthService
	products *ProductService
	orders   *OrderService
	users    *UserService
	cart     *CartService

	admin    models.User
	customer models.User
}

func setup(t *testing.T) *env {
	t.Helper()
	mem := repo.NewMemoryStore()
	st := mem.Store()
	carts := repo.NewCartsMemory()
	log := zerolog.Nop()

	e := &env{mem: mem, store: st, carts: carts}
	e.auth = &AuthService{
		Users:  st.Users,
		Hasher: auth.Hasher{Cost: bcrypt.MinCost},
		Tokens: &auth.Tokens{Secret: []byte("test"), TTL: time.Hour},
		Log:    log,
	}
	e.products = &ProductService{Products: st.Products, Log: log}
	e.orders = &OrderService{Store: st, Log: log}
	e.users = &UserService{Store: st, Carts: carts, Log: log}
	e.cart = &CartService{Carts: carts, Products: st.Products, Orders: e.orders, Log: log}

	e.admin = e.mustUser(t, "Admin", "admin@gamezone.co", models.RoleAdmin)
	e.customer = e.mustUser(t, "Ana", "ana@example.com", models.RoleCustomer)
	return e
}

func (e *env) mustUser(t *testing.T, name, email string, role models.Role) models.User {
	t.Helper()
	u := models.User{Name: name, Email: email, Role: role, PasswordHash: "x"}
	require.NoError(t, e.store.Users.Create(context.Background(), &u))
	return u
}

func (e *env) mustProduct(t *testing.T, name string, pesos int64, stock int) models.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), e.admin, models.Product{
		Name: name, Price: models.Pesos(pesos), Stock: stock, Category: models.CategoryVideoGames,
	})
	require.NoError(t, err)
	return p
}

func (e *env) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := e.store.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (e *env) eventTypes() []string {
	var out []string
	for _, r := range e.mem.OutboxEvents() {
		out = append(out, r.Type)
	}
	return out
}
