package service

import (
	"context"

	"gamezone/services/storefront-api/internal/cart"
	"gamezone/services/storefront-api/internal/metrics"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type CartService struct {
	Carts    repo.Carts
	Products repo.Products
	Orders   *OrderService
	Log      zerolog.Logger
}

// CartView is a cart after reconciliation together with what changed.
type CartView struct {
	Cart        cart.Cart
	Adjustments []cart.Adjustment
}

// load fetches the cart and refreshes it against the live catalog.
func (s *CartService) load(ctx context.Context, userID int64) (cart.Cart, []cart.Adjustment, error) {
	c, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return cart.Cart{}, nil, err
	}

	live := make(map[int64]models.Product, len(c.Items))
	for _, id := range c.ProductIDs() {
		p, err := s.Products.GetByID(ctx, id)
		if apperr.IsType(err, apperr.TypeProductNotFound) {
			continue
		}
		if err != nil {
			return cart.Cart{}, nil, err
		}
		live[id] = p
	}

	adj := c.Reconcile(live)
	for _, a := range adj {
		metrics.CartAdjustmentsTotal.WithLabelValues(string(a.Kind)).Inc()
	}
	return c, adj, nil
}

func (s *CartService) Get(ctx context.Context, userID int64) (CartView, error) {
	c, adj, err := s.load(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.Save(ctx, c); err != nil {
		return CartView{}, err
	}
	return CartView{Cart: c, Adjustments: adj}, nil
}

func (s *CartService) Add(ctx context.Context, userID, productID int64, qty int) (CartView, error) {
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	return s.mutate(ctx, userID, func(c *cart.Cart) error { return c.Add(p, qty) })
}

func (s *CartService) SetQuantity(ctx context.Context, userID, productID int64, qty int) (CartView, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error { return c.SetQuantity(productID, qty) })
}

func (s *CartService) Remove(ctx context.Context, userID, productID int64) (CartView, error) {
	return s.mutate(ctx, userID, func(c *cart.Cart) error { return c.Remove(productID) })
}

func (s *CartService) Clear(ctx context.Context, userID int64) (CartView, error) {
	if err := s.Carts.Delete(ctx, userID); err != nil {
		return CartView{}, err
	}
	return CartView{Cart: cart.New(userID)}, nil
}

// mutate applies fn to the reconciled cart and saves it. When fn fails the
// reconciled cart is still saved, so the shopper sees current stock.
func (s *CartService) mutate(ctx context.Context, userID int64, fn func(c *cart.Cart) error) (CartView, error) {
	c, adj, err := s.load(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	opErr := fn(&c)
	if apperr.IsType(opErr, apperr.TypeStock) {
		metrics.StockRejectionsTotal.Inc()
	}
	if len(adj) > 0 || opErr == nil {
		if err := s.Carts.Save(ctx, c); err != nil {
			return CartView{}, err
		}
	}
	if opErr != nil {
		return CartView{}, opErr
	}
	return CartView{Cart: c, Adjustments: adj}, nil
}

// CheckoutResult carries the placed order, or the adjusted cart when the
// checkout was refused.
type CheckoutResult struct {
	Order       models.Order
	Cart        cart.Cart
	Adjustments []cart.Adjustment
}

// Checkout places an order for the whole cart. If the catalog moved since
// the shopper last looked (prices, stock, removals), the cart is updated,
// nothing is ordered, and a stock error comes back with the adjusted cart.
func (s *CartService) Checkout(ctx context.Context, user models.User) (CheckoutResult, error) {
	c, adj, err := s.load(ctx, user.ID)
	if err != nil {
		return CheckoutResult{}, err
	}

	if len(adj) > 0 {
		if err := s.Carts.Save(ctx, c); err != nil {
			return CheckoutResult{}, err
		}
		metrics.CheckoutsTotal.WithLabelValues("adjusted").Inc()
		return CheckoutResult{Cart: c, Adjustments: adj},
			apperr.New(apperr.TypeStock, apperr.StockMessage+": revisa los cambios en tu carrito")
	}
	if c.Empty() {
		metrics.CheckoutsTotal.WithLabelValues("empty").Inc()
		return CheckoutResult{Cart: c}, apperr.Validation("El carrito está vacío")
	}

	order, err := s.Orders.Place(ctx, user, c.Lines())
	if err != nil {
		metrics.CheckoutsTotal.WithLabelValues("failed").Inc()
		return CheckoutResult{Cart: c}, err
	}

	if err := s.Carts.Delete(ctx, user.ID); err != nil {
		s.Log.Warn().Err(err).Int64("user_id", user.ID).Msg("cart not cleared after checkout")
	}
	metrics.CheckoutsTotal.WithLabelValues("placed").Inc()
	return CheckoutResult{Order: order, Cart: cart.New(user.ID)}, nil
}
