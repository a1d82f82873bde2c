package service

import (
	"context"
	"sort"

	"gamezone/services/storefront-api/internal/metrics"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type OrderService struct {
	Store repo.Store
	Log   zerolog.Logger
}

// mergeLines sums duplicate products, keeping first-seen order.
func mergeLines(lines []models.OrderLine) ([]models.OrderLine, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("El pedido no tiene productos")
	}
	pos := make(map[int64]int, len(lines))
	out := make([]models.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID <= 0 {
			return nil, apperr.Validation("Producto inválido en el pedido")
		}
		if l.Quantity <= 0 {
			return nil, apperr.Validation("La cantidad debe ser mayor que cero")
		}
		if i, ok := pos[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

// Place creates a pending order for user. Stock is checked and taken, prices
// are snapshotted and the orders.placed event is queued in one transaction.
func (s *OrderService) Place(ctx context.Context, user models.User, lines []models.OrderLine) (models.Order, error) {
	merged, err := mergeLines(lines)
	if err != nil {
		return models.Order{}, err
	}

	// lock rows in id order so concurrent checkouts cannot deadlock
	ids := make([]int64, 0, len(merged))
	for _, l := range merged {
		ids = append(ids, l.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var order models.Order
	err = s.Store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		products := make(map[int64]models.Product, len(ids))
		for _, id := range ids {
			p, err := s.Store.Products.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			products[id] = p
		}

		items := make([]models.OrderItem, 0, len(merged))
		for _, l := range merged {
			p := products[l.ProductID]
			if p.Stock < l.Quantity {
				return apperr.Stock(p.Name)
			}
			if _, err := s.Store.Products.AdjustStock(ctx, p.ID, -l.Quantity); err != nil {
				return err
			}
			pid := p.ID
			items = append(items, models.OrderItem{ProductID: &pid, Name: p.Name, Quantity: l.Quantity, UnitPrice: p.Price})
		}

		order = models.Order{
			UserID: user.ID,
			Status: models.OrderStatusPending,
			Items:  items,
		}
		order.Total = order.ComputeTotal()
		if err := s.Store.Orders.Create(ctx, &order); err != nil {
			return err
		}
		return enqueue(ctx, s.Store.Outbox, models.NewOrderPlacedEvent(order))
	})
	if err != nil {
		if apperr.IsType(err, apperr.TypeStock) {
			metrics.StockRejectionsTotal.Inc()
		}
		return models.Order{}, err
	}

	metrics.OrdersPlacedTotal.Inc()
	s.Log.Info().
		Int64("order_id", order.ID).
		Int64("user_id", user.ID).
		Str("total", order.Total.String()).
		Int("items", len(order.Items)).
		Msg("order placed")
	return order, nil
}

func (s *OrderService) List(ctx context.Context, actor models.User) ([]models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Store.Orders.List(ctx)
}

func (s *OrderService) Mine(ctx context.Context, actor models.User) ([]models.Order, error) {
	return s.Store.Orders.ListByUser(ctx, actor.ID)
}

// Get returns the order to its owner or an administrator. Anyone else gets
// not found, so other users' order ids are not confirmed.
func (s *OrderService) Get(ctx context.Context, actor models.User, id int64) (models.Order, error) {
	o, err := s.Store.Orders.GetByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if o.UserID != actor.ID && !actor.IsAdmin() {
		return models.Order{}, apperr.New(apperr.TypeOrderNotFound, "")
	}
	return o, nil
}

// UpdateStatus completes or cancels a pending order. Cancelling puts the
// units back on the products that still exist.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.User, id int64, to models.OrderStatus) (models.Order, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Order{}, err
	}
	if !to.Valid() {
		return models.Order{}, apperr.Validation("Estado inválido: " + string(to))
	}

	var order models.Order
	err := s.Store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.Store.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		from := o.Status
		if !from.CanTransition(to) {
			return apperr.New(apperr.TypeOrderState, "El pedido está "+string(from)+" y no puede pasar a "+string(to))
		}
		if err := s.Store.Orders.UpdateStatus(ctx, id, from, to); err != nil {
			return err
		}

		if to == models.OrderStatusCancelled {
			for _, it := range o.Items {
				if it.ProductID == nil {
					continue
				}
				_, err := s.Store.Products.AdjustStock(ctx, *it.ProductID, it.Quantity)
				if apperr.IsType(err, apperr.TypeProductNotFound) {
					continue
				}
				if err != nil {
					return err
				}
			}
		}

		o.Status = to
		order = o
		return enqueue(ctx, s.Store.Outbox, models.NewOrderStatusChangedEvent(o, from))
	})
	if err != nil {
		return models.Order{}, err
	}

	metrics.OrderStatusChangesTotal.WithLabelValues(string(to)).Inc()
	s.Log.Info().Int64("order_id", id).Str("status", string(to)).Int64("by", actor.ID).Msg("order status changed")
	return order, nil
}
