package service

import (
	"context"

	"gamezone/services/storefront-api/internal/metrics"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	Store repo.Store
	Carts repo.Carts
	Log   zerolog.Logger
}

// Stats counts what deleting a user would take with them.
type Stats struct {
	Products int `json:"products"`
	Orders   int `json:"orders"`
}

func (s *UserService) List(ctx context.Context, actor models.User) ([]models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.Store.Users.List(ctx)
}

func (s *UserService) Stats(ctx context.Context, actor models.User, id int64) (Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return Stats{}, err
	}
	if _, err := s.Store.Users.GetByID(ctx, id); err != nil {
		return Stats{}, err
	}
	products, err := s.Store.Products.CountByCreator(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	orders, err := s.Store.Orders.CountByUser(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Products: products, Orders: orders}, nil
}

func lastAdmin() error {
	return apperr.New(apperr.TypeLastAdmin, "Debe existir al menos un administrador")
}

// ChangeRole sets the role of user id. The last administrator cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, actor models.User, id int64, role models.Role) (models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return models.User{}, err
	}
	if !role.Valid() {
		return models.User{}, apperr.Validation("Rol inválido")
	}

	var updated models.User
	err := s.Store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Store.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.Role == role {
			updated = u
			return nil
		}
		if u.IsAdmin() {
			admins, err := s.Store.Users.LockAdmins(ctx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return lastAdmin()
			}
		}
		if err := s.Store.Users.UpdateRole(ctx, id, role); err != nil {
			return err
		}
		u.Role = role
		updated = u
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	s.Log.Info().Int64("user_id", id).Str("role", string(role)).Int64("by", actor.ID).Msg("user role changed")
	return updated, nil
}

// Delete removes a user together with their orders and the products they
// created. Units held by their pending orders go back to stock first.
func (s *UserService) Delete(ctx context.Context, actor models.User, id int64) (Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return Stats{}, err
	}
	if actor.ID == id {
		return Stats{}, apperr.New(apperr.TypeForbidden, "No puedes eliminar tu propia cuenta")
	}

	var deleted Stats
	err := s.Store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.Store.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if u.IsAdmin() {
			admins, err := s.Store.Users.LockAdmins(ctx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return lastAdmin()
			}
		}

		orders, err := s.Store.Orders.ListByUser(ctx, id)
		if err != nil {
			return err
		}
		for _, o := range orders {
			if o.Status != models.OrderStatusPending {
				continue
			}
			for _, it := range o.Items {
				if it.ProductID == nil {
					continue
				}
				_, err := s.Store.Products.AdjustStock(ctx, *it.ProductID, it.Quantity)
				if err != nil && !apperr.IsType(err, apperr.TypeProductNotFound) {
					return err
				}
			}
		}

		if deleted.Orders, err = s.Store.Orders.DeleteByUser(ctx, id); err != nil {
			return err
		}
		if deleted.Products, err = s.Store.Products.DeleteByCreator(ctx, id); err != nil {
			return err
		}
		if err := s.Store.Users.Delete(ctx, id); err != nil {
			return err
		}
		return enqueue(ctx, s.Store.Outbox, models.NewUserDeletedEvent(u, deleted.Products, deleted.Orders))
	})
	if err != nil {
		return Stats{}, err
	}

	if s.Carts != nil {
		if err := s.Carts.Delete(ctx, id); err != nil {
			s.Log.Warn().Err(err).Int64("user_id", id).Msg("cart cleanup failed")
		}
	}

	metrics.UsersDeletedTotal.Inc()
	s.Log.Info().
		Int64("user_id", id).
		Int("products", deleted.Products).
		Int("orders", deleted.Orders).
		Int64("by", actor.ID).
		Msg("user deleted")
	return deleted, nil
}
