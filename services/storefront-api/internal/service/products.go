package service

import (
	"context"

	"gamezone/services/storefront-api/internal/catalog"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type ProductService struct {
	Products repo.Products
	Log      zerolog.Logger
}

func (s *ProductService) List(ctx context.Context, f catalog.Filter) ([]models.Product, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

func (s *ProductService) Featured(ctx context.Context, n int) (map[models.Category][]models.Product, error) {
	all, err := s.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Featured(all, n), nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (models.Product, error) {
	return s.Products.GetByID(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, actor models.User, p models.Product) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}
	if err := catalog.ValidateProduct(&p); err != nil {
		return models.Product{}, err
	}
	p.ID = 0
	p.CreatedBy = actor.ID
	if err := s.Products.Create(ctx, &p); err != nil {
		return models.Product{}, err
	}

	s.Log.Info().Int64("product_id", p.ID).Int64("by", actor.ID).Msg("product created")
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, actor models.User, id int64, p models.Product) (models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Product{}, err
	}
	if err := catalog.ValidateProduct(&p); err != nil {
		return models.Product{}, err
	}
	p.ID = id
	if err := s.Products.Update(ctx, &p); err != nil {
		return models.Product{}, err
	}

	s.Log.Info().Int64("product_id", p.ID).Int64("by", actor.ID).Msg("product updated")
	return p, nil
}

// Delete removes the product. Past orders keep their item snapshots.
func (s *ProductService) Delete(ctx context.Context, actor models.User, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.Products.Delete(ctx, id); err != nil {
		return err
	}

	s.Log.Info().Int64("product_id", id).Int64("by", actor.ID).Msg("product deleted")
	return nil
}
