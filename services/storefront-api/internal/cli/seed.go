package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gamezone/services/storefront-api/internal/catalog"
	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/models"

	"gopkg.in/yaml.v3"
)

type price models.Money

func (p *price) UnmarshalYAML(n *yaml.Node) error {
	m, err := models.ParseMoney(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*p = price(m)
	return nil
}

type seedProduct struct {
	Name        string `yaml:"nombre"`
	Description string `yaml:"descripcion"`
	Price       price  `yaml:"precio"`
	Stock       int    `yaml:"stock"`
	Brand       string `yaml:"marca"`
	Category    string `yaml:"categoria"`
	Image       string `yaml:"imagen"`
}

type seedFile struct {
	Products []seedProduct `yaml:"productos"`
}

// ParseCatalog reads a catalog file:
//
//	productos:
//	  - nombre: The Legend of Zelda
//	    precio: 250000
//	    stock: 8
//	    categoria: videojuegos
func ParseCatalog(r io.Reader) ([]models.Product, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty catalog")
		}
		return nil, err
	}

	out := make([]models.Product, 0, len(f.Products))
	for i, sp := range f.Products {
		p := models.Product{
			Name:        sp.Name,
			Description: sp.Description,
			Price:       models.Money(sp.Price),
			Stock:       sp.Stock,
			Brand:       sp.Brand,
			Category:    models.Category(sp.Category),
			Image:       sp.Image,
		}
		if err := catalog.ValidateProduct(&p); err != nil {
			return nil, fmt.Errorf("product %d (%q): %w", i+1, sp.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

type SeedResult struct {
	Created int
	Updated int
	Skipped int
}

// Seed creates the products as owner. A product whose name matches an
// existing one, ignoring case, is skipped or, with overwrite, updated.
func Seed(ctx context.Context, svc *service.ProductService, owner models.User, products []models.Product, overwrite bool) (SeedResult, error) {
	existing, err := svc.List(ctx, catalog.Filter{})
	if err != nil {
		return SeedResult{}, err
	}
	byName := make(map[string]int64, len(existing))
	for _, p := range existing {
		byName[strings.ToLower(p.Name)] = p.ID
	}

	var res SeedResult
	for _, p := range products {
		id, found := byName[strings.ToLower(p.Name)]
		switch {
		case found && !overwrite:
			res.Skipped++
		case found:
			if _, err := svc.Update(ctx, owner, id, p); err != nil {
				return res, err
			}
			res.Updated++
		default:
			created, err := svc.Create(ctx, owner, p)
			if err != nil {
				return res, err
			}
			byName[strings.ToLower(created.Name)] = created.ID
			res.Created++
		}
	}
	return res, nil
}
