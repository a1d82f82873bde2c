// Package catalog holds the product rules shared by the storefront pages:
// filtering, the home page showcase, stock labels and product validation.
package catalog

import (
	"strings"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"
)

const DefaultFeatured = 3

// LowStockThreshold is the highest stock still labelled as low.
const LowStockThreshold = 5

type Filter struct {
	Category string
	Search   string
}

func (f Filter) category() string {
	c := strings.ToLower(strings.TrimSpace(f.Category))
	if c == "all" || c == "todos" {
		return ""
	}
	return c
}

// Validate rejects an unknown category; empty and "all" mean any category.
func (f Filter) Validate() error {
	if c := f.category(); c != "" && !models.Category(c).Valid() {
		return apperr.Validation("Categoría inválida: " + f.Category)
	}
	return nil
}

// Apply keeps the products matching the filter, preserving their order.
func (f Filter) Apply(products []models.Product) []models.Product {
	cat := f.category()
	q := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if cat != "" && string(p.Category) != cat {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matches(p models.Product, q string) bool {
	for _, field := range []string{p.Name, p.Description, p.Brand} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Featured returns the first n products of every category.
func Featured(products []models.Product, n int) map[models.Category][]models.Product {
	if n <= 0 {
		n = DefaultFeatured
	}
	out := make(map[models.Category][]models.Product, len(models.Categories))
	for _, c := range models.Categories {
		out[c] = []models.Product{}
	}
	for _, p := range products {
		if list, ok := out[p.Category]; ok && len(list) < n {
			out[p.Category] = append(list, p)
		}
	}
	return out
}

type StockLevel string

const (
	StockOut       StockLevel = "agotado"
	StockLow       StockLevel = "bajo"
	StockAvailable StockLevel = "disponible"
)

func LevelOf(stock int) StockLevel {
	switch {
	case stock <= 0:
		return StockOut
	case stock <= LowStockThreshold:
		return StockLow
	default:
		return StockAvailable
	}
}

// ValidateProduct trims the text fields of p in place and checks it can be stored.
func ValidateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Image = strings.TrimSpace(p.Image)
	p.Category = models.Category(strings.ToLower(strings.TrimSpace(string(p.Category))))

	switch {
	case p.Name == "":
		return apperr.Validation("El nombre del producto es obligatorio")
	case !p.Category.Valid():
		return apperr.Validation("La categoría debe ser videojuegos o figuras")
	case p.Price <= 0:
		return apperr.Validation("El precio debe ser mayor que cero")
	case p.Stock < 0:
		return apperr.Validation("El stock no puede ser negativo")
	}
	return nil
}
