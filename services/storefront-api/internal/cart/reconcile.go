package cart

import "gamezone/shared/pkg/models"

type AdjustmentKind string

const (
	AdjustRemoved  AdjustmentKind = "eliminado"
	AdjustSoldOut  AdjustmentKind = "agotado"
	AdjustClamped  AdjustmentKind = "ajustado"
	AdjustRepriced AdjustmentKind = "precio"
)

// Adjustment records one change Reconcile made to the cart.
type Adjustment struct {
	ProductID        int64          `json:"id_producto"`
	Name             string         `json:"nombre"`
	Kind             AdjustmentKind `json:"tipo"`
	PreviousQuantity int            `json:"cantidad_anterior"`
	Quantity         int            `json:"cantidad"`
	PreviousPrice    models.Money   `json:"precio_anterior,omitempty"`
	Price            models.Money   `json:"precio,omitempty"`
}

// Reconcile brings every item in line with the live catalog. Products absent
// from live are dropped, sold-out products are dropped, quantities above stock
// are clamped and price changes are taken over. The returned adjustments are in
// cart order; an empty result means the cart was already current.
func (c *Cart) Reconcile(live map[int64]models.Product) []Adjustment {
	var adj []Adjustment
	kept := c.Items[:0]
	for _, it := range c.Items {
		p, ok := live[it.ProductID]
		if !ok {
			adj = append(adj, Adjustment{ProductID: it.ProductID, Name: it.Name, Kind: AdjustRemoved, PreviousQuantity: it.Quantity})
			continue
		}
		if p.Stock <= 0 {
			adj = append(adj, Adjustment{ProductID: it.ProductID, Name: p.Name, Kind: AdjustSoldOut, PreviousQuantity: it.Quantity})
			continue
		}

		if p.Price != it.Price {
			adj = append(adj, Adjustment{
				ProductID: it.ProductID, Name: p.Name, Kind: AdjustRepriced,
				PreviousQuantity: it.Quantity, Quantity: it.Quantity,
				PreviousPrice: it.Price, Price: p.Price,
			})
		}
		it.refresh(p)
		if it.Quantity > p.Stock {
			adj = append(adj, Adjustment{
				ProductID: it.ProductID, Name: p.Name, Kind: AdjustClamped,
				PreviousQuantity: it.Quantity, Quantity: p.Stock,
			})
			it.Quantity = p.Stock
		}
		kept = append(kept, it)
	}
	if kept == nil {
		kept = []Item{}
	}
	c.Items = kept
	return adj
}
