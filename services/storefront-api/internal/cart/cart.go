// Package cart keeps a shopper's cart consistent with the catalog: quantities
// never exceed stock, sold-out and deleted products fall out, and prices
// follow the catalog until checkout.
package cart

import (
	"time"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"
)

// Item is a product snapshot plus the requested quantity.
type Item struct {
	ProductID   int64           `json:"id_producto"`
	Name        string          `json:"nombre"`
	Description string          `json:"descripcion"`
	Price       models.Money    `json:"precio"`
	Stock       int             `json:"stock"`
	Brand       string          `json:"marca"`
	Category    models.Category `json:"categoria"`
	Image       string          `json:"imagen"`
	Quantity    int             `json:"cantidad"`
}

func (it Item) Subtotal() models.Money { return it.Price.Mul(it.Quantity) }

func (it *Item) refresh(p models.Product) {
	it.Name = p.Name
	it.Description = p.Description
	it.Price = p.Price
	it.Stock = p.Stock
	it.Brand = p.Brand
	it.Category = p.Category
	it.Image = p.Image
}

func itemFrom(p models.Product, qty int) Item {
	it := Item{ProductID: p.ID, Quantity: qty}
	it.refresh(p)
	return it
}

type Cart struct {
	UserID    int64     `json:"id_usuario"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"fecha_actualizacion"`
}

func New(userID int64) Cart {
	return Cart{UserID: userID, Items: []Item{}}
}

func (c *Cart) find(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Item(productID int64) (Item, bool) {
	if i := c.find(productID); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

// Add puts qty units of p in the cart, merging with what is already there.
func (c *Cart) Add(p models.Product, qty int) error {
	if qty <= 0 {
		return apperr.Validation("La cantidad debe ser mayor que cero")
	}
	if p.Stock <= 0 {
		return apperr.Stock(p.Name)
	}

	i := c.find(p.ID)
	if i < 0 {
		if qty > p.Stock {
			return apperr.Stock(p.Name)
		}
		c.Items = append(c.Items, itemFrom(p, qty))
		return nil
	}

	if c.Items[i].Quantity+qty > p.Stock {
		return apperr.Stock(p.Name)
	}
	c.Items[i].refresh(p)
	c.Items[i].Quantity += qty
	return nil
}

// SetQuantity replaces the quantity of an item. Anything below one removes it.
func (c *Cart) SetQuantity(productID int64, qty int) error {
	i := c.find(productID)
	if i < 0 {
		return apperr.New(apperr.TypeCartItem, "")
	}
	if qty < 1 {
		c.removeAt(i)
		return nil
	}
	if qty > c.Items[i].Stock {
		return apperr.Stock(c.Items[i].Name)
	}
	c.Items[i].Quantity = qty
	return nil
}

func (c *Cart) Remove(productID int64) error {
	i := c.find(productID)
	if i < 0 {
		return apperr.New(apperr.TypeCartItem, "")
	}
	c.removeAt(i)
	return nil
}

func (c *Cart) removeAt(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

func (c *Cart) Clear() {
	c.Items = []Item{}
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

// Total is the sum of price times quantity over all items.
func (c Cart) Total() models.Money {
	var total models.Money
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// CanIncrement reports whether one more unit of the product fits in stock.
func (c Cart) CanIncrement(productID int64) bool {
	i := c.find(productID)
	return i >= 0 && c.Items[i].Quantity < c.Items[i].Stock
}

func (c Cart) Lines() []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, models.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

// ProductIDs lists the products referenced by the cart, in cart order.
func (c Cart) ProductIDs() []int64 {
	out := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it.ProductID)
	}
	return out
}
