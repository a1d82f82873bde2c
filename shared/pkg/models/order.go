package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusCompleted OrderStatus = "completado"
	OrderStatusCancelled OrderStatus = "cancelado"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransition reports whether an order may move from s to next.
// Only pending orders move, and only to a terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == OrderStatusPending && next.Terminal()
}

type Order struct {
	ID        int64       `json:"id_pedido"`
	UserID    int64       `json:"id_usuario"`
	UserName  string      `json:"usuario_nombre"`
	UserEmail string      `json:"-"`
	CreatedAt time.Time   `json:"fecha"`
	UpdatedAt time.Time   `json:"-"`
	Total     Money       `json:"total"`
	Status    OrderStatus `json:"estado"`
	Items     []OrderItem `json:"items"`
}

// OrderItem keeps a snapshot of the product at purchase time. ProductID is
// nil once the product has been removed from the catalog.
type OrderItem struct {
	ProductID *int64 `json:"id_producto"`
	Name      string `json:"nombre"`
	Quantity  int    `json:"cantidad"`
	UnitPrice Money  `json:"precio_unitario"`
}

func (it OrderItem) Subtotal() Money { return it.UnitPrice.Mul(it.Quantity) }

func (it OrderItem) MarshalJSON() ([]byte, error) {
	type alias OrderItem
	return json.Marshal(struct {
		alias
		Subtotal Money `json:"subtotal"`
	}{alias: alias(it), Subtotal: it.Subtotal()})
}

// Summary is the one-line product list shown in the admin orders table.
func (o Order) Summary() string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, it.Name+" x"+strconv.Itoa(it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (o Order) ComputeTotal() Money {
	var total Money
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	items := o.Items
	if items == nil {
		items = []OrderItem{}
	}
	a := alias(o)
	a.Items = items
	return json.Marshal(struct {
		alias
		Products string `json:"productos"`
	}{alias: a, Products: o.Summary()})
}

// OrderLine is one requested product in a checkout.
type OrderLine struct {
	ProductID int64 `json:"id_producto"`
	Quantity  int   `json:"cantidad"`
}
