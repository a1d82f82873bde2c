package models

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Routing keys on the events exchange.
const (
	EventOrderPlaced        = "orders.placed"
	EventOrderStatusChanged = "orders.status_changed"
	EventUserDeleted        = "users.deleted"
)

type Event[T any] struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Time    time.Time `json:"time"`

	TraceID     string `json:"trace_id,omitempty"`
	AggregateID string `json:"aggregate_id"`

	Payload T `json:"payload"`
}

func newEvent[T any](eventType, aggregateID string, payload T) Event[T] {
	return Event[T]{
		ID:          uuid.NewString(),
		Type:        eventType,
		Version:     1,
		Time:        time.Now().UTC(),
		AggregateID: aggregateID,
		Payload:     payload,
	}
}

type OrderPlacedPayload struct {
	OrderID  int64              `json:"order_id"`
	UserID   int64              `json:"user_id"`
	UserName string             `json:"user_name"`
	Email    string             `json:"email"`
	Total    Money              `json:"total"`
	Items    []OrderItemPayload `json:"items"`
}

type OrderItemPayload struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice Money  `json:"unit_price"`
}

func NewOrderPlacedEvent(o Order) Event[OrderPlacedPayload] {
	items := make([]OrderItemPayload, 0, len(o.Items))
	for _, it := range o.Items {
		var pid int64
		if it.ProductID != nil {
			pid = *it.ProductID
		}
		items = append(items, OrderItemPayload{
			ProductID: pid, Name: it.Name, Qty: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}

	return newEvent(EventOrderPlaced, orderAggregate(o.ID), OrderPlacedPayload{
		OrderID:  o.ID,
		UserID:   o.UserID,
		UserName: o.UserName,
		Email:    o.UserEmail,
		Total:    o.Total,
		Items:    items,
	})
}

type OrderStatusChangedPayload struct {
	OrderID int64       `json:"order_id"`
	UserID  int64       `json:"user_id"`
	Email   string      `json:"email"`
	From    OrderStatus `json:"from"`
	To      OrderStatus `json:"to"`
	Total   Money       `json:"total"`
}

func NewOrderStatusChangedEvent(o Order, from OrderStatus) Event[OrderStatusChangedPayload] {
	return newEvent(EventOrderStatusChanged, orderAggregate(o.ID), OrderStatusChangedPayload{
		OrderID: o.ID,
		UserID:  o.UserID,
		Email:   o.UserEmail,
		From:    from,
		To:      o.Status,
		Total:   o.Total,
	})
}

type UserDeletedPayload struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Products int    `json:"products"`
	Orders   int    `json:"orders"`
}

func NewUserDeletedEvent(u User, products, orders int) Event[UserDeletedPayload] {
	return newEvent(EventUserDeleted, "user-"+strconv.FormatInt(u.ID, 10), UserDeletedPayload{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Products: products,
		Orders:   orders,
	})
}

func orderAggregate(id int64) string { return "order-" + strconv.FormatInt(id, 10) }
