package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCompleted))
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusCompleted.CanTransition(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransition(OrderStatusCompleted))
	assert.False(t, OrderStatusPending.CanTransition("enviado"))

	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusCompleted.Terminal())
	assert.False(t, OrderStatus("enviado").Valid())
}

func TestEnums(t *testing.T) {
	assert.True(t, CategoryVideoGames.Valid())
	assert.True(t, CategoryFigures.Valid())
	assert.False(t, Category("consolas").Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("root").Valid())
}

func TestOrderSummaryAndTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: ptr(1), Name: "Zelda", Quantity: 2, UnitPrice: Pesos(200000)},
		{ProductID: nil, Name: "Mario", Quantity: 1, UnitPrice: Pesos(150000)},
	}}
	assert.Equal(t, "Zelda x2, Mario x1", o.Summary())
	assert.Equal(t, Pesos(550000), o.ComputeTotal())
	assert.Equal(t, "", Order{}.Summary())
}

func TestOrderJSONShape(t *testing.T) {
	o := Order{
		ID: 12, UserID: 3, UserName: "Ana", UserEmail: "ana@example.com",
		Total: Pesos(400000), Status: OrderStatusPending,
		Items: []OrderItem{{ProductID: ptr(1), Name: "Zelda", Quantity: 2, UnitPrice: Pesos(200000)}},
	}
	b, err := json.Marshal(o)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.EqualValues(t, 12, m["id_pedido"])
	assert.Equal(t, "Ana", m["usuario_nombre"])
	assert.Equal(t, "pendiente", m["estado"])
	assert.Equal(t, "Zelda x2", m["productos"])
	assert.EqualValues(t, 400000, m["total"])
	assert.NotContains(t, m, "UserEmail")

	items := m["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 400000, item["subtotal"])
	assert.EqualValues(t, 1, item["id_producto"])

	b, err = json.Marshal(Order{})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"items":[]`)
}

func TestUserNeverSerializesPasswordHash(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Name: "Ana", PasswordHash: "secret-hash", Role: RoleAdmin})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret-hash")
	assert.Contains(t, string(b), `"rol":"administrador"`)

	s := User{ID: 1, Name: "Ana", Role: RoleAdmin}.Session()
	b, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"role":"administrador"`)
}

func TestEventConstructors(t *testing.T) {
	o := Order{ID: 7, UserID: 3, UserName: "Ana", UserEmail: "ana@example.com", Total: Pesos(100), Status: OrderStatusPending,
		Items: []OrderItem{{ProductID: ptr(5), Name: "Kirby", Quantity: 1, UnitPrice: Pesos(100)}}}

	placed := NewOrderPlacedEvent(o)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, EventOrderPlaced, placed.Type)
	assert.Equal(t, "order-7", placed.AggregateID)
	assert.Equal(t, "ana@example.com", placed.Payload.Email)
	require.Len(t, placed.Payload.Items, 1)
	assert.EqualValues(t, 5, placed.Payload.Items[0].ProductID)

	o.Status = OrderStatusCancelled
	changed := NewOrderStatusChangedEvent(o, OrderStatusPending)
	assert.Equal(t, OrderStatusPending, changed.Payload.From)
	assert.Equal(t, OrderStatusCancelled, changed.Payload.To)
	assert.NotEqual(t, placed.ID, changed.ID)

	deleted := NewUserDeletedEvent(User{ID: 9, Name: "Leo"}, 2, 4)
	assert.Equal(t, "user-9", deleted.AggregateID)
	assert.Equal(t, 4, deleted.Payload.Orders)

	b, err := json.Marshal(placed)
	require.NoError(t, err)
	var raw EventRaw
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, placed.ID, raw.ID)
	assert.Equal(t, EventOrderPlaced, raw.Type)
}
