// Package notify turns storefront events into the messages shoppers receive.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gamezone/shared/pkg/models"
)

var ErrUnsupported = errors.New("unsupported event type")

type Message struct {
	EventID string
	Type    string
	To      string
	Subject string
	Body    string
}

// Render builds the message for evt. Events nobody is notified about yield
// ErrUnsupported.
func Render(evt models.EventRaw) (Message, error) {
	m := Message{EventID: evt.ID, Type: evt.Type}
	switch evt.Type {
	case models.EventOrderPlaced:
		var p models.OrderPlacedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return Message{}, fmt.Errorf("%s payload: %w", evt.Type, err)
		}
		m.To = p.Email
		m.Subject = fmt.Sprintf("Pedido #%d recibido", p.OrderID)
		m.Body = orderPlacedBody(p)

	case models.EventOrderStatusChanged:
		var p models.OrderStatusChangedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return Message{}, fmt.Errorf("%s payload: %w", evt.Type, err)
		}
		m.To = p.Email
		m.Subject = fmt.Sprintf("Actualización de tu pedido #%d", p.OrderID)
		m.Body = statusBody(p)

	case models.EventUserDeleted:
		var p models.UserDeletedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return Message{}, fmt.Errorf("%s payload: %w", evt.Type, err)
		}
		m.To = p.Email
		m.Subject = "Tu cuenta de GameZone fue eliminada"
		m.Body = fmt.Sprintf("Hola %s, tu cuenta de GameZone fue eliminada por un administrador.", p.Name)
		if p.Orders > 0 {
			m.Body += fmt.Sprintf(" Se eliminaron también %d pedido(s).", p.Orders)
		}

	default:
		return Message{}, ErrUnsupported
	}

	if m.To == "" {
		return Message{}, fmt.Errorf("%s: no recipient", evt.Type)
	}
	return m, nil
}

func orderPlacedBody(p models.OrderPlacedPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "¡Pedido #%d realizado exitosamente! Total: $ %s", p.OrderID, p.Total.FormatCOP())
	if len(p.Items) > 0 {
		parts := make([]string, 0, len(p.Items))
		for _, it := range p.Items {
			parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Qty))
		}
		b.WriteString("\nProductos: ")
		b.WriteString(strings.Join(parts, ", "))
	}
	return b.String()
}

func statusBody(p models.OrderStatusChangedPayload) string {
	switch p.To {
	case models.OrderStatusCompleted:
		return fmt.Sprintf("Tu pedido #%d fue completado. ¡Gracias por comprar en GameZone!", p.OrderID)
	case models.OrderStatusCancelled:
		return fmt.Sprintf("Tu pedido #%d fue cancelado. Total no cobrado: $ %s", p.OrderID, p.Total.FormatCOP())
	default:
		return fmt.Sprintf("Tu pedido #%d ahora está %s.", p.OrderID, p.To)
	}
}
