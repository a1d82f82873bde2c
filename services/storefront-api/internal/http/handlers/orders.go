package handlers

import (
	"fmt"
	"net/http"

	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type OrderHandler struct {
	Orders *service.OrderService
	Auth   *service.AuthService
	Log    zerolog.Logger
}

type createOrderReq struct {
	UserID   *int64             `json:"id_usuario"`
	Products []models.OrderLine `json:"productos"`
}

type statusReq struct {
	Status models.OrderStatus `json:"estado"`
}

// Create places an order for the caller. Administrators may name another
// customer in id_usuario; anyone else must leave it empty or name themselves.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	var req createOrderReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}

	buyer := actor
	if req.UserID != nil && *req.UserID != actor.ID {
		if !actor.IsAdmin() {
			Error(w, h.Log, apperr.New(apperr.TypeForbidden, "No puedes crear pedidos para otro usuario"))
			return
		}
		if buyer, err = h.Auth.Me(r.Context(), *req.UserID); err != nil {
			Error(w, h.Log, err)
			return
		}
	}

	o, err := h.Orders.Place(r.Context(), buyer, req.Products)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, M{
		"message": fmt.Sprintf("¡Pedido #%d realizado exitosamente! Total: $ %s", o.ID, o.Total.FormatCOP()),
		"order":   o,
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	orders, err := h.Orders.List(r.Context(), actor)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"orders": nonNil(orders)})
}

func (h *OrderHandler) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	orders, err := h.Orders.Mine(r.Context(), actor)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"orders": nonNil(orders)})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	o, err := h.Orders.Get(r.Context(), actor, id)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"order": o})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	var req statusReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Estado del pedido actualizado a " + string(o.Status), "order": o})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
