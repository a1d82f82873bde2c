package handlers

import (
	"fmt"
	"net/http"

	"gamezone/services/storefront-api/internal/cart"
	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type CartHandler struct {
	Cart *service.CartService
	Log  zerolog.Logger
}

type cartView struct {
	cart.Cart
	Total models.Money `json:"total"`
	Count int          `json:"cantidad_total"`
}

func cartOf(c cart.Cart) cartView {
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	return cartView{Cart: c, Total: c.Total(), Count: c.Count()}
}

func adjustments(a []cart.Adjustment) []cart.Adjustment {
	if a == nil {
		return []cart.Adjustment{}
	}
	return a
}

type cartItemReq struct {
	ProductID int64 `json:"id_producto"`
	Quantity  *int  `json:"cantidad"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	v, err := h.Cart.Get(r.Context(), u.ID)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"cart": cartOf(v.Cart), "adjustments": adjustments(v.Adjustments)})
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	var req cartItemReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}
	if req.ProductID <= 0 {
		Error(w, h.Log, apperr.Validation("Producto inválido"))
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	v, err := h.Cart.Add(r.Context(), u.ID, req.ProductID, qty)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Producto agregado al carrito", "cart": cartOf(v.Cart), "adjustments": adjustments(v.Adjustments)})
}

func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	var req cartItemReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}
	if req.Quantity == nil {
		Error(w, h.Log, apperr.Validation("La cantidad es obligatoria"))
		return
	}

	v, err := h.Cart.SetQuantity(r.Context(), u.ID, id, *req.Quantity)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"cart": cartOf(v.Cart), "adjustments": adjustments(v.Adjustments)})
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	v, err := h.Cart.Remove(r.Context(), u.ID, id)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"cart": cartOf(v.Cart), "adjustments": adjustments(v.Adjustments)})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	v, err := h.Cart.Clear(r.Context(), u.ID)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"cart": cartOf(v.Cart)})
}

// Checkout answers 409 with the adjusted cart when the catalog changed under
// the shopper, so the page can show what moved.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	res, err := h.Cart.Checkout(r.Context(), u)
	if err != nil {
		if len(res.Adjustments) > 0 {
			ErrorWith(w, h.Log, err, M{"cart": cartOf(res.Cart), "adjustments": res.Adjustments})
			return
		}
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, M{
		"message": fmt.Sprintf("¡Pedido #%d realizado exitosamente! Total: $ %s", res.Order.ID, res.Order.Total.FormatCOP()),
		"order":   res.Order,
		"cart":    cartOf(res.Cart),
	})
}
