package handlers

import (
	"net/http"
	"strconv"

	"gamezone/services/storefront-api/internal/catalog"
	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type ProductHandler struct {
	Products *service.ProductService
	Log      zerolog.Logger
}

// productView adds the stock label shown on product cards.
type productView struct {
	models.Product
	StockLevel catalog.StockLevel `json:"estado_stock"`
}

func viewOf(p models.Product) productView {
	return productView{Product: p, StockLevel: catalog.LevelOf(p.Stock)}
}

func viewsOf(ps []models.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, viewOf(p))
	}
	return out
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := catalog.Filter{Category: q.Get("categoria"), Search: q.Get("q")}
	if f.Category == "" {
		f.Category = q.Get("category")
	}

	ps, err := h.Products.List(r.Context(), f)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"products": viewsOf(ps), "total": len(ps)})
}

func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	n := catalog.DefaultFeatured
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			Error(w, h.Log, apperr.Validation("El límite debe ser un número positivo"))
			return
		}
		n = v
	}

	groups, err := h.Products.Featured(r.Context(), n)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	body := M{}
	for _, c := range models.Categories {
		body[string(c)] = viewsOf(groups[c])
	}
	JSON(w, http.StatusOK, body)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	p, err := h.Products.Get(r.Context(), id)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"product": viewOf(p)})
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	var p models.Product
	if err := decode(w, r, &p); err != nil {
		Error(w, h.Log, err)
		return
	}
	created, err := h.Products.Create(r.Context(), actor, p)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, M{"message": "Producto creado exitosamente", "product": viewOf(created)})
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var p models.Product
	if err := decode(w, r, &p); err != nil {
		Error(w, h.Log, err)
		return
	}
	updated, err := h.Products.Update(r.Context(), actor, id, p)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Producto actualizado exitosamente", "product": viewOf(updated)})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.Products.Delete(r.Context(), actor, id); err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Producto eliminado exitosamente"})
}
