package handlers

import (
	"net/http"
	"strings"

	"gamezone/services/storefront-api/internal/service"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

type UserHandler struct {
	Users *service.UserService
	Log   zerolog.Logger
}

// roleReq accepts both spellings the admin page has used.
type roleReq struct {
	Rol  models.Role `json:"rol"`
	Role models.Role `json:"role"`
}

func (q roleReq) role() models.Role {
	r := q.Rol
	if r == "" {
		r = q.Role
	}
	return models.Role(strings.ToLower(strings.TrimSpace(string(r))))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	users, err := h.Users.List(r.Context(), actor)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"users": nonNil(users)})
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
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
	st, err := h.Users.Stats(r.Context(), actor, id)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"stats": st})
}

func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
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
	var req roleReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}
	u, err := h.Users.ChangeRole(r.Context(), actor, id, req.role())
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Rol de " + u.Name + " actualizado a " + string(u.Role), "user": u})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	deleted, err := h.Users.Delete(r.Context(), actor, id)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"message": "Usuario eliminado exitosamente", "deleted": deleted})
}
