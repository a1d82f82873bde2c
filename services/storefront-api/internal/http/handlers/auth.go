package handlers

import (
	"net/http"

	"gamezone/services/storefront-api/internal/service"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	Auth *service.AuthService
	Log  zerolog.Logger
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decode(w, r, &in); err != nil {
		Error(w, h.Log, err)
		return
	}
	s, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusCreated, M{
		"message": "Usuario registrado exitosamente",
		"user":    s.User.Session(),
		"token":   s.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(w, r, &req); err != nil {
		Error(w, h.Log, err)
		return
	}
	s, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{
		"message": "Inicio de sesión exitoso",
		"user":    s.User.Session(),
		"token":   s.Token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r)
	if err != nil {
		Error(w, h.Log, err)
		return
	}
	JSON(w, http.StatusOK, M{"user": u.Session()})
}
