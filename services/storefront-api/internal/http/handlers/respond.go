package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const maxBody = 1 << 20

// M is the body of a successful response; "success" is added on write.
type M map[string]any

func JSON(w http.ResponseWriter, status int, body M) {
	if body == nil {
		body = M{}
	}
	body["success"] = true
	write(w, status, body)
}

// Error writes err in the envelope the storefront expects. Server side causes
// are logged and never sent to the client.
func Error(w http.ResponseWriter, log zerolog.Logger, err error) {
	ErrorWith(w, log, err, nil)
}

// ErrorWith is Error with extra fields next to the message.
func ErrorWith(w http.ResponseWriter, log zerolog.Logger, err error, extra M) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(apperr.TypeServer, "", err)
	}
	status := apperr.HTTPStatus(e.Type)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("type", string(e.Type)).Msg("request failed")
	}

	body := M{}
	for k, v := range extra {
		body[k] = v
	}
	body["success"] = false
	body["message"] = e.PublicMessage()
	body["type"] = e.Type
	write(w, status, body)
}

func write(w http.ResponseWriter, status int, body M) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("El cuerpo de la petición está vacío")
		}
		if errors.Is(err, models.ErrInvalidMoney) {
			return apperr.Validation("Precio inválido")
		}
		return apperr.Validation("JSON inválido")
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Identificador inválido")
	}
	return id, nil
}

type userKey struct{}

func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user stored by the auth middleware.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey{}).(models.User)
	return u, ok
}

// currentUser is UserFrom for handlers mounted behind the auth middleware.
func currentUser(r *http.Request) (models.User, error) {
	u, ok := UserFrom(r.Context())
	if !ok {
		return models.User{}, apperr.New(apperr.TypeUnauthorized, "")
	}
	return u, nil
}

func Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, M{"status": "ok"})
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	write(w, http.StatusNotFound, M{"success": false, "message": "Ruta no encontrada", "type": "NOT_FOUND"})
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	write(w, http.StatusMethodNotAllowed, M{"success": false, "message": "Método no permitido", "type": "METHOD_NOT_ALLOWED"})
}
