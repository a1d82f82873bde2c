// Package apperr is the error catalog shared by the GameZone services. Every
// error that reaches a client carries one of the Type codes below; the web
// shop picks its notification icon and text from that code.
package apperr

import (
	"errors"
	"net/http"
)

type Type string

const (
	TypeServer          Type = "SERVER_ERROR"
	TypeDatabase        Type = "DATABASE_ERROR"
	TypeValidation      Type = "VALIDATION_ERROR"
	TypeUnauthorized    Type = "UNAUTHORIZED"
	TypeForbidden       Type = "FORBIDDEN"
	TypeUserNotFound    Type = "USER_NOT_FOUND"
	TypeUserExists      Type = "USER_EXISTS"
	TypeInvalidCreds    Type = "INVALID_CREDENTIALS"
	TypeStock           Type = "STOCK_ERROR"
	TypeProductNotFound Type = "PRODUCT_NOT_FOUND"
	TypeOrderNotFound   Type = "ORDER_NOT_FOUND"
	TypeOrderState      Type = "ORDER_STATE_ERROR"
	TypeLastAdmin       Type = "LAST_ADMIN_ERROR"
	TypeCartItem        Type = "CART_ITEM_NOT_FOUND"
)

// StockMessage is matched verbatim by the cart page.
const StockMessage = "Stock insuficiente"

var defaults = map[Type]struct {
	status  int
	message string
}{
	TypeServer:          {http.StatusInternalServerError, "Error del servidor, intenta más tarde"},
	TypeDatabase:        {http.StatusInternalServerError, "Error en la base de datos"},
	TypeValidation:      {http.StatusBadRequest, "Datos inválidos"},
	TypeUnauthorized:    {http.StatusUnauthorized, "Debes iniciar sesión"},
	TypeForbidden:       {http.StatusForbidden, "No tienes permisos para esta acción"},
	TypeUserNotFound:    {http.StatusNotFound, "Usuario no encontrado"},
	TypeUserExists:      {http.StatusConflict, "Este usuario ya existe"},
	TypeInvalidCreds:    {http.StatusUnauthorized, "Credenciales incorrectas"},
	TypeStock:           {http.StatusConflict, StockMessage},
	TypeProductNotFound: {http.StatusNotFound, "Producto no encontrado"},
	TypeOrderNotFound:   {http.StatusNotFound, "Pedido no encontrado"},
	TypeOrderState:      {http.StatusConflict, "El pedido no admite ese cambio de estado"},
	TypeLastAdmin:       {http.StatusConflict, "No se puede eliminar o degradar al último administrador"},
	TypeCartItem:        {http.StatusNotFound, "El producto no está en el carrito"},
}

type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = DefaultMessage(e.Type)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by Type, so errors.Is(err, apperr.New(TypeStock, "")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Type == e.Type
	}
	return false
}

// PublicMessage is what may be shown to a client. Wrapped causes stay server-side.
func (e *Error) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultMessage(e.Type)
}

func New(t Type, msg string) *Error {
	return &Error{Type: t, Message: msg}
}

func Wrap(t Type, msg string, err error) *Error {
	return &Error{Type: t, Message: msg, Err: err}
}

func Validation(msg string) *Error { return New(TypeValidation, msg) }

func Stock(productName string) *Error {
	if productName == "" {
		return New(TypeStock, StockMessage)
	}
	return New(TypeStock, StockMessage+" para "+productName)
}

func Database(err error) *Error { return Wrap(TypeDatabase, "", err) }

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// TypeOf reports the catalog type of err; unknown errors are server errors.
func TypeOf(err error) Type {
	if e, ok := As(err); ok {
		return e.Type
	}
	return TypeServer
}

func IsType(err error, t Type) bool {
	return err != nil && TypeOf(err) == t
}

func HTTPStatus(t Type) int {
	if d, ok := defaults[t]; ok {
		return d.status
	}
	return http.StatusInternalServerError
}

func DefaultMessage(t Type) string {
	if d, ok := defaults[t]; ok {
		return d.message
	}
	return defaults[TypeServer].message
}
