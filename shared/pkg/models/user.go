package models

import "time"

type Role string

const (
	RoleCustomer Role = "usuario"
	RoleAdmin    Role = "administrador"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id_usuario"`
	Name         string    `json:"nombre"`
	Email        string    `json:"email"`
	Address      string    `json:"direccion"`
	Phone        string    `json:"telefono"`
	Role         Role      `json:"rol"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"fecha_registro"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Session is the shape of the signed-in user returned by the auth endpoints.
type Session struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Role    Role   `json:"role"`
}

func (u User) Session() Session {
	return Session{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
		Phone:   u.Phone,
		Role:    u.Role,
	}
}
