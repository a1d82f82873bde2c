package service

import (
	"context"
	"net/mail"
	"strings"

	"gamezone/services/storefront-api/internal/auth"
	"gamezone/services/storefront-api/internal/repo"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/rs/zerolog"
)

const (
	MinPasswordLen = 6
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

type AuthService struct {
	Users  repo.Users
	Hasher auth.Hasher
	Tokens *auth.Tokens
	Log    zerolog.Logger

	// AllowAdminSignup lets anyone register as administrator. Without it only
	// the very first administrator can self-register.
	AllowAdminSignup bool
}

type RegisterInput struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Address  string      `json:"address"`
	Phone    string      `json:"phone"`
	Role     models.Role `json:"role"`
}

func (in *RegisterInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Address = strings.TrimSpace(in.Address)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = models.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	switch {
	case in.Name == "" || in.Email == "" || in.Password == "":
		return apperr.Validation("Nombre, email y contraseña son obligatorios")
	case !validEmail(in.Email):
		return apperr.Validation("El email no es válido")
	case len([]rune(in.Password)) < MinPasswordLen:
		return apperr.Validation("La contraseña debe tener al menos 6 caracteres")
	case len(in.Password) > MaxPasswordBytes:
		return apperr.Validation("La contraseña es demasiado larga")
	case !in.Role.Valid():
		return apperr.Validation("Rol inválido")
	}
	return nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s[strings.LastIndex(s, "@")+1:], ".")
}

// Session is what register and login hand back to the client.
type Session struct {
	User  models.User
	Token string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if err := in.normalize(); err != nil {
		return Session{}, err
	}

	if in.Role == models.RoleAdmin && !s.AllowAdminSignup {
		admins, err := s.Users.CountByRole(ctx, models.RoleAdmin)
		if err != nil {
			return Session{}, err
		}
		if admins > 0 {
			return Session{}, apperr.New(apperr.TypeForbidden, "Solo un administrador puede crear otros administradores")
		}
	}

	u, err := s.create(ctx, in)
	if err != nil {
		return Session{}, err
	}

	s.Log.Info().Int64("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return s.session(u)
}

// CreateAdmin adds an administrator without signing in, for operators
// bootstrapping a store.
func (s *AuthService) CreateAdmin(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Role = models.RoleAdmin
	if err := in.normalize(); err != nil {
		return models.User{}, err
	}
	u, err := s.create(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	s.Log.Info().Int64("user_id", u.ID).Msg("administrator created")
	return u, nil
}

func (s *AuthService) create(ctx context.Context, in RegisterInput) (models.User, error) {
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.TypeServer, "", err)
	}

	u := models.User{
		Name:         in.Name,
		Email:        in.Email,
		Address:      in.Address,
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: hash,
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, apperr.Validation("Email y contraseña son obligatorios")
	}

	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}

	ok, err := s.Hasher.Compare(u.PasswordHash, password)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.TypeServer, "", err)
	}
	if !ok {
		return Session{}, apperr.New(apperr.TypeInvalidCreds, "")
	}
	return s.session(u)
}

func (s *AuthService) session(u models.User) (Session, error) {
	token, err := s.Tokens.Issue(u)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.TypeServer, "", err)
	}
	return Session{User: u, Token: token}, nil
}

// Authenticate resolves a bearer token to the current user record, so role
// changes and deletions take effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return models.User{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.TypeUnauthorized, "Sesión inválida", err)
	}

	u, err := s.Users.GetByID(ctx, id)
	if apperr.IsType(err, apperr.TypeUserNotFound) {
		return models.User{}, apperr.New(apperr.TypeUnauthorized, "La cuenta ya no existe")
	}
	return u, err
}

func (s *AuthService) Me(ctx context.Context, id int64) (models.User, error) {
	return s.Users.GetByID(ctx, id)
}
