package auth

import (
	"errors"
	"strconv"
	"time"

	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/models"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "gamezone"

type Claims struct {
	Role models.Role `json:"role"`
	Name string      `json:"name"`
	jwt.RegisteredClaims
}

// UserID is the numeric id carried in the subject claim.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (t *Tokens) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t *Tokens) Issue(u models.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: u.Role,
		Name: u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

func (t *Tokens) Parse(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		msg := "Sesión inválida"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "La sesión ha expirado"
		}
		return Claims{}, apperr.Wrap(apperr.TypeUnauthorized, msg, err)
	}
	if _, err := claims.UserID(); err != nil {
		return Claims{}, apperr.Wrap(apperr.TypeUnauthorized, "Sesión inválida", err)
	}
	return claims, nil
}
