// Package jwt firma y valida los tokens de acceso (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles de la API de dotación.
const (
	RoleAdmin   = "admin"   // catálogo, ajustes, auditoría, liberar bloqueos
	RoleAlmacen = "almacen" // entradas, salidas, entregas
	RoleRRHH    = "rrhh"    // consulta de entregas y alertas
)

var (
	ErrEmptySecret = errors.New("jwt: secret vacío")
	ErrNoUser      = errors.New("jwt: token sin user_id")
)

// Claims el rol viaja en el token; el middleware autoriza sin consultar la base.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Solo HS256 y siempre con exp.
var parserOptions = []jwt.ParserOption{
	jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	jwt.WithExpirationRequired(),
	jwt.WithIssuedAt(),
}

// Generate firma un token para userID con el rol dado. expMinutes negativo sirve para tokens ya vencidos en tests.
func Generate(secret, userID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	issued := time.Now()
	c := Claims{UserID: userID, Role: role}
	c.Issuer = issuer
	c.Subject = userID
	c.IssuedAt = jwt.NewNumericDate(issued)
	c.ExpiresAt = jwt.NewNumericDate(issued.Add(time.Duration(expMinutes) * time.Minute))
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Parse verifica firma, algoritmo y vencimiento. El rol puede venir vacío;
// decidir qué hacer con eso le toca a RequireRole.
func Parse(secret, tokenString string) (userID, role string, err error) {
	if secret == "" {
		return "", "", ErrEmptySecret
	}
	var c Claims
	key := func(*jwt.Token) (any, error) { return []byte(secret), nil }
	if _, err := jwt.ParseWithClaims(tokenString, &c, key, parserOptions...); err != nil {
		return "", "", fmt.Errorf("jwt: %w", err)
	}
	if c.UserID == "" {
		return "", "", ErrNoUser
	}
	return c.UserID, c.Role, nil
}
