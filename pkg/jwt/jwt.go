package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role permite al middleware RBAC decidir sin consultar la DB.
// El ID (jti) identifica la sesión: la verificación facial queda atada a él.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Role   string `json:"role"` // "admin" | "operator" | "viewer"
}

// SessionID devuelve el jti del token.
func (c *Claims) SessionID() string { return c.ID }

// Token token firmado con su sesión y expiración.
type Token struct {
	Value     string
	SessionID string
	ExpiresAt time.Time
}

// Generate genera un token JWT firmado con userID, role y un jti nuevo.
func Generate(secret string, userID int64, role, issuer string, expMinutes int) (*Token, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	exp := now.Add(time.Duration(expMinutes) * time.Minute)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
		Role:   role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return nil, fmt.Errorf("jwt: firmar: %w", err)
	}
	return &Token{Value: signed, SessionID: claims.ID, ExpiresAt: exp}, nil
}

// Parse valida el token y devuelve sus claims.
// Retorna error si el token es inválido, expirado, con firma incorrecta o sin jti.
func Parse(secret, tokenString string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.ID == "" || claims.UserID <= 0 {
		return nil, fmt.Errorf("claims incompletos")
	}
	return claims, nil
}
