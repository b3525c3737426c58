package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/meddesk/appointment-api/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Claims is what a signed token carries: who the caller is and which role
// they registered with.
type Claims struct {
	ID   uint
	Role models.Role
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	Secret     []byte
	TTL        time.Duration
	RefreshTTL time.Duration
}

func NewTokenIssuer(secret string, ttl, refreshTTL time.Duration) TokenIssuer {
	return TokenIssuer{Secret: []byte(secret), TTL: ttl, RefreshTTL: refreshTTL}
}

// Sign issues an access token carrying the user's id and role.
func (t TokenIssuer) Sign(id uint, role models.Role) (string, error) {
	claims := jwt.MapClaims{
		"id":   id,
		"role": string(role),
		"exp":  time.Now().Add(t.TTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// SignRefresh issues a longer-lived token carrying only the user's id.
func (t TokenIssuer) SignRefresh(id uint) (string, error) {
	claims := jwt.MapClaims{
		"id":  id,
		"exp": time.Now().Add(t.RefreshTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// Verify parses and validates a token and returns its claims.
func (t TokenIssuer) Verify(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	id, ok := mapClaims["id"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	role, _ := mapClaims["role"].(string)

	return Claims{ID: uint(id), Role: models.Role(role)}, nil
}
