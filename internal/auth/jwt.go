package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

var ErrUnauthorized = errors.New("unauthorized access")

// DefaultTokenTTL matches the lifetime the frontend expects for its session.
const DefaultTokenTTL = 5 * time.Hour

// TokenIssuer signs and verifies the HS256 access tokens used by the REST
// surface. Placing a bid does not require a token; administrative writes do.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// NewTokenIssuerFromEnv builds an issuer from ACCESS_TOKEN_SECRET.
func NewTokenIssuerFromEnv() (*TokenIssuer, error) {
	_ = godotenv.Load()
	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	if secret == "" {
		return nil, errors.New("ACCESS_TOKEN_SECRET is not set")
	}
	return NewTokenIssuer(secret, DefaultTokenTTL), nil
}

// Issue signs a token carrying the caller's email.
func (t *TokenIssuer) Issue(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   jwt.NewNumericDate(time.Now().Add(t.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the caller's email.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", ErrUnauthorized
	}
	return email, nil
}
