package token

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

// ErrSecretNotSet is returned when AIOT_TOKEN_SECRET is missing
var ErrSecretNotSet = errors.New("AIOT_TOKEN_SECRET is not set")

// Claims are the JWT claims carried by access tokens
type Claims struct {
	UserID   uint     `json:"uid"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Secret reads the HMAC signing secret from AIOT_TOKEN_SECRET
func Secret() ([]byte, error) {
	secret := os.Getenv("AIOT_TOKEN_SECRET")
	if secret == "" {
		return nil, ErrSecretNotSet
	}
	return []byte(secret), nil
}

// Issue signs an HS256 access token for a user
func Issue(secret []byte, user *model.User, roles []string, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse validates a signed token and returns its claims
func Parse(secret []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
