package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure — malformed, tampered,
// expired, wrong algorithm. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

type adminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// CreateToken issues an HS256 bearer token carrying the admin's username,
// valid for ttl.
func CreateToken(username string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := adminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the admin username it
// carries. Any failure is reported uniformly as ErrInvalidToken.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	var claims adminClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Username == "" {
		return "", ErrInvalidToken
	}
	return claims.Username, nil
}
