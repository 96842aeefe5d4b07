package auth

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"suggestion-board-backend/models"

	"github.com/golang-jwt/jwt/v5"
)

// Token lifetime. Matches what the board UI expects before forcing re-login.
const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried in issued tokens
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// secret returns the HMAC signing key from the environment. The development
// fallback keeps local instances working without setup.
func secret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("dev-only-insecure-secret")
}

// GenerateToken issues a signed token for the user
func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: user.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret())
}

// ParseToken validates a token string and returns the user id and admin flag
func ParseToken(tokenString string) (userID uint, isAdmin bool, err error) {
	var claims Claims
	_, err = jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return secret(), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, false, ErrInvalidToken
	}
	return uint(id), claims.Role == models.RoleAdmin.String(), nil
}
