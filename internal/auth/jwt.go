package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cyberone/financial-mesh/internal/models"
)

// Claims carried by the session token
type Claims struct {
	AccountID string             `json:"account_id"`
	Role      models.AccountRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token for the account
func GenerateToken(secret string, acc *models.Account, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: acc.ID,
		Role:      acc.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns its claims
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
