package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminRole = "admin"

// GenerateAdminToken signs a short-lived token proving the holder passed the
// admin password check.
func GenerateAdminToken(secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": adminRole,
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// VerifyAdminToken checks signature, expiry and role.
func VerifyAdminToken(secret []byte, token string) error {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return errors.New("could not parse token")
	}
	if !parsedToken.Valid {
		return errors.New("invalid token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid token claims")
	}
	if role, _ := claims["role"].(string); role != adminRole {
		return errors.New("token is not an admin token")
	}
	return nil
}
