package utils

import (
	"errors"
	"hospital-service/internal/pkg/constvars"

	"github.com/golang-jwt/jwt/v4"
)

// ParseAccessToken verifies tokenString and returns the caller id and role claims.
func ParseAccessToken(tokenString, secret string) (int64, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New(constvars.ErrDevAuthSigningMethod)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, "", errors.New(constvars.ErrDevAuthTokenInvalid)
	}

	subject, ok := claims[constvars.JWTClaimSubject].(float64)
	if !ok {
		return 0, "", errors.New(constvars.ErrDevAuthTokenInvalid)
	}
	role, ok := claims[constvars.JWTClaimRole].(string)
	if !ok {
		return 0, "", errors.New(constvars.ErrDevAuthTokenInvalid)
	}
	return int64(subject), role, nil
}
