// Package auth mints and parses the signed session tokens handed to the
// presentation layer. A token carries the session id and user id; the session
// row behind it stays on the server, so tokens can be revoked.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dpavlenko/newsboard/internal/common"
)

// Claims includes the registered claims plus the session and user ids.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
	UserID    string
}

// GenerateToken signs a session token (HS256) valid for validityDuration.
func GenerateToken(sessionID, userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
		UserID:    userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns the
// embedded session and user ids. Expired tokens yield common.ErrSessionExpired;
// anything else that fails verification yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (sessionID, userID string, err error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", common.ErrSessionExpired
		}
		return "", "", common.ErrInvalidToken
	}

	if !token.Valid {
		return "", "", common.ErrInvalidToken
	}

	return claims.SessionID, claims.UserID, nil
}
