package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload issued at login: the subject is the user id and
// Role gates admin-only routes.
type Claims struct {
	jwt.RegisteredClaims

	Role string `json:"role,omitempty"`
}

const tokenTTL = 24 * time.Hour

// IssueToken signs an HS256 session token for the user.
func IssueToken(userID, role, secret string, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("missing jwt secret")
	}
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
		Role: role,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// VerifyToken validates a session token and returns the user id and role.
func VerifyToken(tokenString, secret string, now time.Time) (string, string, error) {
	if tokenString == "" {
		return "", "", fmt.Errorf("missing token")
	}
	if secret == "" {
		return "", "", fmt.Errorf("missing jwt secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	claims := &Claims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !tok.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(now) {
		return "", "", fmt.Errorf("token expired")
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("missing subject")
	}
	return claims.Subject, claims.Role, nil
}
