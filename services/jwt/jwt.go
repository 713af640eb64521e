// Package jwt verifies Supabase-issued bearer tokens and resolves them to the
// subject identity carried in the claims.
package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the subset of a verified Supabase token the application uses.
type Claims struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// Verify validates an HS256 token against the Supabase JWT secret. The token
// must carry the "authenticated" audience and a subject claim.
func Verify(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithAudience("authenticated"),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	uid, _ := mapClaims["sub"].(string)
	if uid == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{UID: uid}
	claims.Email, _ = mapClaims["email"].(string)
	claims.Name, _ = mapClaims["name"].(string)
	claims.Picture, _ = mapClaims["picture"].(string)
	return claims, nil
}
