package session

import (
	"fmt"
	"time"

	"github.com/desertthunder/wpx/internal/shared"
	"github.com/dgrijalva/jwt-go"
)

// Claims are the registered claims issued by the JWT Authentication for WP REST API plugin.
// The signing key lives on the server, so they are read without verification and only used for display and expiry.
type Claims struct {
	jwt.StandardClaims
}

// ParseClaims decodes the claims of token without verifying its signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrParseFailure, err)
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of token, or the zero time when it has none.
func TokenExpiry(token string) (time.Time, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, nil
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}
