package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by Inspect for credentials that are not JWTs.
var ErrOpaqueToken = errors.New("session: token is not a JWT")

// Claims is the display-only view of a credential. Nothing here is verified;
// the backend remains the only authority on whether a token is valid.
type Claims struct {
	Subject   string
	Mobile    string
	Role      string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT credential without checking its
// signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrOpaqueToken
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}
	var claims Claims
	if sub, err := mc.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	claims.Mobile = stringClaim(mc, "mobile", "phone")
	claims.Role = stringClaim(mc, "role")
	return claims, nil
}

func stringClaim(mc jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := mc[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
