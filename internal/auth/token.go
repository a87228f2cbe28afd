package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Usable reports whether a token is worth attaching to an authenticated
// backend call. Empty tokens are not usable. Tokens that parse as JWTs
// with an elapsed exp claim are not usable either: the write would be
// rejected anyway, so callers degrade to the local-only path instead.
// Opaque tokens (the backend's default token scheme) pass through.
func Usable(token string) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}

	exp, ok := expiry(token)
	if !ok {
		return true
	}
	return exp.After(time.Now())
}

// expiry extracts the exp claim from a JWT without verifying its
// signature. Signature validation belongs to the backend; this is only
// a local hint to avoid doomed requests.
func expiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
