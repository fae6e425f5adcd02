// Package session derives the signed-in user's identity from the stored token.
//
// Decoding never verifies the signature and never calls the server. The
// result is only fit for deciding what to show; the backend enforces access.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Saad0095/leaders-tax-cli/pkg/credentials"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// Decode errors. All of them mean "unauthenticated" to callers.
var (
	ErrNoToken        = errors.New("no session token")
	ErrMalformedToken = errors.New("malformed session token")
	ErrTokenExpired   = errors.New("session token expired")
	ErrMissingID      = errors.New("session token has no user id")
)

// Identity is what the client knows about the signed-in user.
type Identity struct {
	ID        string
	Role      Role
	Name      string
	Email     string
	ExpiresAt time.Time
}

// Decode extracts the identity from token using the current time for expiry.
func Decode(token string) (*Identity, error) {
	return DecodeAt(token, time.Now())
}

// DecodeAt extracts the identity from token, treating it as expired if its
// exp claim is at or before now.
func DecodeAt(token string, now time.Time) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if exp != nil && !now.Before(exp.Time) {
		return nil, ErrTokenExpired
	}

	id := firstString(claims, "id", "_id", "userId", "sub")
	if id == "" {
		return nil, ErrMissingID
	}

	rawRole, _ := claims["role"].(string)
	role, err := ParseRole(rawRole)
	if err != nil {
		return nil, err
	}

	ident := &Identity{
		ID:    id,
		Role:  role,
		Name:  firstString(claims, "name"),
		Email: firstString(claims, "email"),
	}
	if exp != nil {
		ident.ExpiresAt = exp.Time
	}
	return ident, nil
}

// Load reads the stored token and decodes it. A token that fails to decode is
// purged from the store so the next run starts logged out.
func Load(store credentials.TokenStore) (*Identity, error) {
	token, err := store.Token()
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}

	ident, err := Decode(token)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			logger.Warn("Discarding unusable session token", "error", err)
			if clearErr := store.Clear(); clearErr != nil {
				logger.Error("Failed to clear session token", "error", clearErr)
			}
		}
		return nil, err
	}
	return ident, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
