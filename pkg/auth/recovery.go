// Package auth reacts to the server rejecting the stored session.
package auth

import (
	"errors"
	"net/http"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/credentials"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// SessionRecovery forgets a token the server no longer accepts so the next
// command starts logged out instead of failing the same way again.
type SessionRecovery struct {
	tokens credentials.TokenStore
}

// NewSessionRecovery creates a recovery handler over tokens
func NewSessionRecovery(tokens credentials.TokenStore) *SessionRecovery {
	return &SessionRecovery{tokens: tokens}
}

// IsSessionError reports whether the server rejected the request's token
func IsSessionError(err error) bool {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized
}

// HandleSessionError clears the stored token after a 401 and returns a
// session expired error. Other errors, and 401s without a stored token
// (wrong password at login), pass through unchanged.
func (sr *SessionRecovery) HandleSessionError(err error) error {
	if !IsSessionError(err) || sr.tokens == nil {
		return err
	}

	token, tokenErr := sr.tokens.Token()
	if tokenErr != nil || token == "" {
		return err
	}

	logger.Warn("Server rejected session token, logging out")
	if clearErr := sr.tokens.Clear(); clearErr != nil {
		logger.Error("Failed to clear session token", "error", clearErr)
	}
	return clierrors.SessionExpiredError(err)
}
