package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/99designs/keyring"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/credentials"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
)

func newStore(t *testing.T, token string) credentials.TokenStore {
	t.Helper()
	store := credentials.NewKeyringStore(keyring.NewArrayKeyring(nil))
	if token != "" {
		if err := store.SetToken(token); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}
	return store
}

// TestIsSessionError only matches 401 responses
func TestIsSessionError(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil", nil, false},
		{"unauthorized", &api.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}, true},
		{"wrapped unauthorized", errors.Join(errors.New("fetching leads"), &api.APIError{StatusCode: http.StatusUnauthorized}), true},
		{"forbidden", &api.APIError{StatusCode: http.StatusForbidden}, false},
		{"plain message", errors.New("unauthorized"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsSessionError(tc.err); got != tc.expect {
				t.Errorf("IsSessionError(%v) = %v, want %v", tc.err, got, tc.expect)
			}
		})
	}
}

// TestHandleSessionError_ClearsRejectedToken logs the user out after a 401
func TestHandleSessionError_ClearsRejectedToken(t *testing.T) {
	store := newStore(t, "stale")
	sr := NewSessionRecovery(store)

	result := sr.HandleSessionError(&api.APIError{StatusCode: http.StatusUnauthorized, Message: "jwt expired"})

	var cliErr *clierrors.CLIError
	if !errors.As(result, &cliErr) || cliErr.Type != clierrors.ErrorTypeSessionExpired {
		t.Fatalf("expected session expired error, got %v", result)
	}
	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "" {
		t.Errorf("expected token to be cleared, got %q", token)
	}
}

// TestHandleSessionError_NoStoredToken passes failed logins through
func TestHandleSessionError_NoStoredToken(t *testing.T) {
	sr := NewSessionRecovery(newStore(t, ""))
	original := &api.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}

	if result := sr.HandleSessionError(original); result != error(original) {
		t.Errorf("expected error to pass through unchanged, got %v", result)
	}
}

// TestHandleSessionError_NonSessionError leaves the token alone
func TestHandleSessionError_NonSessionError(t *testing.T) {
	store := newStore(t, "good")
	sr := NewSessionRecovery(store)
	original := errors.New("network timeout")

	if result := sr.HandleSessionError(original); result != original {
		t.Error("expected non-session error to pass through unchanged")
	}
	if token, _ := store.Token(); token != "good" {
		t.Errorf("token changed to %q", token)
	}
}

// TestHandleSessionError_NilError handles nil error
func TestHandleSessionError_NilError(t *testing.T) {
	if result := NewSessionRecovery(newStore(t, "x")).HandleSessionError(nil); result != nil {
		t.Errorf("Expected nil for nil error, got %v", result)
	}
}
