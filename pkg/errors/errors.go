package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeSessionExpired  ErrorType = "session_expired"
	ErrorTypeForbidden       ErrorType = "forbidden"

	// Request errors
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"

	// Server errors
	ErrorTypeServer ErrorType = "server"

	ErrorTypeUnknown ErrorType = "unknown"
)

const loginHint = "Run 'leaders-cli auth login' to sign in."

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check that the API is reachable at the configured api.base_url."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// UnauthenticatedError is returned when there is no usable session
func UnauthenticatedError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeUnauthenticated, message, cause)
	err.Suggestion = loginHint
	err.StatusCode = http.StatusUnauthorized
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", cause)
	err.Suggestion = loginHint
	return err
}

// ForbiddenError is returned when the role may not open an area
func ForbiddenError(message string, cause error) *CLIError {
	if message == "" {
		message = "Unauthorized access"
	}
	err := NewCLIError(ErrorTypeForbidden, message, cause)
	err.Suggestion = "Sign in with an account that has access to this area."
	err.StatusCode = http.StatusForbidden
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// ServerError creates a server error
func ServerError(message string, cause error) *CLIError {
	if message == "" {
		message = "Server error"
	}
	err := NewCLIError(ErrorTypeServer, message, cause)
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return fromAPIError(apiErr, err)
	}

	switch {
	case errors.Is(err, session.ErrNoToken):
		return UnauthenticatedError("Please login first", err)
	case errors.Is(err, session.ErrTokenExpired),
		errors.Is(err, session.ErrMalformedToken),
		errors.Is(err, session.ErrMissingID),
		errors.Is(err, session.ErrUnknownRole):
		return SessionExpiredError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError(err)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NetworkError("Could not connect to server", err)
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "connection refused"), strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not connect to server", err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError(err)
	default:
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}
}

// fromAPIError maps the status of apiErr to a category. cause is the error
// as returned to the caller, so wrapping context stays in the chain.
func fromAPIError(apiErr *api.APIError, cause error) *CLIError {
	var cliErr *CLIError
	switch code := apiErr.StatusCode; {
	case code == http.StatusUnauthorized:
		cliErr = UnauthenticatedError(apiErr.Message, cause)
	case code == http.StatusForbidden:
		cliErr = ForbiddenError(apiErr.Message, cause)
	case code == http.StatusNotFound:
		cliErr = NewCLIError(ErrorTypeNotFound, apiErr.Message, cause)
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity, code == http.StatusConflict:
		cliErr = NewCLIError(ErrorTypeValidation, apiErr.Message, cause)
	case code >= 500:
		cliErr = ServerError(apiErr.Message, cause)
	default:
		cliErr = NewCLIError(ErrorTypeUnknown, apiErr.Message, cause)
	}
	cliErr.StatusCode = apiErr.StatusCode
	return cliErr
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
