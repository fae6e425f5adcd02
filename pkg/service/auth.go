package service

import (
	"context"
	"fmt"

	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/routes"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

type AuthService struct {
	Deps
}

// NewAuthService creates a new auth service
func NewAuthService(deps Deps) *AuthService {
	return &AuthService{Deps: deps}
}

// Login signs in, stores the token and returns the decoded identity. Missing
// credentials are prompted for.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Identity, error) {
	if current, err := session.Load(s.Tokens); err == nil {
		output.PrintWarning("Already logged in as %s (%s)", displayName(current), current.Role.Label())
		confirm, err := s.Prompt.Confirm("Continue with new login?")
		if err != nil {
			return nil, err
		}
		if !confirm {
			return nil, nil
		}
	}

	var err error
	if email == "" {
		if email, err = s.Prompt.String("Email: "); err != nil {
			return nil, err
		}
	}
	if email == "" {
		return nil, clierrors.ValidationError("email", "cannot be empty")
	}
	if password == "" {
		if password, err = s.Prompt.Password("Password: "); err != nil {
			return nil, err
		}
	}
	if password == "" {
		return nil, clierrors.ValidationError("password", "cannot be empty")
	}

	logger.Debug("Logging in", "email", email)
	resp, err := s.API.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	ident, err := session.Decode(resp.Token)
	if err != nil {
		return nil, fmt.Errorf("server returned an unusable token: %w", err)
	}

	if err := s.Tokens.SetToken(resp.Token); err != nil {
		return nil, fmt.Errorf("failed to save session token: %w", err)
	}

	message := resp.Message
	if message == "" {
		message = "Login successful!"
	}
	output.PrintSuccess("✓ %s", message)
	err = output.PrintRecord("Session", ident, []output.Field{
		{Key: "User", Value: displayName(ident)},
		{Key: "Role", Value: ident.Role.Label()},
		{Key: "Home", Value: routes.Home(ident.Role)},
	})
	return ident, err
}

// Logout forgets the stored session token
func (s *AuthService) Logout() error {
	if err := s.Tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear session token: %w", err)
	}
	output.PrintSuccess("✓ Logged out")
	return nil
}

// WhoAmI prints the identity carried by the stored token
func (s *AuthService) WhoAmI() (*session.Identity, error) {
	ident, err := session.Load(s.Tokens)
	if err != nil {
		return nil, err
	}

	expires := "never"
	if !ident.ExpiresAt.IsZero() {
		expires = output.FormatDateTime(ident.ExpiresAt)
	}
	err = output.PrintRecord("Signed in", ident, []output.Field{
		{Key: "ID", Value: ident.ID},
		{Key: "Name", Value: displayName(ident)},
		{Key: "Role", Value: ident.Role.Label()},
		{Key: "Home", Value: routes.Home(ident.Role)},
		{Key: "Expires", Value: expires},
	})
	return ident, err
}

// ForgotPassword asks the server to email a reset link
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var err error
	if email == "" {
		if email, err = s.Prompt.Required("Email: "); err != nil {
			return err
		}
	}

	message, err := s.API.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	if message == "" {
		message = "Password reset link sent to your email"
	}
	output.PrintSuccess("✓ %s", message)
	return nil
}

// ResetPassword sets a new password using the emailed reset token. An empty
// password is prompted for twice.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return clierrors.ValidationError("token", "reset token is required")
	}

	if password == "" {
		first, err := s.Prompt.Password("New password: ")
		if err != nil {
			return err
		}
		second, err := s.Prompt.Password("Confirm password: ")
		if err != nil {
			return err
		}
		if first != second {
			return clierrors.ValidationError("password", "Passwords do not match!")
		}
		password = first
	}
	if password == "" {
		return clierrors.ValidationError("password", "cannot be empty")
	}

	message, err := s.API.ResetPassword(ctx, token, password)
	if err != nil {
		return err
	}
	if message == "" {
		message = "Password reset successful!"
	}
	output.PrintSuccess("✓ %s", message)
	output.PrintInfo("You can now log in with your new password.")
	return nil
}

func displayName(ident *session.Identity) string {
	switch {
	case ident.Name != "":
		return ident.Name
	case ident.Email != "":
		return ident.Email
	}
	return ident.ID
}
