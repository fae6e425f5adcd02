package api

import (
	"context"

	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	logger.Debug("Logging in", "email", email)

	var response LoginResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(LoginRequest{Email: email, Password: password}).
		SetResult(&response).
		Post("/api/auth/login")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &response, nil
}

// ForgotPassword asks the backend to mail a reset link
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	logger.Debug("Requesting password reset", "email", email)

	var response MessageResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"email": email}).
		SetResult(&response).
		Post("/api/auth/forgot-password")

	if err := CheckResponse(resp, err); err != nil {
		return "", err
	}

	return response.Message, nil
}

// ResetPassword sets a new password using the token from the reset link
func (c *Client) ResetPassword(ctx context.Context, token, password string) (string, error) {
	logger.Debug("Resetting password")

	var response MessageResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(ResetPasswordRequest{Token: token, Password: password}).
		SetResult(&response).
		Post("/api/auth/reset-password")

	if err := CheckResponse(resp, err); err != nil {
		return "", err
	}

	return response.Message, nil
}
