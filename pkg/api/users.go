package api

import (
	"context"

	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// ListUsers retrieves every account
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	logger.Debug("Fetching users")

	var users []User

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&users).
		Get("/api/auth/users")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return users, nil
}

// ListDubaiAgents retrieves the agents leads can be assigned to
func (c *Client) ListDubaiAgents(ctx context.Context) ([]User, error) {
	logger.Debug("Fetching Dubai agents")

	var users []User

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&users).
		Get("/api/auth/dubai-agents")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return users, nil
}

// RegisterUser creates an account
func (c *Client) RegisterUser(ctx context.Context, user NewUser) (string, error) {
	logger.Debug("Registering user", "email", user.Email, "role", user.Role)

	var response MessageResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(user).
		SetResult(&response).
		Post("/api/auth/register")

	if err := CheckResponse(resp, err); err != nil {
		return "", err
	}

	return response.Message, nil
}

// UpdateUser edits an account
func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) error {
	logger.Debug("Updating user", "user_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(update).
		Put("/api/auth/users/{id}")

	return CheckResponse(resp, err)
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	logger.Debug("Deleting user", "user_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/auth/users/{id}")

	return CheckResponse(resp, err)
}
