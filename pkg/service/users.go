package service

import (
	"context"
	"fmt"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

const agentsPath = "/admin/agents"

var userHeaders = []string{"ID", "NAME", "EMAIL", "ROLE", "CREATED"}

// UserService manages agent accounts (admin only)
type UserService struct {
	Deps
}

// NewUserService creates a new user service
func NewUserService(deps Deps) *UserService {
	return &UserService{Deps: deps}
}

// List prints every user account
func (us *UserService) List(ctx context.Context) error {
	if _, err := Authorize(us.Tokens, agentsPath); err != nil {
		return err
	}

	users, err := us.API.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}
	return printUsers(users)
}

// DubaiAgents prints the agents leads can be assigned to
func (us *UserService) DubaiAgents(ctx context.Context) error {
	if _, err := Authorize(us.Tokens, adminLeadsPath); err != nil {
		return err
	}

	agents, err := us.API.ListDubaiAgents(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch Dubai agents: %w", err)
	}
	return printUsers(agents)
}

// Add registers a new account, prompting for missing fields. New accounts
// default to the Karachi agent role.
func (us *UserService) Add(ctx context.Context, user api.NewUser) error {
	if _, err := Authorize(us.Tokens, agentsPath); err != nil {
		return err
	}

	var err error
	if user.Name == "" {
		if user.Name, err = us.Prompt.Required("Name: "); err != nil {
			return err
		}
	}
	if user.Email == "" {
		if user.Email, err = us.Prompt.Required("Email: "); err != nil {
			return err
		}
	}
	if user.Password == "" {
		if user.Password, err = us.Prompt.Password("Password: "); err != nil {
			return err
		}
		if user.Password == "" {
			return clierrors.ValidationError("password", "cannot be empty")
		}
	}
	if user.Role == "" {
		user.Role = session.RoleKarachiAgent.String()
	}
	if _, err := session.ParseRole(user.Role); err != nil {
		return clierrors.ValidationError("role", fmt.Sprintf("must be one of admin, karachi-agent, dubai-agent (got %q)", user.Role))
	}

	message, err := us.API.RegisterUser(ctx, user)
	if err != nil {
		return err
	}
	if message == "" {
		message = "User added successfully!"
	}
	output.PrintSuccess("✓ %s", message)
	return nil
}

// Update changes an account's details; empty fields are left untouched
func (us *UserService) Update(ctx context.Context, id string, update api.UserUpdate) error {
	if _, err := Authorize(us.Tokens, agentsPath); err != nil {
		return err
	}
	if update == (api.UserUpdate{}) {
		return clierrors.ValidationError("user", "nothing to update")
	}
	if update.Role != "" {
		if _, err := session.ParseRole(update.Role); err != nil {
			return clierrors.ValidationError("role", fmt.Sprintf("unknown role %q", update.Role))
		}
	}

	if err := us.API.UpdateUser(ctx, id, update); err != nil {
		return err
	}
	output.PrintSuccess("✓ User updated successfully!")
	return nil
}

// Delete removes an account, confirming first unless force is set
func (us *UserService) Delete(ctx context.Context, id string, force bool) error {
	ident, err := Authorize(us.Tokens, agentsPath)
	if err != nil {
		return err
	}
	if ident.ID == id {
		return clierrors.ValidationError("user", "you cannot delete your own account")
	}

	if !force {
		confirm, err := us.Prompt.Confirm("Are you sure you want to delete this user?")
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Writer(), "Cancelled.")
			return nil
		}
	}

	if err := us.API.DeleteUser(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("✓ User deleted successfully")
	return nil
}

func printUsers(users []api.User) error {
	if len(users) == 0 && output.GetOutputFormat() != output.FormatJSON {
		fmt.Fprintln(output.Writer(), "No users found.")
		return nil
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		role := u.Role
		if r, err := session.ParseRole(u.Role); err == nil {
			role = r.Label()
		}
		rows = append(rows, []string{u.ID, u.Name, u.Email, role, output.FormatDateTime(u.CreatedAt)})
	}
	return output.PrintList(users, userHeaders, rows)
}
