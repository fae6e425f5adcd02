package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var (
	newUser    api.NewUser
	userUpdate api.UserUpdate
	userForce  bool
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"agents"},
	Short:   "Manage agent accounts (admin)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(deps).List(cmd.Context())
	},
}

var usersDubaiCmd = &cobra.Command{
	Use:   "dubai-agents",
	Short: "List Dubai agents available for assignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(deps).DubaiAgents(cmd.Context())
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new agent",
	Long:  "Register a new agent. Missing fields are prompted for; the role defaults to karachi-agent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(deps).Add(cmd.Context(), newUser)
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <user-id>",
	Short: "Edit a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(deps).Update(cmd.Context(), args[0], userUpdate)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewUserService(deps).Delete(cmd.Context(), args[0], userForce)
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&newUser.Name, "name", "", "Full name")
	usersAddCmd.Flags().StringVar(&newUser.Email, "email", "", "Login email")
	usersAddCmd.Flags().StringVar(&newUser.Password, "password", "", "Initial password")
	usersAddCmd.Flags().StringVar(&newUser.Role, "role", "", "admin, karachi-agent or dubai-agent")

	usersUpdateCmd.Flags().StringVar(&userUpdate.Name, "name", "", "Full name")
	usersUpdateCmd.Flags().StringVar(&userUpdate.Email, "email", "", "Login email")
	usersUpdateCmd.Flags().StringVar(&userUpdate.Password, "password", "", "New password")
	usersUpdateCmd.Flags().StringVar(&userUpdate.Role, "role", "", "admin, karachi-agent or dubai-agent")

	usersDeleteCmd.Flags().BoolVarP(&userForce, "yes", "y", false, "Skip confirmation")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDubaiCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}
