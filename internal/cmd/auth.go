package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var (
	loginEmail    string
	loginPassword string
	resetToken    string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  "Sign in to and out of the Leaders Tax portal",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Leaders Tax",
	Long:  "Authenticate with email and password. Missing values are prompted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewAuthService(deps).Login(cmd.Context(), loginEmail, loginPassword)
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(deps).Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Display the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.NewAuthService(deps).WhoAmI()
		return err
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password [email]",
	Short: "Request a password reset link",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := ""
		if len(args) > 0 {
			email = args[0]
		}
		return service.NewAuthService(deps).ForgotPassword(cmd.Context(), email)
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password using the token from the reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewAuthService(deps).ResetPassword(cmd.Context(), resetToken, "")
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (prompted when omitted)")
	resetPasswordCmd.Flags().StringVar(&resetToken, "token", "", "Reset token from the email link")
	_ = resetPasswordCmd.MarkFlagRequired("token")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(forgotPasswordCmd)
	authCmd.AddCommand(resetPasswordCmd)
}
