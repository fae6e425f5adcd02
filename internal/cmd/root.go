package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/auth"
	"github.com/Saad0095/leaders-tax-cli/pkg/client"
	"github.com/Saad0095/leaders-tax-cli/pkg/config"
	"github.com/Saad0095/leaders-tax-cli/pkg/credentials"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/prompter"
	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var (
	verbose    bool
	configPath string
	outputFmt  string

	deps service.Deps
)

var rootCmd = &cobra.Command{
	Use:   "leaders-cli",
	Short: "Leaders Tax CLI - lead management for the Karachi and Dubai teams",
	Long: `Leaders Tax CLI is a command-line interface for the Leaders Tax
lead management portal. Sign in, work your leads and keep an eye on
notifications directly from the terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}

		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateOutputFormat(outputFmt) {
				return clierrors.ValidationError("output", "must be one of text, json, table")
			}
			config.Set("output.format", outputFmt)
		}

		tokens, err := credentials.Open()
		if err != nil {
			return fmt.Errorf("opening credential store: %w", err)
		}
		client.Init(tokens)

		deps = service.Deps{
			API:    api.New(client.GetClient()),
			Tokens: tokens,
			Prompt: prompter.Stdio(),
		}
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		if deps.Tokens != nil && cmd != loginCmd {
			err = auth.NewSessionRecovery(deps.Tokens).HandleSessionError(err)
		}
		if !errors.Is(err, service.ErrReported) {
			fmt.Fprint(os.Stderr, clierrors.FormatError(err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/leaders-tax/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(navCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}
