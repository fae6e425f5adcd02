package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/alert"
	"github.com/Saad0095/leaders-tax-cli/pkg/config"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
)

// settingKeys are shown by "settings show" in this order
var settingKeys = []string{
	"api.base_url",
	"api.timeout",
	"auth.store",
	"notifications.poll_interval",
	"notifications.page_size",
	"notifications.sound_file",
	"notifications.sound_player",
	"notifications.stream_url",
	"output.format",
	"log.level",
	"log.file",
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage CLI settings",
	Long:  "View and change the CLI configuration and notification sound",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]string, len(settingKeys))
		fields := []output.Field{{Key: "config file", Value: config.GetConfigFilePath()}}
		for _, key := range settingKeys {
			values[key] = config.GetString(key)
			fields = append(fields, output.Field{Key: key, Value: values[key]})
		}
		return output.PrintRecord("Settings", values, fields)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist a setting to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to save setting: %w", err)
		}
		output.PrintSuccess("✓ %s = %s", args[0], args[1])
		return nil
	},
}

var settingsSoundCmd = &cobra.Command{
	Use:   "test-sound",
	Short: "Play the new notification sound",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.Notifications()
		if settings.SoundFile != "" {
			if err := alert.Validate(settings.SoundFile); err != nil {
				return err
			}
		}
		alert.New(settings, os.Stdout).Alert()
		output.PrintInfo("🔔 Played notification sound")
		return nil
	},
}

var settingsChimeCmd = &cobra.Command{
	Use:   "reset-sound",
	Short: "Regenerate the default notification chime",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(config.GetConfigDir(), alert.ChimeFile)
		if err := alert.WriteChimeFile(path); err != nil {
			return err
		}
		output.PrintSuccess("✓ Wrote %s", path)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsSoundCmd)
	settingsCmd.AddCommand(settingsChimeCmd)
}
