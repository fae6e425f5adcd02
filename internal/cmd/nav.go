package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Show the pages available to your role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.Links(deps)
	},
}

var navCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Check whether your session may open a page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := service.Check(deps, args[0])
		return err
	},
}

func init() {
	navCmd.AddCommand(navCheckCmd)
}
