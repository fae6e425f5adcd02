package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var (
	leadFilter     api.LeadFilter
	leadStatusFlag string
	leadForce      bool
	leadAgentID    string

	leadInput   api.LeadInput
	leadMeeting string

	agentStatus string
	agentUpdate service.AgentUpdate
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Lead commands",
	Long:  "Create, assign and follow up on leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all leads (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := leadFilter
		filter.Status = api.LeadStatus(leadStatusFlag)
		return service.NewLeadService(deps).List(cmd.Context(), filter)
	},
}

var leadsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the leads you created or were assigned (agents)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Mine(cmd.Context())
	},
}

var leadsShowCmd = &cobra.Command{
	Use:   "show <lead-id>",
	Short: "Show lead details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Show(cmd.Context(), args[0])
	},
}

var leadsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a lead (admin, Karachi agents)",
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := leadInputFromFlags()
		if err != nil {
			return err
		}
		_, err = service.NewLeadService(deps).Create(cmd.Context(), input)
		return err
	},
}

var leadsUpdateCmd = &cobra.Command{
	Use:   "update <lead-id>",
	Short: "Edit lead details (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := leadInputFromFlags()
		if err != nil {
			return err
		}
		return service.NewLeadService(deps).Update(cmd.Context(), args[0], input)
	},
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete <lead-id>",
	Short: "Delete a lead (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Delete(cmd.Context(), args[0], leadForce)
	},
}

var leadsAssignCmd = &cobra.Command{
	Use:   "assign <lead-id>",
	Short: "Assign a lead to a Dubai agent (admin)",
	Long:  "Assign a lead to a Dubai agent. Without --agent the agent is chosen from a list.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Assign(cmd.Context(), args[0], leadAgentID)
	},
}

var leadsSaveCmd = &cobra.Command{
	Use:     "update-status <lead-id>",
	Aliases: []string{"save"},
	Short:   "Update status, notes and revenue of an assigned lead (agents)",
	Long: `Save an agent's changes to a lead. Moving to "In Follow-up" schedules a
reminder (default 3 days). "Deal Done" requires a revenue amount and accepts
invoice files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update := agentUpdate
		update.Status = api.LeadStatus(agentStatus)
		return service.NewLeadService(deps).SaveAgentUpdate(cmd.Context(), args[0], update)
	},
}

var leadsFilesCmd = &cobra.Command{
	Use:   "files <lead-id>",
	Short: "List invoice files attached to a lead",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Files(cmd.Context(), args[0])
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show lead statistics for your role",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewLeadService(deps).Dashboard(cmd.Context())
	},
}

func leadInputFromFlags() (api.LeadInput, error) {
	input := leadInput
	meeting, err := service.ParseMeeting(leadMeeting)
	if err != nil {
		return input, err
	}
	input.MeetingDateAndTime = meeting
	return input, nil
}

func addLeadInputFlags(fs *pflag.FlagSet) {
	fs.StringVar(&leadInput.CompanyName, "company", "", "Company name")
	fs.StringVar(&leadInput.CustomerName, "customer", "", "Customer name")
	fs.StringVar(&leadInput.Email, "email", "", "Customer email")
	fs.StringVar(&leadInput.Mobile, "mobile", "", "Mobile number")
	fs.StringVar(&leadInput.Whatsapp, "whatsapp", "", "WhatsApp number")
	fs.StringVar(&leadInput.Emirate, "emirate", "", "Emirate")
	fs.StringVar(&leadInput.Area, "area", "", "Area")
	fs.StringVar(&leadInput.Service, "service", "", "Requested service")
	fs.StringVar(&leadInput.Language, "language", "", "Preferred language")
	fs.StringVar(&leadInput.Source, "source", "", "Lead source")
	fs.StringVar(&leadMeeting, "meeting", "", `Meeting time, "YYYY-MM-DD HH:MM" or RFC 3339`)
	fs.StringVar(&leadInput.NotesByKarUser, "notes", "", "Notes from the Karachi team")
}

func init() {
	leadsListCmd.Flags().StringVar(&leadStatusFlag, "status", "", "Filter by status")
	leadsListCmd.Flags().StringVar(&leadFilter.Service, "service", "", "Filter by service")
	leadsListCmd.Flags().StringVar(&leadFilter.Search, "search", "", "Search company, customer or email")
	leadsListCmd.Flags().StringVar(&leadFilter.StartDate, "from", "", "Created on or after (YYYY-MM-DD)")
	leadsListCmd.Flags().StringVar(&leadFilter.EndDate, "to", "", "Created on or before (YYYY-MM-DD)")
	leadsListCmd.Flags().IntVar(&leadFilter.Page, "page", 1, "Page number")
	leadsListCmd.Flags().IntVar(&leadFilter.Limit, "limit", 10, "Results per page")

	addLeadInputFlags(leadsCreateCmd.Flags())
	addLeadInputFlags(leadsUpdateCmd.Flags())

	leadsDeleteCmd.Flags().BoolVarP(&leadForce, "yes", "y", false, "Skip confirmation")
	leadsAssignCmd.Flags().StringVar(&leadAgentID, "agent", "", "Dubai agent id")

	leadsSaveCmd.Flags().StringVar(&agentStatus, "status", "", "New status")
	leadsSaveCmd.Flags().StringVar(&agentUpdate.Notes, "notes", "", "Notes from the Dubai team")
	leadsSaveCmd.Flags().Float64Var(&agentUpdate.Revenue, "revenue", 0, "Revenue amount (Deal Done)")
	leadsSaveCmd.Flags().IntVar(&agentUpdate.FollowUpDays, "follow-up-days", 0, "Reminder delay in days (In Follow-up)")
	leadsSaveCmd.Flags().StringSliceVar(&agentUpdate.Invoices, "invoice", nil, "Invoice file to attach (Deal Done, repeatable)")

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsMineCmd)
	leadsCmd.AddCommand(leadsShowCmd)
	leadsCmd.AddCommand(leadsCreateCmd)
	leadsCmd.AddCommand(leadsUpdateCmd)
	leadsCmd.AddCommand(leadsDeleteCmd)
	leadsCmd.AddCommand(leadsAssignCmd)
	leadsCmd.AddCommand(leadsSaveCmd)
	leadsCmd.AddCommand(leadsFilesCmd)
	leadsCmd.AddCommand(dashboardCmd)
}
