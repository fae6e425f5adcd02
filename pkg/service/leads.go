package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

const (
	adminLeadsPath = "/admin/leads"
	agentLeadsPath = "/agent/leads"

	// DefaultFollowUpDays is used when a lead moves to In Follow-up
	// without an explicit reminder.
	DefaultFollowUpDays = 3
)

var leadHeaders = []string{"ID", "COMPANY", "CUSTOMER", "SERVICE", "STATUS", "ASSIGNED TO", "CREATED"}

// LeadService provides lead operations for admins and agents
type LeadService struct {
	Deps
}

// NewLeadService creates a new lead service
func NewLeadService(deps Deps) *LeadService {
	return &LeadService{Deps: deps}
}

// AgentUpdate is the set of changes a Dubai agent saves on a lead.
type AgentUpdate struct {
	Status       api.LeadStatus
	Notes        string
	Revenue      float64
	FollowUpDays int
	Invoices     []string
}

// List prints the leads matching filter (admin only)
func (ls *LeadService) List(ctx context.Context, filter api.LeadFilter) error {
	if _, err := Authorize(ls.Tokens, adminLeadsPath); err != nil {
		return err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return clierrors.ValidationError("status", fmt.Sprintf("unknown lead status %q", filter.Status))
	}

	logger.Debug("Listing leads", "page", filter.Page, "status", filter.Status, "search", filter.Search)
	resp, err := ls.API.ListLeads(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to fetch leads: %w", err)
	}

	if len(resp.Leads) == 0 && output.GetOutputFormat() != output.FormatJSON {
		fmt.Fprintln(output.Writer(), "No leads found.")
		return nil
	}
	if err := output.PrintList(resp, leadHeaders, leadRows(resp.Leads)); err != nil {
		return err
	}
	if output.GetOutputFormat() != output.FormatJSON && resp.Pagination.TotalPages > 0 {
		fmt.Fprintf(output.Writer(), "\nPage %d of %d (%d lead%s)\n",
			resp.Pagination.CurrentPage, resp.Pagination.TotalPages,
			resp.Pagination.TotalLeads, pluralize(resp.Pagination.TotalLeads))
	}
	return nil
}

// Mine prints the leads created by or assigned to the signed-in agent
func (ls *LeadService) Mine(ctx context.Context) error {
	ident, err := Authorize(ls.Tokens, agentLeadsPath)
	if err != nil {
		return err
	}

	leads, err := ls.API.ListAgentLeads(ctx, ident.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch your leads: %w", err)
	}

	if len(leads) == 0 && output.GetOutputFormat() != output.FormatJSON {
		fmt.Fprintln(output.Writer(), "No leads yet.")
		return nil
	}
	return output.PrintList(leads, leadHeaders, leadRows(leads))
}

// Show prints one lead with its invoice files
func (ls *LeadService) Show(ctx context.Context, id string) error {
	if _, err := identity(ls.Tokens); err != nil {
		return err
	}

	lead, err := ls.API.GetLead(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch lead details: %w", err)
	}

	if err := output.PrintRecord(lead.CompanyName, lead, leadFields(lead)); err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return nil
	}

	files, err := ls.API.GetLeadFiles(ctx, id)
	if err != nil {
		logger.Warn("Error fetching lead files", "lead_id", id, "error", err)
		return nil
	}
	if len(files) > 0 {
		fmt.Fprintln(output.Writer())
		printFiles(files)
	}
	return nil
}

// Create adds a new lead. Karachi agents and admins may create leads.
func (ls *LeadService) Create(ctx context.Context, input api.LeadInput) (*api.Lead, error) {
	ident, err := identity(ls.Tokens)
	if err != nil {
		return nil, err
	}
	if ident.Role == session.RoleDubaiAgent {
		return nil, clierrors.ForbiddenError("", nil)
	}
	if err := validateLeadInput(input); err != nil {
		return nil, err
	}

	lead, err := ls.API.CreateLead(ctx, input)
	if err != nil {
		return nil, err
	}
	output.PrintSuccess("✓ Lead created successfully!")
	if lead != nil && lead.ID != "" {
		output.PrintInfo("Lead ID: %s", lead.ID)
	}
	return lead, nil
}

// Update edits a lead's details (admin only)
func (ls *LeadService) Update(ctx context.Context, id string, input api.LeadInput) error {
	if _, err := Authorize(ls.Tokens, adminLeadsPath); err != nil {
		return err
	}

	if _, err := ls.API.UpdateLead(ctx, id, input); err != nil {
		return err
	}
	output.PrintSuccess("✓ Lead updated successfully!")
	return nil
}

// Delete removes a lead (admin only), confirming first unless force is set
func (ls *LeadService) Delete(ctx context.Context, id string, force bool) error {
	if _, err := Authorize(ls.Tokens, adminLeadsPath); err != nil {
		return err
	}

	if !force {
		confirm, err := ls.Prompt.Confirm("Are you sure you want to delete this lead?")
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Writer(), "Cancelled.")
			return nil
		}
	}

	if err := ls.API.DeleteLead(ctx, id); err != nil {
		return err
	}
	output.PrintSuccess("✓ Lead deleted successfully!")
	return nil
}

// Assign hands a lead to a Dubai agent (admin only). With no agent id the
// agent is picked from a list.
func (ls *LeadService) Assign(ctx context.Context, leadID, agentID string) error {
	if _, err := Authorize(ls.Tokens, adminLeadsPath); err != nil {
		return err
	}

	if agentID == "" {
		agents, err := ls.API.ListDubaiAgents(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch Dubai agents: %w", err)
		}
		if len(agents) == 0 {
			return clierrors.ValidationError("agent", "no Dubai agents available")
		}
		options := make([]string, len(agents))
		for i, a := range agents {
			options[i] = fmt.Sprintf("%s <%s>", a.Name, a.Email)
		}
		idx, err := ls.Prompt.Select("Assign to:", options)
		if err != nil {
			return err
		}
		agentID = agents[idx].ID
	}

	if err := ls.API.AssignLead(ctx, leadID, agentID); err != nil {
		return err
	}
	output.PrintSuccess("✓ Lead assigned to Dubai agent")
	return nil
}

// SaveAgentUpdate applies a Dubai agent's edits in the order the server
// expects: status, notes, then revenue and invoices for closed deals.
func (ls *LeadService) SaveAgentUpdate(ctx context.Context, id string, update AgentUpdate) error {
	if _, err := Authorize(ls.Tokens, agentLeadsPath); err != nil {
		return err
	}

	lead, err := ls.API.GetLead(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch lead details: %w", err)
	}

	status := update.Status
	if status == "" {
		status = lead.Status
	}
	if !status.Valid() {
		return clierrors.ValidationError("status", fmt.Sprintf("unknown lead status %q", status))
	}

	revenue := update.Revenue
	if revenue <= 0 {
		revenue = lead.RevenueAmount
	}
	if status == api.StatusDealDone && revenue <= 0 {
		return clierrors.ValidationError("revenue", "Please enter revenue amount before saving.")
	}

	var uploads []api.UploadFile
	if len(update.Invoices) > 0 {
		if status != api.StatusDealDone {
			output.PrintWarning("Invoices are only attached to Deal Done leads; ignoring %d file%s",
				len(update.Invoices), pluralize(len(update.Invoices)))
		} else {
			uploads, err = openUploads(update.Invoices)
			if err != nil {
				return err
			}
			defer closeUploads(uploads)
		}
	}

	if status != lead.Status {
		change := api.StatusUpdate{Status: status}
		if status == api.StatusInFollowUp {
			change.FollowUpReminderDays = followUpDays(update.FollowUpDays, lead.FollowUpReminderDays)
		}
		logger.Debug("Updating lead status", "lead_id", id, "from", lead.Status, "to", status)
		if err := ls.API.UpdateLeadStatus(ctx, id, change); err != nil {
			return err
		}
	}

	notes := strings.TrimSpace(update.Notes)
	if notes != "" && notes != lead.NotesByDubAgent {
		if err := ls.API.UpdateLeadNotes(ctx, id, notes); err != nil {
			return err
		}
	}

	if status == api.StatusDealDone {
		if err := ls.API.UpdateLeadRevenue(ctx, id, revenue); err != nil {
			return err
		}
		if len(uploads) > 0 {
			if err := ls.API.UploadInvoice(ctx, id, uploads); err != nil {
				return err
			}
		}
	}

	output.PrintSuccess("✓ Lead Updated Successfully!")
	return nil
}

// Files lists the invoice files attached to a lead
func (ls *LeadService) Files(ctx context.Context, id string) error {
	if _, err := identity(ls.Tokens); err != nil {
		return err
	}

	files, err := ls.API.GetLeadFiles(ctx, id)
	if err != nil {
		return err
	}
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", files)
	}
	if len(files) == 0 {
		fmt.Fprintln(output.Writer(), "No files attached.")
		return nil
	}
	printFiles(files)
	return nil
}

// statusKeys maps each status to its key in the dashboard breakdown.
var statusKeys = []struct {
	key    string
	status api.LeadStatus
}{
	{"meetingFixed", api.StatusMeetingFixed},
	{"meetingDone", api.StatusMeetingDone},
	{"inFollowUp", api.StatusInFollowUp},
	{"notInterested", api.StatusNotInterested},
	{"notResponding", api.StatusNotResponding},
	{"dealDone", api.StatusDealDone},
	{"closed", api.StatusClosed},
}

// Dashboard prints the lead statistics for the signed-in role
func (ls *LeadService) Dashboard(ctx context.Context) error {
	ident, err := identity(ls.Tokens)
	if err != nil {
		return err
	}

	stats, err := ls.API.GetDashboardStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	fields := []output.Field{{Key: "Total Leads", Value: stats.TotalLeads}}
	if ident.Role == session.RoleAdmin {
		fields = append(fields,
			output.Field{Key: "Unassigned Leads", Value: stats.UnassignedLeads},
			output.Field{Key: "Karachi Agents", Value: stats.TotalKarachiAgents},
			output.Field{Key: "Dubai Agents", Value: stats.TotalDubaiAgents},
		)
	}
	for _, sk := range statusKeys {
		fields = append(fields, output.Field{Key: string(sk.status), Value: stats.StatusBreakdown[sk.key]})
	}

	return output.PrintRecord(ident.Role.Label()+" Dashboard", stats, fields)
}

func validateLeadInput(input api.LeadInput) error {
	if strings.TrimSpace(input.CompanyName) == "" {
		return clierrors.ValidationError("companyName", "is required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return clierrors.ValidationError("customerName", "is required")
	}
	return nil
}

func followUpDays(requested, current int) int {
	switch {
	case requested > 0:
		return requested
	case current > 0:
		return current
	}
	return DefaultFollowUpDays
}

func openUploads(paths []string) ([]api.UploadFile, error) {
	uploads := make([]api.UploadFile, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeUploads(uploads)
			return nil, fmt.Errorf("failed to open invoice: %w", err)
		}
		uploads = append(uploads, api.UploadFile{Name: filepath.Base(path), Reader: f})
	}
	return uploads, nil
}

func closeUploads(uploads []api.UploadFile) {
	for _, u := range uploads {
		if c, ok := u.Reader.(io.Closer); ok {
			c.Close()
		}
	}
}

func leadRows(leads []api.Lead) [][]string {
	rows := make([][]string, 0, len(leads))
	for _, l := range leads {
		rows = append(rows, []string{
			l.ID,
			output.Truncate(l.CompanyName, 28),
			output.Truncate(l.CustomerName, 24),
			l.Service,
			string(l.Status),
			agentName(l.AssignedTo),
			output.FormatDateTime(l.CreatedAt),
		})
	}
	return rows
}

func leadFields(l *api.Lead) []output.Field {
	fields := []output.Field{
		{Key: "ID", Value: l.ID},
		{Key: "Company", Value: l.CompanyName},
		{Key: "Customer", Value: l.CustomerName},
		{Key: "Email", Value: orDash(l.Email)},
		{Key: "Mobile", Value: orDash(l.Mobile)},
		{Key: "WhatsApp", Value: orDash(l.Whatsapp)},
		{Key: "Emirate", Value: orDash(l.Emirate)},
		{Key: "Area", Value: orDash(l.Area)},
		{Key: "Service", Value: orDash(l.Service)},
		{Key: "Language", Value: orDash(l.Language)},
		{Key: "Source", Value: orDash(l.Source)},
		{Key: "Meeting", Value: output.FormatDateTimePtr(l.MeetingDateAndTime)},
		{Key: "Status", Value: orDash(string(l.Status))},
		{Key: "Created By", Value: agentName(l.CreatedBy)},
		{Key: "Assigned To", Value: agentName(l.AssignedTo)},
		{Key: "Karachi Notes", Value: orDash(l.NotesByKarUser)},
		{Key: "Dubai Notes", Value: orDash(l.NotesByDubAgent)},
	}
	if l.Status == api.StatusInFollowUp && l.FollowUpReminderDays > 0 {
		fields = append(fields, output.Field{Key: "Follow-up", Value: fmt.Sprintf("every %d days", l.FollowUpReminderDays)})
	}
	if l.RevenueAmount > 0 {
		fields = append(fields, output.Field{Key: "Revenue (AED)", Value: strconv.FormatFloat(l.RevenueAmount, 'f', 2, 64)})
	}
	return append(fields, output.Field{Key: "Created", Value: output.FormatDateTime(l.CreatedAt)})
}

func printFiles(files []api.LeadFile) {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		name := f.OriginalName
		if name == "" {
			name = f.Filename
		}
		rows = append(rows, []string{name, orDash(f.URL), output.FormatDateTime(f.UploadedAt)})
	}
	output.PrintList(files, []string{"FILE", "URL", "UPLOADED"}, rows)
}

func agentName(a *api.LeadAgent) string {
	if a == nil || a.Name == "" {
		return "Unassigned"
	}
	return a.Name
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ParseMeeting reads a meeting time in local time ("2006-01-02 15:04") or
// RFC 3339.
func ParseMeeting(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, clierrors.ValidationError("meeting", fmt.Sprintf("cannot parse %q, use YYYY-MM-DD HH:MM", value))
}
