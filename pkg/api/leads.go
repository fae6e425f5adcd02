package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	json "github.com/json-iterator/go"

	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// ListLeads retrieves a filtered page of all leads
func (c *Client) ListLeads(ctx context.Context, filter LeadFilter) (*LeadListResponse, error) {
	logger.Debug("Fetching leads", "page", filter.Page, "status", filter.Status, "search", filter.Search)

	params := map[string]string{}
	if filter.Page > 0 {
		params["page"] = strconv.Itoa(filter.Page)
	}
	if filter.Limit > 0 {
		params["limit"] = strconv.Itoa(filter.Limit)
	}
	for key, value := range map[string]string{
		"status":    string(filter.Status),
		"service":   filter.Service,
		"search":    filter.Search,
		"startDate": filter.StartDate,
		"endDate":   filter.EndDate,
	} {
		if value != "" {
			params[key] = value
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/api/leads")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return decodeLeadList(resp.Body())
}

// decodeLeadList accepts both the paginated object and the older bare array.
func decodeLeadList(body []byte) (*LeadListResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var leads []Lead
		if err := json.Unmarshal(trimmed, &leads); err != nil {
			return nil, fmt.Errorf("failed to decode leads: %w", err)
		}
		return &LeadListResponse{
			Leads: leads,
			Pagination: LeadPagination{
				CurrentPage: 1,
				TotalPages:  1,
				TotalLeads:  len(leads),
				Limit:       len(leads),
			},
		}, nil
	}

	var response LeadListResponse
	if err := json.Unmarshal(trimmed, &response); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return &response, nil
}

// ListAgentLeads retrieves the leads assigned to an agent
func (c *Client) ListAgentLeads(ctx context.Context, agentID string) ([]Lead, error) {
	logger.Debug("Fetching agent leads", "agent_id", agentID)

	var leads []Lead

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", agentID).
		SetResult(&leads).
		Get("/api/leads/agent/{id}")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return leads, nil
}

// GetLead retrieves a single lead
func (c *Client) GetLead(ctx context.Context, id string) (*Lead, error) {
	logger.Debug("Fetching lead", "lead_id", id)

	var lead Lead

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&lead).
		Get("/api/leads/{id}")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &lead, nil
}

// CreateLead adds a new lead
func (c *Client) CreateLead(ctx context.Context, input LeadInput) (*Lead, error) {
	logger.Debug("Creating lead", "company", input.CompanyName)

	var lead Lead

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&lead).
		Post("/api/leads")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &lead, nil
}

// UpdateLead replaces the editable fields of a lead
func (c *Client) UpdateLead(ctx context.Context, id string, input LeadInput) (*Lead, error) {
	logger.Debug("Updating lead", "lead_id", id)

	var lead Lead

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(input).
		SetResult(&lead).
		Put("/api/leads/{id}")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &lead, nil
}

// DeleteLead removes a lead
func (c *Client) DeleteLead(ctx context.Context, id string) error {
	logger.Debug("Deleting lead", "lead_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/leads/{id}")

	return CheckResponse(resp, err)
}

// AssignLead hands a lead to an agent
func (c *Client) AssignLead(ctx context.Context, leadID, userID string) error {
	logger.Debug("Assigning lead", "lead_id", leadID, "user_id", userID)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"leadId": leadID, "userId": userID}).
		Post("/api/leads/assign")

	return CheckResponse(resp, err)
}

// UpdateLeadStatus moves a lead to a new status
func (c *Client) UpdateLeadStatus(ctx context.Context, id string, update StatusUpdate) error {
	logger.Debug("Updating lead status", "lead_id", id, "status", update.Status)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(update).
		Patch("/api/leads/{id}/status")

	return CheckResponse(resp, err)
}

// UpdateLeadNotes saves the Dubai agent's notes
func (c *Client) UpdateLeadNotes(ctx context.Context, id, notes string) error {
	logger.Debug("Updating lead notes", "lead_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(map[string]string{"notesByDubAgent": notes}).
		Put("/api/leads/{id}/notes")

	return CheckResponse(resp, err)
}

// UpdateLeadRevenue records the revenue of a closed deal
func (c *Client) UpdateLeadRevenue(ctx context.Context, id string, amount float64) error {
	logger.Debug("Updating lead revenue", "lead_id", id, "amount", amount)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(map[string]float64{"revenueAmount": amount}).
		Put("/api/leads/{id}/revenue")

	return CheckResponse(resp, err)
}

// GetLeadFiles lists the invoices stored against a lead
func (c *Client) GetLeadFiles(ctx context.Context, id string) ([]LeadFile, error) {
	logger.Debug("Fetching lead files", "lead_id", id)

	var response LeadFilesResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&response).
		Get("/api/leads/{id}/files")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return response.Files, nil
}

// UploadFile is one file of a multipart invoice upload
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// UploadInvoice attaches invoice files to a lead
func (c *Client) UploadInvoice(ctx context.Context, id string, files []UploadFile) error {
	logger.Debug("Uploading invoice", "lead_id", id, "files", len(files))

	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id)
	for _, f := range files {
		req.SetFileReader("files", f.Name, f.Reader)
	}

	resp, err := req.Post("/api/leads/{id}/invoice")

	return CheckResponse(resp, err)
}

// GetDashboardStats retrieves the dashboard counters for the caller's role
func (c *Client) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	logger.Debug("Fetching dashboard stats")

	var stats DashboardStats

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&stats).
		Get("/api/leads/dashboard/stats")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &stats, nil
}
