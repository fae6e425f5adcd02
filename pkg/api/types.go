package api

import "time"

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationLeadCreated       NotificationType = "lead_created"
	NotificationLeadAssigned      NotificationType = "lead_assigned"
	NotificationLeadStatusChanged NotificationType = "lead_status_changed"
	NotificationFollowUpReminder  NotificationType = "follow_up_reminder"
	NotificationSystem            NotificationType = "system_notification"
)

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is a server-emitted event about lead or system activity.
// A read notification always carries ReadAt.
type Notification struct {
	ID             string                 `json:"_id"`
	Type           NotificationType       `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	ActionURL      string                 `json:"actionUrl,omitempty"`
	ActionRequired bool                   `json:"actionRequired,omitempty"`
	Read           bool                   `json:"read"`
	ReadAt         *time.Time             `json:"readAt,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
	TimeAgo        string                 `json:"timeAgo,omitempty"`
	Priority       Priority               `json:"priority,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
}

// Pagination is the paging block of list responses
type Pagination struct {
	Page        int `json:"page"`
	Limit       int `json:"limit"`
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	UnreadCount int `json:"unreadCount"`
}

// NotificationListResponse is one page of notifications
type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
}

// UnreadCountResponse carries the server unread count
type UnreadCountResponse struct {
	UnreadCount int `json:"unreadCount"`
}

// MessageResponse is the acknowledgement most mutations return
type MessageResponse struct {
	Message string `json:"message"`
}

// Auth types

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// User is an account managed by the administrator
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// NewUser is the body of a registration
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserUpdate carries the editable user fields; empty fields are left alone
type UserUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Lead types

// LeadStatus is a step of the lead lifecycle
type LeadStatus string

const (
	StatusMeetingFixed  LeadStatus = "Meeting Fixed"
	StatusMeetingDone   LeadStatus = "Meeting Done"
	StatusInFollowUp    LeadStatus = "In Follow-up"
	StatusNotInterested LeadStatus = "Not Interested"
	StatusNotResponding LeadStatus = "Not Responding"
	StatusDealDone      LeadStatus = "Deal Done"
	StatusClosed        LeadStatus = "Closed"
)

// LeadStatuses lists every status in lifecycle order
var LeadStatuses = []LeadStatus{
	StatusMeetingFixed,
	StatusMeetingDone,
	StatusInFollowUp,
	StatusNotInterested,
	StatusNotResponding,
	StatusDealDone,
	StatusClosed,
}

// Valid reports whether s is a known status
func (s LeadStatus) Valid() bool {
	for _, known := range LeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the lead has reached a won or lost outcome
func (s LeadStatus) Terminal() bool {
	switch s {
	case StatusDealDone, StatusClosed, StatusNotInterested:
		return true
	}
	return false
}

// LeadAgent is the populated agent reference on a lead
type LeadAgent struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Lead is a prospective customer record
type Lead struct {
	ID                   string     `json:"_id"`
	CompanyName          string     `json:"companyName"`
	CustomerName         string     `json:"customerName"`
	Email                string     `json:"email,omitempty"`
	Mobile               string     `json:"mobile,omitempty"`
	Whatsapp             string     `json:"whatsapp,omitempty"`
	Emirate              string     `json:"emirate,omitempty"`
	Area                 string     `json:"area,omitempty"`
	Service              string     `json:"service,omitempty"`
	Language             string     `json:"language,omitempty"`
	Source               string     `json:"source,omitempty"`
	MeetingDateAndTime   *time.Time `json:"meetingDateAndTime,omitempty"`
	Status               LeadStatus `json:"status,omitempty"`
	NotesByKarUser       string     `json:"notesByKarUser,omitempty"`
	NotesByDubAgent      string     `json:"notesByDubAgent,omitempty"`
	RevenueAmount        float64    `json:"revenueAmount,omitempty"`
	FollowUpReminderDays int        `json:"followUpReminderDays,omitempty"`
	CreatedBy            *LeadAgent `json:"createdBy,omitempty"`
	AssignedTo           *LeadAgent `json:"assignedTo,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt,omitempty"`
}

// LeadInput is the body of create and update calls
type LeadInput struct {
	CompanyName        string     `json:"companyName,omitempty"`
	CustomerName       string     `json:"customerName,omitempty"`
	Email              string     `json:"email,omitempty"`
	Mobile             string     `json:"mobile,omitempty"`
	Whatsapp           string     `json:"whatsapp,omitempty"`
	Emirate            string     `json:"emirate,omitempty"`
	Area               string     `json:"area,omitempty"`
	Service            string     `json:"service,omitempty"`
	Language           string     `json:"language,omitempty"`
	Source             string     `json:"source,omitempty"`
	MeetingDateAndTime *time.Time `json:"meetingDateAndTime,omitempty"`
	NotesByKarUser     string     `json:"notesByKarUser,omitempty"`
}

// LeadFilter narrows a lead listing
type LeadFilter struct {
	Status    LeadStatus
	Service   string
	Search    string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// LeadPagination is the paging block of lead listings
type LeadPagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalLeads  int  `json:"totalLeads"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Limit       int  `json:"limit"`
}

// LeadListResponse is one page of leads
type LeadListResponse struct {
	Leads      []Lead         `json:"leads"`
	Pagination LeadPagination `json:"pagination"`
}

// LeadFilesResponse lists the files stored against a lead
type LeadFilesResponse struct {
	Files []LeadFile `json:"files"`
}

// StatusUpdate moves a lead through its lifecycle
type StatusUpdate struct {
	Status               LeadStatus `json:"status"`
	FollowUpReminderDays int        `json:"followUpReminderDays,omitempty"`
}

// LeadFile is an invoice or attachment stored against a lead
type LeadFile struct {
	ID           string    `json:"_id,omitempty"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName,omitempty"`
	URL          string    `json:"url,omitempty"`
	Size         int64     `json:"size,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt,omitempty"`
}

// DashboardStats are the summary counters of the dashboards
type DashboardStats struct {
	TotalLeads         int            `json:"totalLeads"`
	UnassignedLeads    int            `json:"unassignedLeads"`
	TotalKarachiAgents int            `json:"totalKarachiAgents"`
	TotalDubaiAgents   int            `json:"totalDubaiAgents"`
	StatusBreakdown    map[string]int `json:"statusBreakdown,omitempty"`
}

// ErrorResponse is the error body returned by the backend
type ErrorResponse struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
