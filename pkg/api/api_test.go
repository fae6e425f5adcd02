package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saad0095/leaders-tax-cli/pkg/client"
)

type fixedToken string

func (f fixedToken) Token() (string, error) { return string(f), nil }

// newBackend starts a gin engine configured by routes and returns a client
// pointed at it.
func newBackend(t *testing.T, routes func(r *gin.Engine)) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(client.New(client.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, Tokens: fixedToken("tok")}))
}

func TestGetNotifications(t *testing.T) {
	var gotPage, gotLimit, gotAuth string
	title := gofakeit.Sentence(4)
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notifications", func(ctx *gin.Context) {
			gotPage, gotLimit = ctx.Query("page"), ctx.Query("limit")
			gotAuth = ctx.GetHeader("Authorization")
			ctx.JSON(http.StatusOK, gin.H{
				"notifications": []gin.H{
					{"_id": "n2", "type": "lead_assigned", "title": title, "message": "m", "read": false, "createdAt": "2026-01-02T10:00:00Z"},
					{"_id": "n1", "type": "system_notification", "title": "old", "message": "m", "read": true, "readAt": "2026-01-01T11:00:00Z", "createdAt": "2026-01-01T10:00:00Z"},
				},
				"pagination": gin.H{"page": 1, "limit": 20, "total": 2, "pages": 1, "unreadCount": 1},
			})
		})
	})

	resp, err := c.GetNotifications(context.Background(), 1, 20)

	require.NoError(t, err)
	assert.Equal(t, "1", gotPage)
	assert.Equal(t, "20", gotLimit)
	assert.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, resp.Notifications, 2)
	assert.Equal(t, "n2", resp.Notifications[0].ID)
	assert.Equal(t, title, resp.Notifications[0].Title)
	assert.Equal(t, NotificationLeadAssigned, resp.Notifications[0].Type)
	assert.NotNil(t, resp.Notifications[1].ReadAt)
	assert.Equal(t, 1, resp.Pagination.UnreadCount)
}

func TestNotificationMutations(t *testing.T) {
	var calls []string
	record := func(ctx *gin.Context) {
		calls = append(calls, ctx.Request.Method+" "+ctx.Request.URL.Path)
		ctx.JSON(http.StatusOK, gin.H{"message": "ok"})
	}
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notifications/unread-count", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"unreadCount": 4})
		})
		r.POST("/api/notifications/:id/mark-read", record)
		r.POST("/api/notifications/mark-all-read", record)
		r.DELETE("/api/notifications/:id", record)
	})
	ctx := context.Background()

	count, err := c.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.NoError(t, c.MarkNotificationAsRead(ctx, "abc"))
	require.NoError(t, c.MarkAllNotificationsAsRead(ctx))
	require.NoError(t, c.DeleteNotification(ctx, "abc"))

	assert.Equal(t, []string{
		"POST /api/notifications/abc/mark-read",
		"POST /api/notifications/mark-all-read",
		"DELETE /api/notifications/abc",
	}, calls)
}

func TestErrorBodies(t *testing.T) {
	c := newBackend(t, func(r *gin.Engine) {
		r.POST("/api/auth/login", func(ctx *gin.Context) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		})
		r.GET("/api/leads/:id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		})
		r.GET("/api/auth/users", func(ctx *gin.Context) {
			ctx.String(http.StatusForbidden, "")
		})
		r.GET("/api/leads/dashboard/stats", func(ctx *gin.Context) {
			ctx.String(http.StatusInternalServerError, "boom")
		})
	})
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.c", "x")
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, err = c.GetLead(ctx, "missing")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Lead not found")

	_, err = c.ListUsers(ctx)
	assert.True(t, IsForbidden(err))
	assert.Contains(t, err.Error(), "Forbidden")

	_, err = c.GetDashboardStats(ctx)
	assert.True(t, IsServerError(err))
	assert.Contains(t, err.Error(), "boom")
}

func TestContextCancellation(t *testing.T) {
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/notifications/unread-count", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"unreadCount": 1})
		})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetUnreadCount(ctx)

	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
}

func TestAuthEndpoints(t *testing.T) {
	var forgotEmail string
	var reset ResetPasswordRequest
	c := newBackend(t, func(r *gin.Engine) {
		r.POST("/api/auth/login", func(ctx *gin.Context) {
			var req LoginRequest
			require.NoError(t, ctx.ShouldBindJSON(&req))
			ctx.JSON(http.StatusOK, gin.H{"token": "jwt-for-" + req.Email, "message": "Login successful"})
		})
		r.POST("/api/auth/forgot-password", func(ctx *gin.Context) {
			var body map[string]string
			require.NoError(t, ctx.ShouldBindJSON(&body))
			forgotEmail = body["email"]
			ctx.JSON(http.StatusOK, gin.H{"message": "Reset link sent"})
		})
		r.POST("/api/auth/reset-password", func(ctx *gin.Context) {
			require.NoError(t, ctx.ShouldBindJSON(&reset))
			ctx.JSON(http.StatusOK, gin.H{"message": "Password reset"})
		})
	})
	ctx := context.Background()
	email := gofakeit.Email()

	login, err := c.Login(ctx, email, "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-for-"+email, login.Token)

	msg, err := c.ForgotPassword(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "Reset link sent", msg)
	assert.Equal(t, email, forgotEmail)

	msg, err = c.ResetPassword(ctx, "reset-tok", "newpass")
	require.NoError(t, err)
	assert.Equal(t, "Password reset", msg)
	assert.Equal(t, ResetPasswordRequest{Token: "reset-tok", Password: "newpass"}, reset)
}

func TestListLeads(t *testing.T) {
	var query map[string]string
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/leads", func(ctx *gin.Context) {
			query = map[string]string{}
			for k, v := range ctx.Request.URL.Query() {
				query[k] = v[0]
			}
			ctx.JSON(http.StatusOK, gin.H{
				"leads": []gin.H{{"_id": "l1", "companyName": "Acme", "customerName": "Omar", "status": "Meeting Fixed", "createdAt": "2026-01-01T00:00:00Z"}},
				"pagination": gin.H{"currentPage": 2, "totalPages": 3, "totalLeads": 21, "hasNextPage": true, "hasPrevPage": true, "limit": 10},
			})
		})
	})

	resp, err := c.ListLeads(context.Background(), LeadFilter{Status: StatusMeetingFixed, Search: "acme", Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "Meeting Fixed", "search": "acme", "page": "2", "limit": "10"}, query)
	require.Len(t, resp.Leads, 1)
	assert.Equal(t, "Acme", resp.Leads[0].CompanyName)
	assert.True(t, resp.Pagination.HasNextPage)
	assert.Equal(t, 21, resp.Pagination.TotalLeads)
}

func TestListLeadsBareArray(t *testing.T) {
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/leads", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, []gin.H{{"_id": "a"}, {"_id": "b"}})
		})
	})

	resp, err := c.ListLeads(context.Background(), LeadFilter{})

	require.NoError(t, err)
	assert.Len(t, resp.Leads, 2)
	assert.Equal(t, 2, resp.Pagination.TotalLeads)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestLeadMutations(t *testing.T) {
	bodies := map[string]map[string]interface{}{}
	capture := func(ctx *gin.Context) {
		var body map[string]interface{}
		_ = ctx.ShouldBindJSON(&body)
		bodies[ctx.Request.Method+" "+ctx.Request.URL.Path] = body
		ctx.JSON(http.StatusOK, gin.H{"_id": ctx.Param("id"), "companyName": body["companyName"]})
	}
	c := newBackend(t, func(r *gin.Engine) {
		r.POST("/api/leads", capture)
		r.PUT("/api/leads/:id", capture)
		r.DELETE("/api/leads/:id", capture)
		r.POST("/api/leads/assign", capture)
		r.PATCH("/api/leads/:id/status", capture)
		r.PUT("/api/leads/:id/notes", capture)
		r.PUT("/api/leads/:id/revenue", capture)
	})
	ctx := context.Background()

	lead, err := c.CreateLead(ctx, LeadInput{CompanyName: "Acme", CustomerName: "Omar"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", lead.CompanyName)

	_, err = c.UpdateLead(ctx, "l1", LeadInput{CompanyName: "Acme 2"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteLead(ctx, "l1"))
	require.NoError(t, c.AssignLead(ctx, "l1", "u9"))
	require.NoError(t, c.UpdateLeadStatus(ctx, "l1", StatusUpdate{Status: StatusInFollowUp, FollowUpReminderDays: 3}))
	require.NoError(t, c.UpdateLeadNotes(ctx, "l1", "called twice"))
	require.NoError(t, c.UpdateLeadRevenue(ctx, "l1", 1500))

	assert.Equal(t, "Acme 2", bodies["PUT /api/leads/l1"]["companyName"])
	assert.Contains(t, bodies, "DELETE /api/leads/l1")
	assert.Equal(t, map[string]interface{}{"leadId": "l1", "userId": "u9"}, bodies["POST /api/leads/assign"])
	assert.Equal(t, map[string]interface{}{"status": "In Follow-up", "followUpReminderDays": float64(3)}, bodies["PATCH /api/leads/l1/status"])
	assert.Equal(t, "called twice", bodies["PUT /api/leads/l1/notes"]["notesByDubAgent"])
	assert.Equal(t, float64(1500), bodies["PUT /api/leads/l1/revenue"]["revenueAmount"])
}

func TestLeadFilesAndInvoice(t *testing.T) {
	var uploaded []string
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/leads/:id/files", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"files": []gin.H{{"filename": "inv.pdf", "originalName": "invoice.pdf", "size": 42}}})
		})
		r.POST("/api/leads/:id/invoice", func(ctx *gin.Context) {
			form, err := ctx.MultipartForm()
			require.NoError(t, err)
			for _, fh := range form.File["files"] {
				f, err := fh.Open()
				require.NoError(t, err)
				data, _ := io.ReadAll(f)
				_ = f.Close()
				uploaded = append(uploaded, fh.Filename+":"+string(data))
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "uploaded"})
		})
	})
	ctx := context.Background()

	files, err := c.GetLeadFiles(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "invoice.pdf", files[0].OriginalName)

	err = c.UploadInvoice(ctx, "l1", []UploadFile{
		{Name: "a.pdf", Reader: strings.NewReader("AAA")},
		{Name: "b.pdf", Reader: strings.NewReader("BB")},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.pdf:AAA", "b.pdf:BB"}, uploaded)
}

func TestAgentLeadsAndStats(t *testing.T) {
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/leads/agent/:id", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, []gin.H{{"_id": "l-" + ctx.Param("id")}})
		})
		r.GET("/api/leads/dashboard/stats", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{
				"totalLeads": 12, "unassignedLeads": 3, "totalKarachiAgents": 2, "totalDubaiAgents": 4,
				"statusBreakdown": gin.H{"Deal Done": 5},
			})
		})
	})
	ctx := context.Background()

	leads, err := c.ListAgentLeads(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "l-u1", leads[0].ID)

	stats, err := c.GetDashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalLeads)
	assert.Equal(t, 3, stats.UnassignedLeads)
	assert.Equal(t, 4, stats.TotalDubaiAgents)
	assert.Equal(t, 5, stats.StatusBreakdown["Deal Done"])
}

func TestUserEndpoints(t *testing.T) {
	var registered NewUser
	var updated UserUpdate
	var deleted string
	c := newBackend(t, func(r *gin.Engine) {
		r.GET("/api/auth/users", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, []gin.H{{"_id": "u1", "name": "Admin", "email": "a@x.com", "role": "admin"}})
		})
		r.GET("/api/auth/dubai-agents", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, []gin.H{{"_id": "d1", "name": "Dana", "role": "dubai-agent"}})
		})
		r.POST("/api/auth/register", func(ctx *gin.Context) {
			require.NoError(t, ctx.ShouldBindJSON(&registered))
			ctx.JSON(http.StatusCreated, gin.H{"message": "User registered"})
		})
		r.PUT("/api/auth/users/:id", func(ctx *gin.Context) {
			require.NoError(t, ctx.ShouldBindJSON(&updated))
			ctx.JSON(http.StatusOK, gin.H{"message": "updated"})
		})
		r.DELETE("/api/auth/users/:id", func(ctx *gin.Context) {
			deleted = ctx.Param("id")
			ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
		})
	})
	ctx := context.Background()

	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Role)

	agents, err := c.ListDubaiAgents(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dana", agents[0].Name)

	newUser := NewUser{Name: gofakeit.Name(), Email: gofakeit.Email(), Password: "pw123456", Role: "karachi-agent"}
	msg, err := c.RegisterUser(ctx, newUser)
	require.NoError(t, err)
	assert.Equal(t, "User registered", msg)
	assert.Equal(t, newUser, registered)

	require.NoError(t, c.UpdateUser(ctx, "u1", UserUpdate{Name: "Renamed"}))
	assert.Equal(t, UserUpdate{Name: "Renamed"}, updated)

	require.NoError(t, c.DeleteUser(ctx, "u1"))
	assert.Equal(t, "u1", deleted)
}

func TestLeadStatus(t *testing.T) {
	for _, s := range LeadStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, LeadStatus("Won").Valid())
	assert.False(t, LeadStatus("").Valid())
	assert.True(t, StatusDealDone.Terminal())
	assert.False(t, StatusMeetingFixed.Terminal())
}
