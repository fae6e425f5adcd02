package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/notify"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/routes"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

var notificationHeaders = []string{"", "ID", "TYPE", "TITLE", "MESSAGE", "WHEN"}

// NotificationService provides notification-related operations on top of a
// session's notification store
type NotificationService struct {
	Deps
	store *notify.Store
	now   func() time.Time

	printMu sync.Mutex
}

// NewNotificationService creates a new notification service
func NewNotificationService(deps Deps, store *notify.Store) *NotificationService {
	return &NotificationService{Deps: deps, store: store, now: time.Now}
}

// authorize checks the signed-in role may open its notifications page
func (ns *NotificationService) authorize() (*session.Identity, error) {
	ident, err := identity(ns.Tokens)
	if err != nil {
		return nil, err
	}
	return Authorize(ns.Tokens, routes.NotificationsPath(ident.Role))
}

// ListNotifications displays one page of the user's notifications
func (ns *NotificationService) ListNotifications(ctx context.Context, page, pageSize int) error {
	if _, err := ns.authorize(); err != nil {
		return err
	}
	logger.Debug("Listing notifications", "page", page)

	resp := ns.store.Fetch(ctx, page, pageSize)
	if resp == nil {
		return ErrReported
	}

	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", resp)
	}
	if len(resp.Notifications) == 0 {
		fmt.Fprintln(output.Writer(), "No notifications.")
		return nil
	}

	if err := output.PrintList(resp, notificationHeaders, ns.rows(resp.Notifications)); err != nil {
		return err
	}
	fmt.Fprintf(output.Writer(), "\n%d unread · page %d of %d\n",
		ns.store.UnreadCount(), max(resp.Pagination.Page, 1), max(resp.Pagination.Pages, 1))
	return nil
}

// GetUnreadCount displays the count of unread notifications
func (ns *NotificationService) GetUnreadCount(ctx context.Context) error {
	if _, err := ns.authorize(); err != nil {
		return err
	}
	logger.Debug("Getting unread notification count")

	if !ns.store.FetchUnreadCount(ctx) {
		return fmt.Errorf("failed to get unread count")
	}

	count := ns.store.UnreadCount()
	if output.GetOutputFormat() == output.FormatJSON {
		return output.Print("", api.UnreadCountResponse{UnreadCount: count})
	}
	if count == 0 {
		fmt.Fprintln(output.Writer(), "No unread notifications.")
		return nil
	}
	fmt.Fprintf(output.Writer(), "📬 %d unread notification%s\n", count, pluralize(count))
	return nil
}

// MarkNotificationAsRead marks a notification as read
func (ns *NotificationService) MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	if _, err := ns.authorize(); err != nil {
		return err
	}
	logger.Debug("Marking notification as read", "notification_id", notificationID)

	if !ns.store.MarkAsRead(ctx, notificationID) {
		return ErrReported
	}
	output.PrintSuccess("✓ Notification marked as read.")
	return nil
}

// MarkAllAsRead marks all notifications as read, confirming first unless
// force is set
func (ns *NotificationService) MarkAllAsRead(ctx context.Context, force bool) error {
	if _, err := ns.authorize(); err != nil {
		return err
	}
	logger.Debug("Marking all notifications as read")

	if !force {
		confirm, err := ns.Prompt.Confirm("Mark all notifications as read?")
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Fprintln(output.Writer(), "Cancelled.")
			return nil
		}
	}

	if !ns.store.MarkAllAsRead(ctx) {
		return ErrReported
	}
	return nil
}

// DeleteNotification removes a notification
func (ns *NotificationService) DeleteNotification(ctx context.Context, notificationID string) error {
	if _, err := ns.authorize(); err != nil {
		return err
	}
	logger.Debug("Deleting notification", "notification_id", notificationID)

	if !ns.store.DeleteNotification(ctx, notificationID) {
		return ErrReported
	}
	return nil
}

func (ns *NotificationService) rows(notifications []api.Notification) [][]string {
	now := ns.now()
	rows := make([][]string, 0, len(notifications))
	for _, n := range notifications {
		marker := " "
		if !n.Read {
			marker = "●"
		}
		when := n.TimeAgo
		if when == "" {
			when = output.TimeAgo(n.CreatedAt, now)
		}
		rows = append(rows, []string{
			marker,
			n.ID,
			typeLabel(n.Type),
			output.Truncate(n.Title, 32),
			output.Truncate(n.Message, 48),
			when,
		})
	}
	return rows
}

func typeLabel(t api.NotificationType) string {
	switch t {
	case api.NotificationLeadCreated:
		return "New lead"
	case api.NotificationLeadAssigned:
		return "Assigned"
	case api.NotificationLeadStatusChanged:
		return "Status"
	case api.NotificationFollowUpReminder:
		return "Follow-up"
	case api.NotificationSystem:
		return "System"
	}
	return string(t)
}
