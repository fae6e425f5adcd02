package api

import (
	"context"
	"strconv"

	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// GetNotifications retrieves one page of notifications, most recent first
func (c *Client) GetNotifications(ctx context.Context, page, limit int) (*NotificationListResponse, error) {
	logger.Debug("Fetching notifications", "page", page, "limit", limit)

	var response NotificationListResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		}).
		SetResult(&response).
		Get("/api/notifications")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetUnreadCount retrieves the count of unread notifications
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	logger.Debug("Fetching unread notification count")

	var response UnreadCountResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&response).
		Get("/api/notifications/unread-count")

	if err := CheckResponse(resp, err); err != nil {
		return 0, err
	}

	return response.UnreadCount, nil
}

// MarkNotificationAsRead marks a single notification as read
func (c *Client) MarkNotificationAsRead(ctx context.Context, id string) error {
	logger.Debug("Marking notification as read", "notification_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Post("/api/notifications/{id}/mark-read")

	return CheckResponse(resp, err)
}

// MarkAllNotificationsAsRead marks all notifications as read
func (c *Client) MarkAllNotificationsAsRead(ctx context.Context) error {
	logger.Debug("Marking all notifications as read")

	resp, err := c.http.R().
		SetContext(ctx).
		Post("/api/notifications/mark-all-read")

	return CheckResponse(resp, err)
}

// DeleteNotification removes a notification
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	logger.Debug("Deleting notification", "notification_id", id)

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/notifications/{id}")

	return CheckResponse(resp, err)
}
