// Package notify keeps the client-side view of the user's notifications and
// the unread counter, and polls the backend for new arrivals.
//
// Mutations are optimistic: the local cache is updated first and the server
// is asked to confirm afterward. A failed confirmation is reported but never
// rolled back, so the cache can disagree with the server until the next
// successful fetch.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// DefaultPageSize is the page requested when none is given
const DefaultPageSize = 20

var (
	errNoSession = errors.New("no session token")
	errClosed    = errors.New("notification store closed")
)

// Backend is the part of the API client the store needs
type Backend interface {
	GetNotifications(ctx context.Context, page, limit int) (*api.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context) (int, error)
	MarkNotificationAsRead(ctx context.Context, id string) error
	MarkAllNotificationsAsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// TokenSource reports the stored session token; empty means logged out
type TokenSource interface {
	Token() (string, error)
}

// Reporter receives transient user-facing messages
type Reporter interface {
	Success(msg string)
	Error(msg string)
}

// Alerter is triggered when a new notification arrives
type Alerter interface {
	Alert()
}

// Options wires a Store
type Options struct {
	Backend  Backend
	Tokens   TokenSource
	Reporter Reporter
	Alerter  Alerter
	Metrics  *Metrics
	Now      func() time.Time
}

// Store owns the notification cache and unread counter for one session.
// All state is guarded by mu; network calls are made without holding it.
type Store struct {
	backend  Backend
	tokens   TokenSource
	reporter Reporter
	alerter  Alerter
	metrics  *Metrics
	now      func() time.Time

	mu            sync.Mutex
	notifications []api.Notification
	unreadCount   int
	loading       int
	closed        bool
}

// NewStore builds an empty store
func NewStore(opts Options) *Store {
	s := &Store{
		backend:  opts.Backend,
		tokens:   opts.Tokens,
		reporter: opts.Reporter,
		alerter:  opts.Alerter,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.reporter == nil {
		s.reporter = nopReporter{}
	}
	if s.alerter == nil {
		s.alerter = nopAlerter{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Fetch requests a page of notifications and replaces the cache with it.
// Without a session token it returns nil and makes no request. On failure
// the cache is left as it was, the error is reported and nil is returned.
func (s *Store) Fetch(ctx context.Context, page, limit int) *api.NotificationListResponse {
	resp, err := s.fetch(ctx, page, limit)
	if err != nil {
		if !errors.Is(err, errNoSession) && !errors.Is(err, errClosed) {
			s.reporter.Error("Failed to load notifications")
		}
		return nil
	}
	return resp
}

// fetch is Fetch without the user-facing report, so the poller can decide
// how loudly to complain.
func (s *Store) fetch(ctx context.Context, page, limit int) (*api.NotificationListResponse, error) {
	if !s.hasSession() {
		return nil, errNoSession
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}

	s.setLoading(true)
	defer s.setLoading(false)

	resp, err := s.backend.GetNotifications(ctx, page, limit)
	if err != nil {
		logger.Error("Error fetching notifications", "error", err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	s.notifications = append([]api.Notification(nil), resp.Notifications...)
	s.unreadCount = max(resp.Pagination.UnreadCount, 0)
	s.observeUnread()
	return resp, nil
}

// FetchUnreadCount refreshes only the counter and reports whether it did.
// Failures are logged, not reported.
func (s *Store) FetchUnreadCount(ctx context.Context) bool {
	if !s.hasSession() {
		return false
	}

	count, err := s.backend.GetUnreadCount(ctx)
	if err != nil {
		logger.Error("Error fetching unread count", "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.unreadCount = max(count, 0)
	s.observeUnread()
	return true
}

// MarkAsRead marks one notification read locally, then confirms with the
// server. The counter is decremented unless the cached copy was already read.
func (s *Store) MarkAsRead(ctx context.Context, id string) bool {
	if !s.hasSession() {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	decrement := true
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.ID != id {
			continue
		}
		if n.Read {
			decrement = false
			break
		}
		readAt := s.now()
		n.Read = true
		n.ReadAt = &readAt
		break
	}
	if decrement {
		s.unreadCount = max(s.unreadCount-1, 0)
	}
	s.observeUnread()
	s.mu.Unlock()

	if err := s.backend.MarkNotificationAsRead(ctx, id); err != nil {
		logger.Error("Error marking notification as read", "notification_id", id, "error", err)
		s.reporter.Error("Failed to mark notification as read")
		return false
	}
	return true
}

// MarkAllAsRead marks every cached notification read and zeroes the counter,
// then confirms with the server.
func (s *Store) MarkAllAsRead(ctx context.Context) bool {
	if !s.hasSession() {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	readAt := s.now()
	for i := range s.notifications {
		n := &s.notifications[i]
		if n.Read {
			continue
		}
		n.Read = true
		n.ReadAt = &readAt
	}
	s.unreadCount = 0
	s.observeUnread()
	s.mu.Unlock()

	if err := s.backend.MarkAllNotificationsAsRead(ctx); err != nil {
		logger.Error("Error marking all notifications as read", "error", err)
		s.reporter.Error("Failed to mark all notifications as read")
		return false
	}
	s.reporter.Success("All notifications marked as read")
	return true
}

// DeleteNotification drops a notification from the cache, then confirms with
// the server. Only an unread cached item moves the counter.
func (s *Store) DeleteNotification(ctx context.Context, id string) bool {
	if !s.hasSession() {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.ID == id {
			if !n.Read {
				s.unreadCount = max(s.unreadCount-1, 0)
			}
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	s.observeUnread()
	s.mu.Unlock()

	if err := s.backend.DeleteNotification(ctx, id); err != nil {
		logger.Error("Error deleting notification", "notification_id", id, "error", err)
		s.reporter.Error("Failed to delete notification")
		return false
	}
	s.reporter.Success("Notification deleted")
	return true
}

// AddNotification prepends a pushed notification and sounds the alert.
// Ids already in the cache are ignored so a push and a poll of the same item
// count once.
func (s *Store) AddNotification(n api.Notification) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	for _, existing := range s.notifications {
		if n.ID != "" && existing.ID == n.ID {
			s.mu.Unlock()
			return false
		}
	}
	s.notifications = append([]api.Notification{n}, s.notifications...)
	if !n.Read {
		s.unreadCount++
	}
	s.observeUnread()
	s.mu.Unlock()

	s.alert()
	return true
}

// Notifications returns a copy of the cache, most recent first
func (s *Store) Notifications() []api.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Notification(nil), s.notifications...)
}

// UnreadCount returns the locally adjusted unread counter
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadCount
}

// Loading reports whether a fetch is in progress
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Close clears the cache. Responses that arrive afterward are discarded.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.notifications = nil
	s.unreadCount = 0
	s.loading = 0
	s.observeUnread()
}

// Closed reports whether Close has been called
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) alert() {
	if s.metrics != nil {
		s.metrics.AlertsTotal.Inc()
	}
	s.alerter.Alert()
}

func (s *Store) hasSession() bool {
	if s.tokens == nil {
		return false
	}
	token, err := s.tokens.Token()
	if err != nil {
		logger.Warn("Could not read session token", "error", err)
		return false
	}
	return token != ""
}

func (s *Store) setLoading(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.loading++
	} else if s.loading > 0 {
		s.loading--
	}
}

// observeUnread must be called with mu held
func (s *Store) observeUnread() {
	if s.metrics != nil {
		s.metrics.UnreadCount.Set(float64(s.unreadCount))
	}
}

type nopReporter struct{}

func (nopReporter) Success(string) {}
func (nopReporter) Error(string)   {}

type nopAlerter struct{}

func (nopAlerter) Alert() {}
