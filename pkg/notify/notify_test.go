package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
)

// fakeBackend serves a configurable page and counts calls. When gate is
// set, GetNotifications blocks until it receives a value.
type fakeBackend struct {
	mu          sync.Mutex
	page        []api.Notification
	unread      int
	fetchErr    error
	mutationErr error
	gate        chan struct{}

	fetches   atomic.Int32
	counts    atomic.Int32
	mutations []string
}

func (f *fakeBackend) setPage(page []api.Notification, unread int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.page = page
	f.unread = unread
}

func (f *fakeBackend) setFetchErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func (f *fakeBackend) GetNotifications(ctx context.Context, page, limit int) (*api.NotificationListResponse, error) {
	f.fetches.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &api.NotificationListResponse{
		Notifications: append([]api.Notification(nil), f.page...),
		Pagination:    api.Pagination{Page: page, Limit: limit, Total: len(f.page), UnreadCount: f.unread},
	}, nil
}

func (f *fakeBackend) GetUnreadCount(ctx context.Context) (int, error) {
	f.counts.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return 0, f.fetchErr
	}
	return f.unread, nil
}

func (f *fakeBackend) mutate(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutations = append(f.mutations, call)
	return f.mutationErr
}

func (f *fakeBackend) MarkNotificationAsRead(ctx context.Context, id string) error {
	return f.mutate("read " + id)
}

func (f *fakeBackend) MarkAllNotificationsAsRead(ctx context.Context) error {
	return f.mutate("read-all")
}

func (f *fakeBackend) DeleteNotification(ctx context.Context, id string) error {
	return f.mutate("delete " + id)
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.mutations...)
}

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

type brokenTokens struct{}

func (brokenTokens) Token() (string, error) { return "", errors.New("keyring locked") }

type recordingReporter struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *recordingReporter) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recordingReporter) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *recordingReporter) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

type countingAlerter struct{ n atomic.Int32 }

func (c *countingAlerter) Alert() { c.n.Add(1) }

func notification(id string, read bool, created time.Time) api.Notification {
	n := api.Notification{
		ID:        id,
		Type:      api.NotificationLeadAssigned,
		Title:     gofakeit.Sentence(3),
		Message:   gofakeit.Sentence(8),
		Read:      read,
		CreatedAt: created,
		Priority:  api.PriorityMedium,
	}
	if read {
		at := created.Add(time.Minute)
		n.ReadAt = &at
	}
	return n
}

// threeItems is a page of three, most recent first, with the first two unread.
func threeItems() []api.Notification {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []api.Notification{
		notification("n3", false, base.Add(2*time.Hour)),
		notification("n2", false, base.Add(time.Hour)),
		notification("n1", true, base),
	}
}

type fixture struct {
	backend  *fakeBackend
	reporter *recordingReporter
	alerter  *countingAlerter
	store    *Store
	now      time.Time
}

func newFixture(token string) *fixture {
	f := &fixture{
		backend:  &fakeBackend{},
		reporter: &recordingReporter{},
		alerter:  &countingAlerter{},
		now:      time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	f.store = NewStore(Options{
		Backend:  f.backend,
		Tokens:   staticTokens(token),
		Reporter: f.reporter,
		Alerter:  f.alerter,
		Now:      func() time.Time { return f.now },
	})
	return f
}
