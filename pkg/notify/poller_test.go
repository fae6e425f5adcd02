package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// pollOnce runs a single poll to completion
func pollOnce(t *testing.T, p *Poller) {
	t.Helper()
	require.True(t, p.Tick(context.Background()))
	p.Wait()
}

func TestPollerFirstPollNeverAlerts(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})

	pollOnce(t, p)

	assert.Zero(t, f.alerter.n.Load())
	assert.Equal(t, 2, f.store.UnreadCount())
	assert.Len(t, f.store.Notifications(), 3)
}

func TestPollerAlertsWhenNewestChanges(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	var arrived []api.Notification
	p := NewPoller(f.store, PollerOptions{
		Interval: time.Hour,
		OnNew:    func(ns []api.Notification) { arrived = ns },
	})
	pollOnce(t, p)

	page := append([]api.Notification{notification("n5", false, f.now), notification("n4", false, f.now)}, threeItems()...)
	f.backend.setPage(page, 4)
	pollOnce(t, p)

	assert.Equal(t, int32(1), f.alerter.n.Load())
	assert.Equal(t, []string{"n5", "n4"}, ids(arrived))
	assert.Equal(t, 4, f.store.UnreadCount())
}

func TestPollerSameNewestDoesNotAlert(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})

	pollOnce(t, p)
	pollOnce(t, p)

	assert.Zero(t, f.alerter.n.Load())
}

func TestPollerSeenSuppressesPushedArrival(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})
	pollOnce(t, p)

	pushed := notification("n4", false, f.now)
	require.True(t, f.store.AddNotification(pushed))
	p.Seen(pushed.ID)
	f.backend.setPage(append([]api.Notification{pushed}, threeItems()...), 3)
	pollOnce(t, p)

	assert.Equal(t, int32(1), f.alerter.n.Load(), "only the push alerts")
	assert.Equal(t, 3, f.store.UnreadCount())
}

func TestPollerEmptyFirstPollThenArrival(t *testing.T) {
	f := newFixture("tok")
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})
	pollOnce(t, p)

	f.backend.setPage([]api.Notification{notification("first", false, f.now)}, 1)
	pollOnce(t, p)

	assert.Equal(t, int32(1), f.alerter.n.Load())
}

func TestPollerSkipsWhileInFlight(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	f.backend.gate = make(chan struct{})
	p := NewPoller(f.store, PollerOptions{Interval: 10 * time.Millisecond})

	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return f.backend.fetches.Load() == 1 }, waitFor, tick)
	assert.Equal(t, Polling, p.State())

	// Several ticks fire while the first fetch is stuck.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), f.backend.fetches.Load())
	assert.False(t, p.Tick(context.Background()))

	close(f.backend.gate)
	assert.Eventually(t, func() bool { return f.backend.fetches.Load() >= 2 }, waitFor, tick)
}

func TestPollerWithoutTokenIsSuppressed(t *testing.T) {
	f := newFixture("")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: 10 * time.Millisecond})

	p.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	assert.Zero(t, f.backend.fetches.Load())
	assert.Zero(t, f.store.UnreadCount())
	assert.Equal(t, Suppressed, p.State())
}

func TestPollerReportsOncePerFailureStreak(t *testing.T) {
	f := newFixture("tok")
	f.backend.setFetchErr(errors.New("connection refused"))
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})

	pollOnce(t, p)
	pollOnce(t, p)
	pollOnce(t, p)
	assert.Equal(t, 1, f.reporter.errorCount())

	f.backend.setFetchErr(nil)
	f.backend.setPage(threeItems(), 2)
	pollOnce(t, p)

	f.backend.setFetchErr(errors.New("again"))
	pollOnce(t, p)
	assert.Equal(t, 2, f.reporter.errorCount())
}

func TestPollerFailureDoesNotResetNewest(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})
	pollOnce(t, p)

	f.backend.setFetchErr(errors.New("blip"))
	pollOnce(t, p)
	f.backend.setFetchErr(nil)
	pollOnce(t, p)

	assert.Zero(t, f.alerter.n.Load())
}

func TestPollerStopDiscardsLateResult(t *testing.T) {
	f := newFixture("tok")
	f.backend.setPage(threeItems(), 2)
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})
	pollOnce(t, p)

	f.backend.gate = make(chan struct{})
	f.backend.setPage(append([]api.Notification{notification("late", false, f.now)}, threeItems()...), 3)
	require.True(t, p.Tick(context.Background()))
	assert.Eventually(t, func() bool { return f.backend.fetches.Load() == 2 }, waitFor, tick)

	p.Stop()
	f.store.Close()
	close(f.backend.gate)
	p.Wait()

	assert.Zero(t, f.alerter.n.Load())
	assert.Empty(t, f.store.Notifications())
	assert.Zero(t, f.store.UnreadCount())
}

func TestPollerContextCancelStopsLoop(t *testing.T) {
	f := newFixture("tok")
	p := NewPoller(f.store, PollerOptions{Interval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)
	assert.Eventually(t, func() bool { return f.backend.fetches.Load() >= 1 }, waitFor, tick)
	cancel()
	p.Stop()
	p.Wait()
	after := f.backend.fetches.Load()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, f.backend.fetches.Load())
}

func TestPollerRefresh(t *testing.T) {
	f := newFixture("tok")
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})

	p.Start(context.Background())
	defer p.Stop()
	assert.Eventually(t, func() bool { return f.backend.fetches.Load() == 1 }, waitFor, tick)
	p.Wait()

	p.Refresh()
	assert.Eventually(t, func() bool { return f.backend.fetches.Load() == 2 }, waitFor, tick)
}

func TestPollerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	backend := &fakeBackend{}
	backend.setPage(threeItems(), 2)
	store := NewStore(Options{Backend: backend, Tokens: staticTokens("tok"), Metrics: NewMetrics(reg)})
	p := NewPoller(store, PollerOptions{Interval: time.Hour})

	pollOnce(t, p)
	backend.setFetchErr(errors.New("down"))
	pollOnce(t, p)

	assert.Equal(t, float64(1), metricValue(t, reg, "leaders_notification_polls_total", ResultOK))
	assert.Equal(t, float64(1), metricValue(t, reg, "leaders_notification_polls_total", ResultError))
}

func TestPollerConcurrentTicks(t *testing.T) {
	f := newFixture("tok")
	f.backend.gate = make(chan struct{})
	p := NewPoller(f.store, PollerOptions{Interval: time.Hour})

	var started sync.WaitGroup
	results := make(chan bool, 20)
	for i := 0; i < 20; i++ {
		started.Add(1)
		go func() {
			defer started.Done()
			results <- p.Tick(context.Background())
		}()
	}
	started.Wait()
	close(results)
	close(f.backend.gate)
	p.Wait()

	accepted := 0
	for ok := range results {
		if ok {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, int32(1), f.backend.fetches.Load())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "polling", Polling.String())
	assert.Equal(t, "suppressed", Suppressed.String())
}
