package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// DefaultPollInterval is used when PollerOptions.Interval is not positive
const DefaultPollInterval = 15 * time.Second

// State is the poller's position in its loop
type State int32

const (
	Idle State = iota
	Polling
	Suppressed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case Suppressed:
		return "suppressed"
	}
	return "unknown"
}

// PollerOptions configures a Poller
type PollerOptions struct {
	Interval time.Duration
	PageSize int
	// OnNew receives the items that appeared ahead of the previously newest
	// one. It is never called for the first poll.
	OnNew func([]api.Notification)
}

// Poller refreshes a Store on a fixed interval and raises the store's alert
// when the newest notification changes between polls.
type Poller struct {
	store    *Store
	interval time.Duration
	pageSize int
	onNew    func([]api.Notification)

	state    atomic.Int32
	inFlight atomic.Bool
	stopped  atomic.Bool

	mu       sync.Mutex
	newestID string
	polled   bool
	failing  bool

	refreshCh chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once
	startOnce sync.Once
	loopWG    sync.WaitGroup
	pollWG    sync.WaitGroup
}

// NewPoller creates a poller for store
func NewPoller(store *Store, opts PollerOptions) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Poller{
		store:     store,
		interval:  opts.Interval,
		pageSize:  opts.PageSize,
		onNew:     opts.OnNew,
		refreshCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start polls immediately and then on every interval until ctx is done or
// Stop is called. Calling Start more than once has no effect.
func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.loopWG.Add(1)
		go p.loop(ctx)
	})
}

func (p *Poller) loop(ctx context.Context) {
	defer p.loopWG.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Notification poller stopped", "reason", ctx.Err())
			return
		case <-p.stopCh:
			logger.Debug("Notification poller stopped")
			return
		case <-ticker.C:
			p.Tick(ctx)
		case <-p.refreshCh:
			p.Tick(ctx)
		}
	}
}

// Refresh asks the loop to poll now instead of waiting for the next tick
func (p *Poller) Refresh() {
	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// Seen records id as the newest notification already announced, typically
// by a push, so the next poll does not alert for it again.
func (p *Poller) Seen(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	p.newestID = id
	p.mu.Unlock()
}

// Stop ends the loop. A fetch already in flight is allowed to finish, but
// its result no longer raises alerts.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		p.stopped.Store(true)
		close(p.stopCh)
	})
	p.loopWG.Wait()
}

// Wait blocks until polls already in flight have finished
func (p *Poller) Wait() {
	p.pollWG.Wait()
}

// State reports what the poller is doing
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Tick starts one poll in the background. It returns false without
// contacting the server when a poll is already in flight or there is no
// session.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.store.hasSession() {
		if !p.inFlight.Load() {
			p.state.Store(int32(Suppressed))
		}
		p.record(ResultSuppressed)
		return false
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		logger.Debug("Notification poll skipped, previous poll still running")
		p.record(ResultSkipped)
		return false
	}
	p.state.Store(int32(Polling))

	// The request outlives cancellation of ctx; the store discards its
	// result once closed.
	pollCtx := context.WithoutCancel(ctx)
	p.pollWG.Add(1)
	go func() {
		defer p.pollWG.Done()
		defer func() {
			p.state.Store(int32(Idle))
			p.inFlight.Store(false)
		}()
		p.poll(pollCtx)
	}()
	return true
}

func (p *Poller) poll(ctx context.Context) {
	start := time.Now()
	resp, err := p.store.fetch(ctx, 1, p.pageSize)
	if p.store.metrics != nil {
		p.store.metrics.PollDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if errors.Is(err, errNoSession) || errors.Is(err, errClosed) {
			p.record(ResultSuppressed)
			return
		}
		p.record(ResultError)
		p.mu.Lock()
		first := !p.failing
		p.failing = true
		p.mu.Unlock()
		if first && !p.stopped.Load() {
			p.store.reporter.Error("Failed to load notifications")
		}
		return
	}
	p.record(ResultOK)

	newest := ""
	if len(resp.Notifications) > 0 {
		newest = resp.Notifications[0].ID
	}

	p.mu.Lock()
	p.failing = false
	previous, firstPoll := p.newestID, !p.polled
	p.newestID = newest
	p.polled = true
	p.mu.Unlock()

	if firstPoll || newest == "" || newest == previous || p.stopped.Load() {
		return
	}

	logger.Info("New notification", "notification_id", newest)
	p.store.alert()
	if p.onNew != nil {
		p.onNew(arrivedSince(resp.Notifications, previous))
	}
}

// arrivedSince returns the items ahead of the one with id previous, or the
// whole page when previous is no longer on it.
func arrivedSince(page []api.Notification, previous string) []api.Notification {
	for i, n := range page {
		if n.ID == previous {
			return page[:i]
		}
	}
	return page
}

func (p *Poller) record(result string) {
	if p.store.metrics != nil {
		p.store.metrics.PollsTotal.WithLabelValues(result).Inc()
	}
}
