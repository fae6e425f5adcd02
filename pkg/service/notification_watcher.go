package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/notify"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/websocket"
)

// WatchOptions configures a notification watch
type WatchOptions struct {
	Interval time.Duration
	PageSize int
	// StreamURL enables the push stream alongside polling when set.
	StreamURL string
	// MetricsAddr serves Gatherer on /metrics when set.
	MetricsAddr string
	Gatherer    prometheus.Gatherer
	// Input accepts "r" to refresh now and "q" to quit, one per line.
	Input io.Reader
	// Ready is called once polling has started.
	Ready func()
}

// Watch polls for new notifications until ctx is done, printing arrivals as
// they are detected.
func (ns *NotificationService) Watch(ctx context.Context, opts WatchOptions) error {
	ident, err := ns.authorize()
	if err != nil {
		return err
	}
	logger.Debug("Starting notification watcher", "interval", opts.Interval, "stream", opts.StreamURL != "")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	poller := notify.NewPoller(ns.store, notify.PollerOptions{
		Interval: opts.Interval,
		PageSize: opts.PageSize,
		OnNew: func(arrived []api.Notification) {
			for _, n := range arrived {
				ns.displayEvent(n)
			}
		},
	})

	if opts.MetricsAddr != "" {
		_, stop, err := serveMetrics(opts.MetricsAddr, opts.Gatherer)
		if err != nil {
			return err
		}
		defer stop()
	}

	if opts.StreamURL != "" {
		stream := websocket.NewClient(websocket.DefaultConfig(opts.StreamURL))
		unsub := stream.OnNotification(func(n api.Notification) {
			if ns.store.AddNotification(n) {
				poller.Seen(n.ID)
				ns.displayEvent(n)
			}
		})
		defer unsub()

		token, err := ns.Tokens.Token()
		if err == nil {
			err = stream.Connect(token)
		}
		if err != nil {
			logger.Warn("Notification stream unavailable, polling only", "error", err)
		} else {
			defer stream.Disconnect()
		}
	}

	fmt.Fprintln(output.Writer())
	output.PrintInfo("🔔 Watching for notifications")
	fmt.Fprintf(output.Writer(), "Signed in as: %s (%s)\n", displayName(ident), ident.Role.Label())
	fmt.Fprintf(output.Writer(), "Checking every %s. Press Ctrl+C to stop\n", pollInterval(opts.Interval))
	fmt.Fprintf(output.Writer(), "%s\n\n", strings.Repeat("─", 60))

	poller.Start(ctx)
	if opts.Input != nil {
		go readCommands(opts.Input, poller.Refresh, cancel)
	}
	if opts.Ready != nil {
		opts.Ready()
	}

	<-ctx.Done()
	poller.Stop()
	poller.Wait()
	ns.store.Close()

	ns.printMu.Lock()
	defer ns.printMu.Unlock()
	fmt.Fprintln(output.Writer())
	output.PrintSuccess("Notification watcher stopped")
	return nil
}

func (ns *NotificationService) displayEvent(n api.Notification) {
	ns.printMu.Lock()
	defer ns.printMu.Unlock()

	timestamp := output.FormatDateTime(n.CreatedAt)
	if n.CreatedAt.IsZero() {
		timestamp = output.FormatDateTime(ns.now())
	}
	fmt.Fprintf(output.Writer(), "[%s] 📬 %s: %s\n", timestamp, typeLabel(n.Type), n.Title)
	if n.Message != "" {
		fmt.Fprintf(output.Writer(), "    %s\n", n.Message)
	}
}

// readCommands handles single-letter commands typed while watching
func readCommands(in io.Reader, refresh, quit func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "r":
			refresh()
		case "q":
			quit()
			return
		}
	}
}

// serveMetrics exposes g on addr and returns the bound address and a
// function that shuts the server down
func serveMetrics(addr string, g prometheus.Gatherer) (net.Addr, func(), error) {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen for metrics on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", ln.Addr().String())

	return ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}, nil
}

func pollInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return notify.DefaultPollInterval
	}
	return d
}
