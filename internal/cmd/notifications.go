package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Saad0095/leaders-tax-cli/pkg/alert"
	"github.com/Saad0095/leaders-tax-cli/pkg/config"
	"github.com/Saad0095/leaders-tax-cli/pkg/notify"
	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/service"
)

var (
	notifPage     int
	notifPageSize int
	notifForce    bool

	watchInterval    time.Duration
	watchMetricsAddr string
	watchNoInput     bool
	watchNoStream    bool
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Notification commands",
	Long:    "View and manage notifications",
}

// newNotificationService builds the service over a fresh store. Watch passes
// an alerter and metrics; one-shot commands need neither.
func newNotificationService(alerter notify.Alerter, metrics *notify.Metrics) *service.NotificationService {
	store := notify.NewStore(notify.Options{
		Backend:  deps.API,
		Tokens:   deps.Tokens,
		Reporter: output.Toasts{},
		Alerter:  alerter,
		Metrics:  metrics,
	})
	return service.NewNotificationService(deps, store)
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		pageSize := notifPageSize
		if pageSize <= 0 {
			pageSize = config.Notifications().PageSize
		}
		return newNotificationService(nil, nil).ListNotifications(cmd.Context(), notifPage, pageSize)
	},
}

var notificationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show unread notification count",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService(nil, nil).GetUnreadCount(cmd.Context())
	},
}

var notificationsMarkReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService(nil, nil).MarkNotificationAsRead(cmd.Context(), args[0])
	},
}

var notificationsMarkAllReadCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService(nil, nil).MarkAllAsRead(cmd.Context(), notifForce)
	},
}

var notificationsDeleteCmd = &cobra.Command{
	Use:   "delete <notification-id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newNotificationService(nil, nil).DeleteNotification(cmd.Context(), args[0])
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch for new notifications",
	Long: `Poll for new notifications and announce each arrival with a sound.
When notifications.stream_url is configured, pushed notifications are shown
as they arrive. Type "r" and Enter to check now, "q" to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		settings := config.Notifications()
		reg := prometheus.NewRegistry()
		metrics := notify.NewMetrics(reg)
		svc := newNotificationService(alert.New(settings, os.Stdout), metrics)

		interval := watchInterval
		if interval <= 0 {
			interval = settings.PollInterval
		}
		opts := service.WatchOptions{
			Interval:    interval,
			PageSize:    settings.PageSize,
			MetricsAddr: watchMetricsAddr,
			Gatherer:    reg,
		}
		if !watchNoStream {
			opts.StreamURL = settings.StreamURL
		}
		if !watchNoInput {
			opts.Input = os.Stdin
		}
		return svc.Watch(ctx, opts)
	},
}

func init() {
	notificationsListCmd.Flags().IntVar(&notifPage, "page", 1, "Page number")
	notificationsListCmd.Flags().IntVar(&notifPageSize, "limit", 0, "Results per page (default from config)")

	notificationsMarkAllReadCmd.Flags().BoolVarP(&notifForce, "yes", "y", false, "Skip confirmation")

	notificationsWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Poll interval (default from config)")
	notificationsWatchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	notificationsWatchCmd.Flags().BoolVar(&watchNoInput, "no-input", false, "Ignore keyboard commands")
	notificationsWatchCmd.Flags().BoolVar(&watchNoStream, "no-stream", false, "Poll only, even when a stream URL is configured")

	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsCountCmd)
	notificationsCmd.AddCommand(notificationsMarkReadCmd)
	notificationsCmd.AddCommand(notificationsMarkAllReadCmd)
	notificationsCmd.AddCommand(notificationsDeleteCmd)
	notificationsCmd.AddCommand(notificationsWatchCmd)
}
