package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rileyhilliard/envdash/internal/alert"
	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/httpapi"
	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/rileyhilliard/envdash/internal/schedule"
	"github.com/spf13/cobra"
)

const mqttConnectTimeout = 10 * time.Second

var (
	serveAddrFlag     string
	serveIntervalFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the feed headlessly and serve a JSON status API",
	Long: `Poll the channel on the refresh interval without a screen, expose the
latest readings over HTTP, and publish status changes to MQTT when a broker
is configured.

Endpoints:
  GET /healthz
  GET /api/snapshot
  GET /api/metrics/{metric}

Examples:
  envdash serve
  envdash serve --addr 127.0.0.1:9090 --interval 1m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		if serveAddrFlag != "" {
			a.cfg.Serve.Addr = serveAddrFlag
		}
		interval, err := ParseInterval(serveIntervalFlag, a.cfg.Refresh)
		if err != nil {
			return err
		}
		a.cfg.Refresh = interval

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, a)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "listen address (default from serve.addr, \":8080\")")
	serveCmd.Flags().StringVar(&serveIntervalFlag, "interval", "", "refresh interval (e.g., 30s, 1m)")
	rootCmd.AddCommand(serveCmd)
}

// runServe runs the scheduler, alerting and status API until ctx is done.
// A failed initial fetch is logged, not fatal: the API answers 503 until a
// cycle succeeds.
func runServe(ctx context.Context, a *app) error {
	cycle := a.newCycle()

	pub := newPublisher(ctx, a.cfg.Alerts.MQTT, a.log)
	defer pub.Close()
	cycle.Observe(alert.NewTracker(pub, a.log).Observe)

	task := schedule.New(a.cfg.Refresh, cycle.Run,
		schedule.WithLogger(a.log),
		schedule.WithName("feed"))

	if err := task.RunOnce(ctx); err != nil {
		a.log.Warn("initial fetch failed: %s", errors.Summary(err))
	}
	if err := task.Start(ctx); err != nil {
		return err
	}
	defer task.Stop()

	a.log.Info("polling channel %s every %s", a.cfg.Channel.ID, a.cfg.Refresh)
	return httpapi.New(cycle.State(), a.cfg.Serve, a.log).ListenAndServe(ctx)
}

// newPublisher connects to the configured broker, or logs transitions when
// none is set. A broker that is down at startup keeps retrying in the
// background.
func newPublisher(ctx context.Context, cfg config.MQTTConfig, log logger.Logger) alert.Publisher {
	if !cfg.Enabled() {
		log.Debug("no MQTT broker configured, alerts go to the log")
		return alert.NewLogPublisher(log)
	}

	pub := alert.NewMQTTPublisher(cfg, log)
	connectCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
	defer cancel()
	if err := pub.Connect(connectCtx); err != nil {
		log.Warn("MQTT broker %s not reachable yet: %s", cfg.Broker, errors.Summary(err))
	}
	return pub
}
