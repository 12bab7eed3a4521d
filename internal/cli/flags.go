package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/spf13/cobra"
)

// DashboardFlags holds the dashboard's display switches.
type DashboardFlags struct {
	Interval    string
	NoParticles bool
	NoTrend     bool
	NoAnimate   bool
}

var dashFlags DashboardFlags

// addDashboardFlags registers the dashboard flags on cmd. The root command
// and the dashboard subcommand share one set of values.
func addDashboardFlags(cmd *cobra.Command, flags *DashboardFlags) {
	cmd.Flags().StringVar(&flags.Interval, "interval", "", "refresh interval (e.g., 30s, 1m); overrides 'refresh' in the config")
	cmd.Flags().BoolVar(&flags.NoParticles, "no-particles", false, "hide the particle strip")
	cmd.Flags().BoolVar(&flags.NoTrend, "no-trend", false, "hide the trend chart")
	cmd.Flags().BoolVar(&flags.NoAnimate, "no-animate", false, "disable value easing and transitions")
}

// ParseInterval parses a refresh interval flag. Empty returns fallback.
func ParseInterval(flag string, fallback time.Duration) (time.Duration, error) {
	if flag == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 30s, 1m, or 5m.")
	}
	if d < config.MinRefresh {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s.", config.MinRefresh))
	}
	return d, nil
}
