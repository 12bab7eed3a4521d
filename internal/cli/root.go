package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/rileyhilliard/envdash/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile      string
	logLevelFlag string
	logFileFlag  string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "envdash",
	Short: "Live environmental telemetry dashboard",
	Long: `envdash polls a ThingSpeak channel and shows temperature, humidity,
pressure and air quality with live status classification.

Run without a subcommand to open the dashboard.

Examples:
  envdash
  envdash snapshot --json
  envdash serve --addr :9090`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, dashFlags)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./.envdash.yaml, then ~/.config/envdash/config.yaml)")
	pf.StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFileFlag, "log-file", "", "append logs to this file")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")

	addDashboardFlags(rootCmd, &dashFlags)
}

// exitError carries an exit status for failures already reported to the
// user, so Execute does not print them a second time.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
