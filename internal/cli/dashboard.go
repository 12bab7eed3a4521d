package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/monitor"
	"github.com/rileyhilliard/envdash/internal/schedule"
	"github.com/rileyhilliard/envdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the live telemetry dashboard",
	Long: `Open the full-screen dashboard: one card per metric, a trend chart of
the last 24 readings, and a detail view with min/max/mean.

The first fetch runs before the screen opens; after that the feed is polled
every refresh interval in the background.

Keyboard shortcuts:
  q / Ctrl+C   Quit
  r            Refresh now
  left/right   Select card
  1-4          Open a card's detail view
  Enter / Esc  Open / close the detail view
  p            Toggle particles
  ?            Show help

Examples:
  envdash dashboard
  envdash dashboard --interval 1m --no-particles`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, dashFlags)
	},
}

func init() {
	addDashboardFlags(dashboardCmd, &dashFlags)
	rootCmd.AddCommand(dashboardCmd)
}

// requireTerminal fails unless fd is an interactive terminal.
func requireTerminal(fd uintptr) error {
	if term.IsTerminal(int(fd)) {
		return nil
	}
	return errors.New(errors.ErrConfig,
		"The dashboard needs an interactive terminal",
		"Use 'envdash snapshot' for a one-off reading or 'envdash serve' for headless use")
}

func runDashboard(cmd *cobra.Command, flags DashboardFlags) error {
	if err := requireTerminal(os.Stdout.Fd()); err != nil {
		return err
	}

	// The screen belongs to the dashboard, so logs only go to a file.
	a, err := loadApp(io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	interval, err := ParseInterval(flags.Interval, a.cfg.Refresh)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cycle := a.newCycle()
	task := schedule.New(interval, cycle.Run,
		schedule.WithLogger(a.log),
		schedule.WithName("feed"))

	opts := monitor.DefaultOptions()
	opts.Interval = interval
	opts.ShowTrend = !flags.NoTrend
	opts.Particles = !flags.NoParticles
	opts.Animate = !flags.NoAnimate
	opts.Refresh = task.Trigger
	opts.Seed = uint64(time.Now().UnixNano())

	model, err := monitor.NewModel(opts)
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner(os.Stderr, "Fetching channel "+a.cfg.Channel.ID)
	spinner.Start()
	initialErr := task.RunOnce(ctx)
	if initialErr != nil {
		spinner.Fail("")
	} else {
		spinner.Success()
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Send blocks until the program is running, so the first result is
	// delivered from a goroutine and observers are registered only now.
	go p.Send(initialMessage(cycle.State(), initialErr))
	cycle.Observe(func(_ context.Context, snap *feed.Snapshot) {
		p.Send(monitor.SnapshotMsg{Snapshot: snap})
	})

	if err := task.Start(ctx); err != nil {
		return err
	}
	defer task.Stop()

	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "Dashboard exited with an error")
	}
	return nil
}

// initialMessage turns the startup cycle's outcome into the dashboard's
// first message.
func initialMessage(state *feed.State, err error) tea.Msg {
	if err != nil {
		return monitor.FetchErrMsg{Err: err, Initial: true}
	}
	return monitor.SnapshotMsg{Snapshot: state.Load()}
}
