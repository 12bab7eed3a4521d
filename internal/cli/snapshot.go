package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
	"github.com/rileyhilliard/envdash/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var snapshotJSON bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch once and print the current readings",
	Long: `Fetch the channel feed once and print each metric's latest value,
status, and min/max/mean over the last 24 readings.

Exits non-zero if the fetch fails.

Examples:
  envdash snapshot
  envdash snapshot --json | jq '.data.metrics[] | select(.level != "normal")'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		var progress io.Writer
		if !snapshotJSON && term.IsTerminal(int(os.Stderr.Fd())) {
			progress = os.Stderr
		}
		return runSnapshot(cmd.Context(), a.newClient(), a.cfg.Channel.ID, cmd.OutOrStdout(), progress, snapshotJSON)
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "output JSON")
	rootCmd.AddCommand(snapshotCmd)
}

// SnapshotReport is the snapshot command's output.
type SnapshotReport struct {
	Channel   string         `json:"channel"`
	ChannelID int            `json:"channel_id"`
	FetchedAt time.Time      `json:"fetched_at"`
	ReadingAt *time.Time     `json:"reading_at,omitempty"`
	EntryID   int            `json:"entry_id,omitempty"`
	Window    int            `json:"window"`
	Metrics   []MetricReport `json:"metrics"`
}

// MetricReport is one metric's line in a SnapshotReport.
type MetricReport struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Unit   string  `json:"unit"`
	Value  float64 `json:"value"`
	Level  string  `json:"level"`
	Status string  `json:"status"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// runSnapshot fetches once from src and writes the report to out. progress
// receives the spinner and may be nil.
func runSnapshot(ctx context.Context, src feed.Source, channelID string, out, progress io.Writer, jsonOut bool) error {
	spinner := ui.NewSpinner(progress, "Fetching channel "+channelID)
	spinner.Start()

	snap, err := src.Fetch(ctx)
	if err != nil {
		spinner.Fail("")
		if jsonOut {
			if werr := WriteJSONFromError(out, err); werr != nil {
				return werr
			}
			return &exitError{code: 1}
		}
		return err
	}
	spinner.Success()

	report := BuildSnapshotReport(snap)
	if jsonOut {
		return WriteJSONSuccess(out, report)
	}
	renderSnapshot(out, report)
	return nil
}

// BuildSnapshotReport classifies the latest reading and summarises the window.
func BuildSnapshotReport(snap *feed.Snapshot) SnapshotReport {
	report := SnapshotReport{
		Channel:   snap.Channel.Name,
		ChannelID: snap.Channel.ID,
		FetchedAt: snap.FetchedAt,
		Window:    len(snap.Window(feed.WindowSize)),
		Metrics:   []MetricReport{},
	}

	latest, ok := snap.Latest()
	if !ok {
		return report
	}
	at := latest.Time
	report.ReadingAt = &at
	report.EntryID = latest.EntryID

	for _, m := range threshold.All {
		st := threshold.Classify(m, latest.Value(m))
		mr := MetricReport{
			Metric: m.String(),
			Label:  m.Label(),
			Unit:   m.Unit(),
			Value:  latest.Value(m),
			Level:  st.Level.String(),
			Status: st.Label,
		}
		if ws, err := snap.WindowStats(m, feed.WindowSize); err == nil {
			mr.Min, mr.Max, mr.Mean = ws.Min, ws.Max, ws.Mean
		}
		report.Metrics = append(report.Metrics, mr)
	}
	return report
}

func renderSnapshot(w io.Writer, r SnapshotReport) {
	name := r.Channel
	if name == "" {
		name = fmt.Sprintf("channel %d", r.ChannelID)
	}

	detail := "fetched " + r.FetchedAt.Local().Format("2006-01-02 15:04:05")
	if r.ReadingAt != nil {
		detail = fmt.Sprintf("reading #%d at %s, %s", r.EntryID, r.ReadingAt.Local().Format("15:04:05"), detail)
	}
	fmt.Fprint(w, ui.RenderHeader(ui.HeaderInfo{Subtitle: name, Detail: detail}))

	if len(r.Metrics) == 0 {
		ui.FprintWarning(w, "The channel has no readings yet")
		return
	}

	rows := make([]ui.MetricRow, len(r.Metrics))
	for i, m := range r.Metrics {
		rows[i] = ui.MetricRow{
			Metric: m.Label,
			Value:  fmt.Sprintf("%.1f %s", m.Value, m.Unit),
			Status: ui.SymbolComplete + " " + m.Status,
			Min:    fmt.Sprintf("%.1f", m.Min),
			Max:    fmt.Sprintf("%.1f", m.Max),
			Mean:   fmt.Sprintf("%.1f", m.Mean),
		}
	}
	fmt.Fprintln(w, ui.RenderMetricTable(rows))
	fmt.Fprintln(w, ui.MutedStyle().Render(fmt.Sprintf("min/max/mean over the last %d readings", r.Window)))
}
