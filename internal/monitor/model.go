package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
)

// BannerDuration is how long an initial-load error stays on screen.
const BannerDuration = 5 * time.Second

// Options configures the dashboard.
type Options struct {
	Slots     Slots
	ShowTrend bool
	Particles bool
	// Animate enables eased values, staggered entrance and modal
	// transitions. Tests turn it off to get settled frames.
	Animate  bool
	Interval time.Duration
	// Refresh is called when the user asks for an immediate fetch.
	Refresh func()
	Now     func() time.Time
	Seed    uint64
}

// DefaultOptions returns options with every feature on.
func DefaultOptions() Options {
	return Options{
		Slots:     DefaultSlots(),
		ShowTrend: true,
		Particles: true,
		Animate:   true,
		Interval:  30 * time.Second,
	}
}

// SnapshotMsg delivers a successful fetch to the dashboard.
type SnapshotMsg struct {
	Snapshot *feed.Snapshot
}

// FetchErrMsg reports a failed fetch. Only Initial errors show the banner;
// later ones are logged by the fetcher and the last good data stays up.
type FetchErrMsg struct {
	Err     error
	Initial bool
}

type clockMsg time.Time

type bannerExpiredMsg struct{ id int }

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	opts  Options
	slots Slots
	keys  keyMap
	help  help.Model

	snapshot  *feed.Snapshot
	lastFetch time.Time
	cards     []cardState
	revealAt  time.Time
	selected  int

	detail        detailState
	viewport      viewport.Model
	viewportReady bool

	banner   string
	bannerID int

	particles     *particleField
	showParticles bool
	showHelp      bool
	animating     bool

	width    int
	height   int
	quitting bool
}

// NewModel builds the dashboard. It fails if a metric has no card slot.
func NewModel(opts Options) (Model, error) {
	if opts.Slots == nil {
		opts.Slots = DefaultSlots()
	}
	if err := opts.Slots.Validate(); err != nil {
		return Model{}, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.Now().UnixNano())
	}

	m := Model{
		opts:          opts,
		slots:         opts.Slots,
		keys:          newKeyMap(opts.Slots),
		help:          help.New(),
		cards:         make([]cardState, len(threshold.All)),
		particles:     newParticleField(opts.Seed),
		showParticles: opts.Particles,
	}
	m.particles.Resize(40)
	return m, nil
}

// Init starts the header clock. The frame loop starts with the first
// window size message.
func (m Model) Init() tea.Cmd {
	return clockCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.particles.Resize(msg.Width - 1)

		vw, vh := m.detailViewportSize()
		if vh < 1 {
			vh = 1
		}
		if !m.viewportReady {
			m.viewport = viewport.New(vw, vh)
			m.viewportReady = true
		} else {
			m.viewport.Width = vw
			m.viewport.Height = vh
		}
		m.updateDetailViewport()
		return m, m.startFrames()

	case SnapshotMsg:
		m.applySnapshot(msg.Snapshot)
		return m, m.startFrames()

	case FetchErrMsg:
		if !msg.Initial || msg.Err == nil {
			return m, nil
		}
		m.bannerID++
		m.banner = "Initial load failed: " + errors.Summary(msg.Err)
		id := m.bannerID
		return m, tea.Tick(BannerDuration, func(time.Time) tea.Msg {
			return bannerExpiredMsg{id: id}
		})

	case bannerExpiredMsg:
		if msg.id == m.bannerID {
			m.banner = ""
		}

	case clockMsg:
		return m, clockCmd()

	case frameMsg:
		m.step(time.Time(msg))
		if m.needsFrames() {
			return m, frameCmd()
		}
		m.animating = false

	default:
		if m.detail.phase == DetailOpen {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.detail.visible() {
		return m.renderDetail()
	}
	return m.renderDashboard()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay captures everything except quit and its own toggles.
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help), key.Matches(msg, m.keys.Close):
			m.showHelp = false
		}
		return m, nil
	}

	n := len(threshold.All)
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Close):
		m.Close()
		return m, m.startFrames()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Prev):
		m.selected = (m.selected - 1 + n) % n
		if m.detail.visible() {
			m.Open(threshold.All[m.selected])
		}

	case key.Matches(msg, m.keys.Next):
		m.selected = (m.selected + 1) % n
		if m.detail.visible() {
			m.Open(threshold.All[m.selected])
		}

	case key.Matches(msg, m.keys.Open):
		m.Open(threshold.All[m.selected])
		return m, m.startFrames()

	case key.Matches(msg, m.keys.OpenSlot):
		if metric, ok := m.slots.metricForKey(msg.String()); ok {
			m.Open(metric)
			return m, m.startFrames()
		}

	case key.Matches(msg, m.keys.Particles):
		m.showParticles = !m.showParticles
		return m, m.startFrames()

	default:
		if m.detail.phase == DetailOpen {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// applySnapshot retargets every card. A snapshot without readings keeps the
// values on screen and only refreshes the fetch time and channel.
func (m *Model) applySnapshot(snap *feed.Snapshot) {
	if snap == nil {
		return
	}
	m.lastFetch = snap.FetchedAt
	if m.lastFetch.IsZero() {
		m.lastFetch = m.opts.Now()
	}

	if snap.Empty() && !m.snapshot.Empty() {
		kept := *m.snapshot
		kept.Channel = snap.Channel
		kept.FetchedAt = snap.FetchedAt
		m.snapshot = &kept
		return
	}
	m.snapshot = snap

	latest, ok := snap.Latest()
	if !ok {
		return
	}
	if m.revealAt.IsZero() {
		m.revealAt = m.opts.Now()
	}
	for i, metric := range threshold.All {
		v := latest.Value(metric)
		m.cards[i].status = threshold.Classify(metric, v)
		m.cards[i].value.SetTarget(v, m.opts.Animate)
		if !m.opts.Animate || i == 0 {
			m.cards[i].visible = true
		}
	}
	m.updateDetailViewport()
}

// Open shows the detail view for metric and selects its card.
func (m *Model) Open(metric threshold.Metric) {
	for i, mt := range threshold.All {
		if mt == metric {
			m.selected = i
		}
	}
	m.detail.open(metric, m.opts.Animate)
	m.viewport.GotoTop()
	m.updateDetailViewport()
}

// Close starts hiding the detail view.
func (m *Model) Close() {
	m.detail.close(m.opts.Animate)
}

// DetailPhase returns the detail view state.
func (m Model) DetailPhase() DetailPhase { return m.detail.phase }

// DetailMetric returns the metric the detail view shows or last showed.
func (m Model) DetailMetric() threshold.Metric { return m.detail.metric }

// Selected returns the highlighted card's metric.
func (m Model) Selected() threshold.Metric { return threshold.All[m.selected] }

// Banner returns the visible banner text, empty when dismissed.
func (m Model) Banner() string { return m.banner }

// ParticlesOn reports whether the particle strip is shown.
func (m Model) ParticlesOn() bool { return m.showParticles }

// DisplayedValue returns the number currently drawn on metric's card.
func (m Model) DisplayedValue(metric threshold.Metric) (float64, bool) {
	for i, mt := range threshold.All {
		if mt == metric {
			c := m.cards[i]
			return c.value.Value(), c.value.set && c.visible
		}
	}
	return 0, false
}

// SecondsSinceUpdate returns the number of seconds since the last fetch.
func (m Model) SecondsSinceUpdate() int {
	if m.lastFetch.IsZero() {
		return 0
	}
	return int(m.opts.Now().Sub(m.lastFetch).Seconds())
}

func (m Model) refreshCmd() tea.Cmd {
	if m.opts.Refresh == nil {
		return nil
	}
	refresh := m.opts.Refresh
	return func() tea.Msg {
		refresh()
		return nil
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

// startFrames starts the frame loop if something needs animating and the
// loop is not already running.
func (m *Model) startFrames() tea.Cmd {
	if !m.opts.Animate || m.animating || !m.needsFrames() {
		return nil
	}
	m.animating = true
	return frameCmd()
}

// needsFrames reports whether anything on screen is still moving.
func (m Model) needsFrames() bool {
	if !m.opts.Animate {
		return false
	}
	if m.showParticles || m.detail.transitioning() {
		return true
	}
	for _, c := range m.cards {
		if !c.value.Settled() || (c.value.set && !c.visible) {
			return true
		}
	}
	return false
}

// step advances every animation by one frame.
func (m *Model) step(now time.Time) {
	for i := range m.cards {
		c := &m.cards[i]
		c.value.Step()
		if !c.visible && !m.revealAt.IsZero() && now.Sub(m.revealAt) >= time.Duration(i)*staggerDelay {
			c.visible = true
		}
	}
	wasOpening := m.detail.phase == DetailOpening
	m.detail.step()
	if wasOpening && m.detail.phase == DetailOpen {
		m.updateDetailViewport()
	}
	if m.showParticles {
		m.particles.Step()
	}
}
