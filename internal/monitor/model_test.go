package monitor

import (
	stderrors "errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so tests can match on text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// testSnapshot builds n readings a minute apart. The latest of 24 is
// temperature 31.5 (warning), humidity 55 (normal), pressure 1023
// (warning) and AQI 106 (light pollution).
func testSnapshot(n int) *feed.Snapshot {
	base := testNow.Add(-time.Duration(n) * time.Minute)
	s := &feed.Snapshot{
		Channel:   feed.Channel{ID: 3092550, Name: "Greenhouse"},
		FetchedAt: testNow,
	}
	for i := 0; i < n; i++ {
		s.Readings = append(s.Readings, feed.Reading{
			Time:        base.Add(time.Duration(i) * time.Minute),
			EntryID:     i + 1,
			Temperature: 20 + float64(i)*0.5,
			Humidity:    55,
			Pressure:    1000 + float64(i),
			AirQuality:  60 + float64(i)*2,
		})
	}
	return s
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Animate = false
	opts.Particles = false
	opts.Now = func() time.Time { return testNow }
	opts.Seed = 1
	return opts
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	m, err := NewModel(opts)
	require.NoError(t, err)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return a monitor.Model")
	return out, cmd
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_MissingSlot(t *testing.T) {
	slots := DefaultSlots()
	delete(slots, threshold.Pressure)

	opts := testOptions()
	opts.Slots = slots
	_, err := NewModel(opts)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingElement))
	assert.Contains(t, err.Error(), "Pressure")
}

func TestNewModel_DefaultsSlots(t *testing.T) {
	opts := testOptions()
	opts.Slots = nil
	m, err := NewModel(opts)
	require.NoError(t, err)
	assert.Len(t, m.slots, len(threshold.All))
	assert.Equal(t, threshold.Temperature, m.Selected())
	assert.Equal(t, DetailClosed, m.DetailPhase())
}

func TestModel_SnapshotUpdatesCards(t *testing.T) {
	m := newTestModel(t, testOptions())
	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})

	tests := []struct {
		metric threshold.Metric
		value  float64
		level  threshold.Level
	}{
		{threshold.Temperature, 31.5, threshold.Warning},
		{threshold.Humidity, 55, threshold.Normal},
		{threshold.Pressure, 1023, threshold.Warning},
		{threshold.AirQuality, 106, threshold.LightPollution},
	}
	for i, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			v, ok := m.DisplayedValue(tt.metric)
			require.True(t, ok)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.level, m.cards[i].status.Level)
		})
	}

	view := m.View()
	assert.Contains(t, view, "Greenhouse")
	assert.Contains(t, view, "31.5 °C")
	assert.Contains(t, view, "Light pollution")
	assert.Contains(t, view, "106.0 AQI")
}

func TestModel_SameSnapshotTwiceIsIdempotent(t *testing.T) {
	m := newTestModel(t, testOptions())
	snap := testSnapshot(24)

	m, _ = update(t, m, SnapshotMsg{Snapshot: snap})
	first := m.View()
	m, _ = update(t, m, SnapshotMsg{Snapshot: snap})

	assert.Equal(t, first, m.View())
}

func TestModel_EmptySnapshotKeepsValues(t *testing.T) {
	m := newTestModel(t, testOptions())
	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})

	empty := &feed.Snapshot{
		Channel:   feed.Channel{Name: "Greenhouse"},
		FetchedAt: testNow.Add(time.Minute),
	}
	m, _ = update(t, m, SnapshotMsg{Snapshot: empty})

	v, ok := m.DisplayedValue(threshold.Temperature)
	require.True(t, ok)
	assert.Equal(t, 31.5, v)
	assert.Contains(t, m.View(), "31.5 °C")
	assert.Equal(t, testNow.Add(time.Minute), m.lastFetch)
}

func TestModel_BeforeDataShowsPlaceholders(t *testing.T) {
	m := newTestModel(t, testOptions())

	_, ok := m.DisplayedValue(threshold.Humidity)
	assert.False(t, ok)

	view := m.View()
	assert.Contains(t, view, "waiting for data")
	assert.Contains(t, view, "connecting...")
	assert.NotContains(t, view, "Trend")
}

func TestModel_InitialErrorBanner(t *testing.T) {
	m := newTestModel(t, testOptions())

	m, cmd := update(t, m, FetchErrMsg{Err: stderrors.New("dial tcp: no route to host"), Initial: true})
	require.NotNil(t, cmd, "banner schedules its own dismissal")
	assert.Contains(t, m.Banner(), "no route to host")
	assert.Contains(t, m.View(), "Initial load failed")

	m, _ = update(t, m, bannerExpiredMsg{id: m.bannerID})
	assert.Empty(t, m.Banner())
	assert.NotContains(t, m.View(), "Initial load failed")
}

func TestModel_StaleBannerTimerIgnored(t *testing.T) {
	m := newTestModel(t, testOptions())

	m, _ = update(t, m, FetchErrMsg{Err: stderrors.New("first"), Initial: true})
	stale := m.bannerID
	m, _ = update(t, m, FetchErrMsg{Err: stderrors.New("second"), Initial: true})

	m, _ = update(t, m, bannerExpiredMsg{id: stale})
	assert.Contains(t, m.Banner(), "second")
}

func TestModel_PeriodicErrorNoBanner(t *testing.T) {
	m := newTestModel(t, testOptions())
	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})

	m, cmd := update(t, m, FetchErrMsg{Err: stderrors.New("timeout")})
	assert.Nil(t, cmd)
	assert.Empty(t, m.Banner())
	assert.Contains(t, m.View(), "31.5 °C", "last good data stays up")
}

func TestModel_Keys(t *testing.T) {
	t.Run("quit", func(t *testing.T) {
		for _, k := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
			m := newTestModel(t, testOptions())
			m, cmd := update(t, m, k)
			require.NotNil(t, cmd)
			_, isQuit := cmd().(tea.QuitMsg)
			assert.True(t, isQuit)
			assert.Empty(t, m.View())
		}
	})

	t.Run("refresh calls the trigger", func(t *testing.T) {
		opts := testOptions()
		calls := 0
		opts.Refresh = func() { calls++ }
		m := newTestModel(t, opts)

		_, cmd := update(t, m, runeKey("r"))
		require.NotNil(t, cmd)
		cmd()
		assert.Equal(t, 1, calls)
	})

	t.Run("refresh without trigger", func(t *testing.T) {
		m := newTestModel(t, testOptions())
		_, cmd := update(t, m, runeKey("r"))
		assert.Nil(t, cmd)
	})

	t.Run("selection wraps", func(t *testing.T) {
		m := newTestModel(t, testOptions())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
		assert.Equal(t, threshold.AirQuality, m.Selected())
		m, _ = update(t, m, runeKey("l"))
		assert.Equal(t, threshold.Temperature, m.Selected())
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
		assert.Equal(t, threshold.Humidity, m.Selected())
		m, _ = update(t, m, runeKey("h"))
		assert.Equal(t, threshold.Temperature, m.Selected())
	})

	t.Run("particles toggle", func(t *testing.T) {
		opts := testOptions()
		opts.Particles = true
		m := newTestModel(t, opts)
		assert.True(t, m.ParticlesOn())
		m, _ = update(t, m, runeKey("p"))
		assert.False(t, m.ParticlesOn())
	})

	t.Run("help overlay", func(t *testing.T) {
		m := newTestModel(t, testOptions())
		m, _ = update(t, m, runeKey("?"))
		view := m.View()
		assert.Contains(t, view, "Keyboard Shortcuts")
		assert.Contains(t, view, "refresh now")

		// Other keys are swallowed while help is up
		m, _ = update(t, m, runeKey("l"))
		assert.Equal(t, threshold.Temperature, m.Selected())

		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.NotContains(t, m.View(), "Keyboard Shortcuts")
	})
}

func TestModel_HotkeysOpenDetail(t *testing.T) {
	tests := []struct {
		key    string
		metric threshold.Metric
	}{
		{"1", threshold.Temperature},
		{"2", threshold.Humidity},
		{"3", threshold.Pressure},
		{"4", threshold.AirQuality},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := newTestModel(t, testOptions())
			m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})
			m, _ = update(t, m, runeKey(tt.key))

			assert.Equal(t, DetailOpen, m.DetailPhase())
			assert.Equal(t, tt.metric, m.DetailMetric())
			assert.Equal(t, tt.metric, m.Selected())
		})
	}
}

func TestModel_EnterAndEsc(t *testing.T) {
	m := newTestModel(t, testOptions())
	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, DetailOpen, m.DetailPhase())
	assert.Equal(t, threshold.Humidity, m.DetailMetric())

	// Arrow keys switch the open detail to the next metric
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, DetailOpen, m.DetailPhase())
	assert.Equal(t, threshold.Pressure, m.DetailMetric())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, DetailClosed, m.DetailPhase())
	assert.Contains(t, m.View(), "Trend")
}

func TestModel_AnimatedValueEases(t *testing.T) {
	opts := testOptions()
	opts.Animate = true
	m := newTestModel(t, opts)

	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})
	settleFrames(t, &m, testNow.Add(time.Second), 120)

	next := testSnapshot(24)
	next.Readings[23].Temperature = 21.5
	m, cmd := update(t, m, SnapshotMsg{Snapshot: next})
	require.NotNil(t, cmd, "retargeting starts the frame loop")

	v, _ := m.DisplayedValue(threshold.Temperature)
	assert.Equal(t, 31.5, v, "value starts from what was on screen")

	m, _ = update(t, m, frameMsg(testNow.Add(2*time.Second)))
	v, _ = m.DisplayedValue(threshold.Temperature)
	assert.Less(t, v, 31.5)
	assert.Greater(t, v, 21.5)

	settleFrames(t, &m, testNow.Add(3*time.Second), 120)
	v, _ = m.DisplayedValue(threshold.Temperature)
	assert.Equal(t, 21.5, v)
	assert.Equal(t, threshold.Normal, m.cards[0].status.Level, "status follows the new value at once")
}

func TestModel_StaggeredEntrance(t *testing.T) {
	opts := testOptions()
	opts.Animate = true
	m := newTestModel(t, opts)

	m, _ = update(t, m, SnapshotMsg{Snapshot: testSnapshot(24)})
	visible := func() []bool {
		out := make([]bool, len(m.cards))
		for i, c := range m.cards {
			out[i] = c.visible
		}
		return out
	}
	assert.Equal(t, []bool{true, false, false, false}, visible())

	m, _ = update(t, m, frameMsg(testNow.Add(150*time.Millisecond)))
	assert.Equal(t, []bool{true, true, false, false}, visible())

	m, _ = update(t, m, frameMsg(testNow.Add(350*time.Millisecond)))
	assert.Equal(t, []bool{true, true, true, true}, visible())
}

// settleFrames feeds frames until the model stops asking for more.
func settleFrames(t *testing.T, m *Model, at time.Time, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		next, cmd := update(t, *m, frameMsg(at))
		*m = next
		if cmd == nil {
			return
		}
	}
	t.Fatalf("still animating after %d frames", limit)
}
