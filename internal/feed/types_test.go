package feed

import (
	"testing"
	"time"

	"github.com/rileyhilliard/envdash/internal/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSnapshot builds n readings one minute apart, with temperature equal to
// the reading's index.
func makeSnapshot(n int) *Snapshot {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := &Snapshot{}
	for i := 0; i < n; i++ {
		s.Readings = append(s.Readings, Reading{
			Time:        base.Add(time.Duration(i) * time.Minute),
			EntryID:     i + 1,
			Temperature: float64(i),
			Humidity:    50,
			Pressure:    1000 + float64(i),
			AirQuality:  float64(i * 10),
		})
	}
	return s
}

func TestSnapshot_Window(t *testing.T) {
	tests := []struct {
		name      string
		readings  int
		n         int
		wantLen   int
		wantFirst float64
	}{
		{"thirty readings keep the last 24", 30, WindowSize, 24, 6},
		{"exactly 24", 24, WindowSize, 24, 0},
		{"fewer than window", 5, WindowSize, 5, 0},
		{"empty", 0, WindowSize, 0, 0},
		{"zero window", 10, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := makeSnapshot(tt.readings)
			w := s.Window(tt.n)
			require.Len(t, w, tt.wantLen)
			if tt.wantLen == 0 {
				return
			}
			assert.Equal(t, tt.wantFirst, w[0].Temperature)
			assert.Equal(t, float64(tt.readings-1), w[len(w)-1].Temperature, "window ends at the latest reading")
			for i := 1; i < len(w); i++ {
				assert.True(t, w[i].Time.After(w[i-1].Time), "oldest first")
			}
		})
	}
}

func TestSnapshot_WindowIsACopy(t *testing.T) {
	s := makeSnapshot(3)
	w := s.Window(WindowSize)
	w[0].Temperature = 99

	assert.Equal(t, 0.0, s.Readings[0].Temperature)
}

func TestSnapshot_Series(t *testing.T) {
	s := makeSnapshot(30)

	temps := s.Series(threshold.Temperature, WindowSize)
	require.Len(t, temps, 24)
	assert.Equal(t, 6.0, temps[0])
	assert.Equal(t, 29.0, temps[23])

	aqi := s.Series(threshold.AirQuality, WindowSize)
	assert.Equal(t, 290.0, aqi[23])
}

func TestSnapshot_NilSafe(t *testing.T) {
	var s *Snapshot
	_, ok := s.Latest()
	assert.False(t, ok)
	assert.Nil(t, s.Window(24))
	assert.Empty(t, s.Series(threshold.Humidity, 24))
	assert.True(t, s.Empty())
}

func TestReading_Value(t *testing.T) {
	r := Reading{Temperature: 1, Humidity: 2, Pressure: 3, AirQuality: 4}

	assert.Equal(t, 1.0, r.Value(threshold.Temperature))
	assert.Equal(t, 2.0, r.Value(threshold.Humidity))
	assert.Equal(t, 3.0, r.Value(threshold.Pressure))
	assert.Equal(t, 4.0, r.Value(threshold.AirQuality))
	assert.Equal(t, 0.0, r.Value(threshold.Metric(99)))
}
