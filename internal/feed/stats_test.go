package feed

import (
	"testing"

	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/threshold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_WindowStats(t *testing.T) {
	snap := makeSnapshot(30)

	st, err := snap.WindowStats(threshold.Temperature, WindowSize)
	require.NoError(t, err)

	// Window holds temperatures 6..29
	assert.Equal(t, 24, st.Count)
	assert.Equal(t, 6.0, st.Min)
	assert.Equal(t, 29.0, st.Max)
	assert.InDelta(t, 17.5, st.Mean, 1e-9)
	assert.Equal(t, 29.0, st.Current)
	assert.Len(t, st.Values, 24)
}

func TestSnapshot_WindowStatsFlatSeries(t *testing.T) {
	st, err := makeSnapshot(3).WindowStats(threshold.Humidity, WindowSize)
	require.NoError(t, err)
	assert.Equal(t, 50.0, st.Min)
	assert.Equal(t, 50.0, st.Max)
	assert.Equal(t, 50.0, st.Mean)
}

func TestSnapshot_WindowStatsEmpty(t *testing.T) {
	var snap *Snapshot
	_, err := snap.WindowStats(threshold.Pressure, WindowSize)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingElement))
}

func TestSummarize(t *testing.T) {
	st, err := Summarize(threshold.AirQuality, []float64{120, 80, 100})
	require.NoError(t, err)
	assert.Equal(t, threshold.AirQuality, st.Metric)
	assert.Equal(t, 80.0, st.Min)
	assert.Equal(t, 120.0, st.Max)
	assert.Equal(t, 100.0, st.Mean)
	assert.Equal(t, 100.0, st.Current)
}
