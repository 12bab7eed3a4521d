package httpapi

import (
	"time"

	"github.com/rileyhilliard/envdash/internal/threshold"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type healthResponse struct {
	Status      string     `json:"status"`
	Uptime      string     `json:"uptime"`
	LastFetch   *time.Time `json:"last_fetch"`
	Successes   int64      `json:"successes"`
	Failures    int64      `json:"failures"`
	LastError   string     `json:"last_error,omitempty"`
	LastErrorAt *time.Time `json:"last_error_at,omitempty"`
}

type channelInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type metricStatus struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Level  string  `json:"level"`
	Label  string  `json:"label"`
	Tone   string  `json:"tone"`
}

func newMetricStatus(m threshold.Metric, v float64) metricStatus {
	st := threshold.Classify(m, v)
	return metricStatus{
		Metric: m.String(),
		Value:  v,
		Unit:   m.Unit(),
		Level:  st.Level.String(),
		Label:  st.Label,
		Tone:   string(st.Tone),
	}
}

type snapshotResponse struct {
	Channel   channelInfo    `json:"channel"`
	FetchedAt time.Time      `json:"fetched_at"`
	ReadingAt time.Time      `json:"reading_at"`
	EntryID   int            `json:"entry_id"`
	Metrics   []metricStatus `json:"metrics"`
}

type point struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

type metricDetail struct {
	metricStatus
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
	Window []point `json:"window"`
}
