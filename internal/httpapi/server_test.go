package httpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testSnapshot(n int) *feed.Snapshot {
	snap := &feed.Snapshot{
		Channel:   feed.Channel{ID: 12345, Name: "Greenhouse"},
		FetchedAt: testNow,
	}
	for i := 0; i < n; i++ {
		snap.Readings = append(snap.Readings, feed.Reading{
			Time:        testNow.Add(time.Duration(i-n) * time.Minute),
			EntryID:     100 + i,
			Temperature: 20 + float64(i)*0.5,
			Humidity:    55,
			Pressure:    1000 + float64(i),
			AirQuality:  60 + float64(i)*2,
		})
	}
	return snap
}

func newTestServer(t *testing.T, snap *feed.Snapshot) (*Server, *feed.State) {
	t.Helper()
	state := feed.NewState()
	if snap != nil {
		state.Store(snap)
	}
	return New(state, config.ServeConfig{Addr: "127.0.0.1:0"}, logger.Noop()), state
}

func get(t *testing.T, s *Server, path string, into any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if into != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into), rec.Body.String())
	}
	return rec
}

func TestHealth(t *testing.T) {
	t.Run("before first fetch", func(t *testing.T) {
		s, _ := newTestServer(t, nil)
		var body healthResponse
		rec := get(t, s, "/healthz", &body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body.Status)
		assert.Nil(t, body.LastFetch)
		assert.Zero(t, body.Successes)
	})

	t.Run("after fetches and a failure", func(t *testing.T) {
		s, state := newTestServer(t, testSnapshot(5))
		state.RecordError(stderrors.New("connection refused"), testNow.Add(time.Minute))

		var body healthResponse
		rec := get(t, s, "/healthz", &body)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, body.LastFetch)
		assert.True(t, testNow.Equal(*body.LastFetch))
		assert.EqualValues(t, 1, body.Successes)
		assert.EqualValues(t, 1, body.Failures)
		assert.Contains(t, body.LastError, "connection refused")
		require.NotNil(t, body.LastErrorAt)
	})
}

func TestSnapshot(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(24))

	var body snapshotResponse
	rec := get(t, s, "/api/snapshot", &body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, "Greenhouse", body.Channel.Name)
	assert.Equal(t, 12345, body.Channel.ID)
	assert.Equal(t, 123, body.EntryID)
	require.Len(t, body.Metrics, 4)

	byName := map[string]metricStatus{}
	for _, m := range body.Metrics {
		byName[m.Metric] = m
	}
	assert.InDelta(t, 31.5, byName["temperature"].Value, 1e-9)
	assert.Equal(t, "°C", byName["temperature"].Unit)
	assert.Equal(t, "Warning", byName["temperature"].Label)
	assert.Equal(t, "warning", byName["temperature"].Tone)
	assert.Equal(t, "Normal", byName["humidity"].Label)
	assert.Equal(t, "Warning", byName["pressure"].Label)
}

func TestSnapshot_NoData(t *testing.T) {
	s, _ := newTestServer(t, nil)
	var body errorResponse
	rec := get(t, s, "/api/snapshot", &body)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "no readings yet", body.Error)
}

func TestMetric(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(30))

	var body metricDetail
	rec := get(t, s, "/api/metrics/pressure", &body)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "pressure", body.Metric)
	assert.Equal(t, feed.WindowSize, body.Count)
	assert.InDelta(t, 1006, body.Min, 1e-9)
	assert.InDelta(t, 1029, body.Max, 1e-9)
	assert.InDelta(t, 1017.5, body.Mean, 1e-9)
	assert.InDelta(t, 1029, body.Value, 1e-9)
	require.Len(t, body.Window, feed.WindowSize)
	assert.InDelta(t, 1006, body.Window[0].Value, 1e-9)
}

func TestMetric_Errors(t *testing.T) {
	tests := []struct {
		name   string
		snap   *feed.Snapshot
		path   string
		status int
	}{
		{"unknown metric", testSnapshot(3), "/api/metrics/radon", http.StatusNotFound},
		{"no data", nil, "/api/metrics/humidity", http.StatusServiceUnavailable},
		{"unknown route", testSnapshot(3), "/api/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, tt.snap)
			var body errorResponse
			rec := get(t, s, tt.path, &body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, body.Error)
			assert.NotEmpty(t, body.Code)
		})
	}
}

func TestCORS(t *testing.T) {
	state := feed.NewState()
	s := New(state, config.ServeConfig{CORSOrigins: []string{"https://dash.example.com"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogging(t *testing.T) {
	buf := logger.NewBufferLogger()
	s := New(feed.NewState(), config.ServeConfig{}, buf)
	get(t, s, "/healthz", nil)

	assert.True(t, buf.HasLevel("debug"))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, testSnapshot(2))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	s := New(feed.NewState(), config.ServeConfig{Addr: "not-an-address"}, nil)
	err := s.ListenAndServe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot listen")
}
