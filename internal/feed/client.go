package feed

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/tidwall/gjson"
)

// Source fetches a snapshot. Client is the production implementation.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Client reads a ThingSpeak-style channel feed over HTTP.
type Client struct {
	channel config.ChannelConfig
	rest    *resty.Client
	now     func() time.Time
	log     logger.Logger

	httpClient *http.Client
	timeout    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sends requests through hc instead of a fresh http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger receives resty's own diagnostics. The read key is redacted.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithClock overrides the clock used for FetchedAt.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client for the configured channel.
func NewClient(ch config.ChannelConfig, opts ...ClientOption) *Client {
	c := &Client{
		channel: ch,
		now:     time.Now,
		log:     logger.Noop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient != nil {
		c.rest = resty.NewWithClient(c.httpClient)
	} else {
		c.rest = resty.New()
	}
	c.rest.SetLogger(restyLogger{log: c.log, key: ch.ReadKey})
	c.rest.SetHeader("Accept", "application/json")
	if c.timeout > 0 {
		c.rest.SetTimeout(c.timeout)
	}
	return c
}

// URL returns the feed endpoint for the configured channel.
func (c *Client) URL() string {
	q := url.Values{}
	if c.channel.ReadKey != "" {
		q.Set("api_key", c.channel.ReadKey)
	}
	if c.channel.Results > 0 {
		q.Set("results", strconv.Itoa(c.channel.Results))
	}
	u := fmt.Sprintf("%s/channels/%s/feeds.json", strings.TrimRight(c.channel.BaseURL, "/"), url.PathEscape(c.channel.ID))
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Fetch retrieves and parses the channel feed. Transport failures and
// non-2xx responses return an ErrNetwork error; bodies that are not a feed
// document return an ErrParse error.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	resp, err := c.rest.R().
		SetContext(ctx).
		Get(c.URL())
	if err != nil {
		return nil, errors.Network(redact(err, c.channel.ReadKey), "Feed request failed")
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, errors.Network(fmt.Errorf("%s", strings.TrimSpace(snippet(body))),
			"Feed returned %s", resp.Status())
	}

	snap, err := Parse(body)
	if err != nil {
		return nil, err
	}
	snap.FetchedAt = c.now()
	return snap, nil
}

// Parse decodes a feed document. Entries keep the upstream order, which is
// chronological, oldest first.
func Parse(body []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.Parse(fmt.Errorf("invalid JSON: %s", snippet(body)), "Malformed feed response")
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		// The API answers "-1" for an unknown channel or wrong key.
		return nil, errors.Parse(fmt.Errorf("expected an object, got %s", snippet(body)), "Unexpected feed response")
	}
	feeds := doc.Get("feeds")
	if !feeds.IsArray() {
		return nil, errors.Parse(fmt.Errorf("no feeds array in response"), "Unexpected feed response")
	}

	ch := doc.Get("channel")
	snap := &Snapshot{
		Channel: Channel{
			ID:          int(ch.Get("id").Int()),
			Name:        ch.Get("name").String(),
			Description: ch.Get("description").String(),
			LastEntryID: int(ch.Get("last_entry_id").Int()),
			UpdatedAt:   parseTime(ch.Get("updated_at").String()),
		},
	}

	entries := feeds.Array()
	snap.Readings = make([]Reading, 0, len(entries))
	for _, e := range entries {
		snap.Readings = append(snap.Readings, Reading{
			Time:        parseTime(e.Get("created_at").String()),
			EntryID:     int(e.Get("entry_id").Int()),
			Temperature: parseField(e.Get("field1")),
			Humidity:    parseField(e.Get("field2")),
			Pressure:    parseField(e.Get("field4")),
			AirQuality:  parseField(e.Get("field5")),
		})
	}
	return snap, nil
}

// parseField reads a numeric field that may be a string, a number or null.
// Anything that isn't a finite number is zero.
func parseField(r gjson.Result) float64 {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0
		}
		v = f
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func snippet(body []byte) string {
	const max = 120
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// redact keeps the read key out of logged transport errors, which embed the URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

// restyLogger adapts logger.Logger to resty.Logger.
type restyLogger struct {
	log logger.Logger
	key string
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error("%s", l.clean(format, v))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn("%s", l.clean(format, v))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug("%s", l.clean(format, v))
}

func (l restyLogger) clean(format string, v []interface{}) string {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if l.key != "" {
		msg = strings.ReplaceAll(msg, l.key, "REDACTED")
	}
	return msg
}
