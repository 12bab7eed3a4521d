package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/logger"
)

// MaxResults is the largest feed window the upstream API serves.
const MaxResults = 8000

// MinRefresh is the shortest accepted polling period.
const MinRefresh = time.Second

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but envdash only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest envdash release")
	}

	if err := validateChannel(cfg.Channel); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'channel' section in your .envdash.yaml.")
	}

	if cfg.Refresh < MinRefresh {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refresh '%s' is too short", cfg.Refresh),
			"Use at least 1s, e.g. 'refresh: 30s'. The upstream only updates every few seconds anyway.")
	}

	if cfg.HTTPTimeout < 0 {
		return errors.New(errors.ErrConfig,
			"http_timeout can't be negative",
			"Use 0 to disable the timeout, or something like '10s'.")
	}

	if err := validateAlerts(cfg.Alerts); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'alerts' section in your .envdash.yaml.")
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("log.level '%s' isn't valid", cfg.Log.Level),
			"Use 'debug', 'info', 'warn', or 'error'.")
	}

	return nil
}

func validateChannel(ch ChannelConfig) error {
	if strings.TrimSpace(ch.ID) == "" {
		return fmt.Errorf("channel.id is required - it's the number in your channel URL")
	}
	for _, r := range ch.ID {
		if r < '0' || r > '9' {
			return fmt.Errorf("channel.id '%s' should be numeric", ch.ID)
		}
	}

	u, err := url.Parse(ch.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("channel.base_url '%s' needs to be an http(s) URL", ch.BaseURL)
	}

	if ch.Results < 0 || ch.Results > MaxResults {
		return fmt.Errorf("channel.results needs to be 0-%d (got %d)", MaxResults, ch.Results)
	}

	return nil
}

func validateAlerts(a AlertsConfig) error {
	if !a.MQTT.Enabled() {
		return nil
	}
	u, err := url.Parse(a.MQTT.Broker)
	if err != nil || u.Host == "" {
		return fmt.Errorf("alerts.mqtt.broker '%s' should look like 'tcp://host:1883'", a.MQTT.Broker)
	}
	switch u.Scheme {
	case "tcp", "ssl", "tls", "ws", "wss", "mqtt", "mqtts":
	default:
		return fmt.Errorf("alerts.mqtt.broker scheme '%s' isn't supported - use tcp, ssl, ws or wss", u.Scheme)
	}
	if strings.TrimSpace(a.MQTT.TopicPrefix) == "" {
		return fmt.Errorf("alerts.mqtt.topic_prefix can't be empty when a broker is set")
	}
	if strings.ContainsAny(a.MQTT.TopicPrefix, "+#") {
		return fmt.Errorf("alerts.mqtt.topic_prefix '%s' can't contain MQTT wildcards", a.MQTT.TopicPrefix)
	}
	return nil
}
