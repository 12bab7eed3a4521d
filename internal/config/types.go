package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Defaults for the public demo channel.
const (
	DefaultChannelID = "3092550"
	DefaultReadKey   = "1JCH60ZZR69R58JN"
	DefaultBaseURL   = "https://api.thingspeak.com"
	DefaultRefresh   = 30 * time.Second
	DefaultServeAddr = ":8080"
	DefaultTopic     = "envdash/alerts"
	DefaultClientID  = "envdash"
)

// Config represents the complete .envdash.yaml configuration file.
type Config struct {
	Version     int           `yaml:"version" mapstructure:"version"`
	Channel     ChannelConfig `yaml:"channel" mapstructure:"channel"`
	Refresh     time.Duration `yaml:"refresh" mapstructure:"refresh"`
	HTTPTimeout time.Duration `yaml:"http_timeout" mapstructure:"http_timeout"`
	Serve       ServeConfig   `yaml:"serve" mapstructure:"serve"`
	Alerts      AlertsConfig  `yaml:"alerts" mapstructure:"alerts"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// ChannelConfig identifies the upstream telemetry channel.
type ChannelConfig struct {
	// ID is the numeric channel identifier.
	ID string `yaml:"id" mapstructure:"id"`

	// ReadKey is the channel's read API key.
	ReadKey string `yaml:"read_key" mapstructure:"read_key"`

	// BaseURL is the API root, without a trailing slash.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Results limits how many feed entries are requested. Zero lets the
	// upstream pick its default window.
	Results int `yaml:"results" mapstructure:"results"`
}

// ServeConfig controls the headless status API.
type ServeConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// AlertsConfig controls where status transitions are published.
type AlertsConfig struct {
	MQTT MQTTConfig `yaml:"mqtt" mapstructure:"mqtt"`
}

// MQTTConfig holds broker settings. An empty Broker disables publishing.
type MQTTConfig struct {
	Broker      string `yaml:"broker" mapstructure:"broker"`
	ClientID    string `yaml:"client_id" mapstructure:"client_id"`
	TopicPrefix string `yaml:"topic_prefix" mapstructure:"topic_prefix"`
	Username    string `yaml:"username,omitempty" mapstructure:"username"`
	Password    string `yaml:"password,omitempty" mapstructure:"password"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// LogConfig controls log output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`

	// File receives log lines. The dashboard discards logs when empty.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Channel: ChannelConfig{
			ID:      DefaultChannelID,
			ReadKey: DefaultReadKey,
			BaseURL: DefaultBaseURL,
		},
		Refresh: DefaultRefresh,
		Serve: ServeConfig{
			Addr:        DefaultServeAddr,
			CORSOrigins: []string{"*"},
		},
		Alerts: AlertsConfig{
			MQTT: MQTTConfig{
				ClientID:    DefaultClientID,
				TopicPrefix: DefaultTopic,
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
