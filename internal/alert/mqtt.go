package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/logger"
)

const publishTimeout = 5 * time.Second

// MQTTPublisher sends events as retained JSON messages to
// {topic_prefix}/{metric}.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	log    logger.Logger

	mu        sync.RWMutex
	connected bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMQTTPublisher builds a publisher for cfg. Call Connect before publishing.
func NewMQTTPublisher(cfg config.MQTTConfig, log logger.Logger) *MQTTPublisher {
	p := &MQTTPublisher{
		prefix: strings.TrimRight(cfg.TopicPrefix, "/"),
		log:    log,
		stopCh: make(chan struct{}),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		log.Info("mqtt connected to %s", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		log.Warn("mqtt connection lost: %v", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// newMQTTPublisherWithClient wraps an existing client, for tests.
func newMQTTPublisherWithClient(c mqtt.Client, prefix string, log logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{
		client:    c,
		prefix:    strings.TrimRight(prefix, "/"),
		log:       log,
		connected: true,
		stopCh:    make(chan struct{}),
	}
}

// Connect waits for the initial broker connection, honouring ctx and Close.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	select {
	case <-p.stopCh:
		return errors.New(errors.ErrAlert, "Alert publisher already closed", "")
	default:
	}

	if p.IsConnected() {
		return nil
	}

	token := p.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return errors.WrapWithCode(err, errors.ErrAlert,
					"Cannot connect to the MQTT broker",
					"Check alerts.mqtt.broker in .envdash.yaml, or leave it empty to disable alerts")
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return errors.New(errors.ErrAlert, "Alert publisher closed while connecting", "")
		default:
		}
	}
}

// Topic returns the topic for a metric key.
func (p *MQTTPublisher) Topic(metric string) string {
	return fmt.Sprintf("%s/%s", p.prefix, metric)
}

// Publish sends ev with QoS 1, retained so new subscribers see the current
// status immediately.
func (p *MQTTPublisher) Publish(ctx context.Context, ev Event) error {
	if !p.IsConnected() {
		return errors.New(errors.ErrAlert, "MQTT client not connected", "The client reconnects on its own; the alert is retried next cycle")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAlert, "Failed to encode alert", "")
	}

	topic := p.Topic(ev.Metric)
	token := p.client.Publish(topic, 1, true, data)

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d < timeout {
			timeout = d
		}
	}
	if !token.WaitTimeout(timeout) {
		return errors.New(errors.ErrAlert, "Publish timed out for topic "+topic, "")
	}
	if err := token.Error(); err != nil {
		return errors.WrapWithCode(err, errors.ErrAlert, "Publish failed for topic "+topic, "")
	}

	p.log.Debug("published %s to %s", ev.Level, topic)
	return nil
}

// IsConnected returns whether the client is connected.
func (p *MQTTPublisher) IsConnected() bool {
	p.mu.RLock()
	connected := p.connected
	p.mu.RUnlock()
	return connected && p.client.IsConnected()
}

// Close stops the client. Idempotent.
func (p *MQTTPublisher) Close() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	if p.client != nil {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}
