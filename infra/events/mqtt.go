// Package events provides broker publishers for trip lifecycle events:
// MQTT for mobile push consumers and NATS for internal subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/pugetops/ferrytrack/core/events"
	"github.com/pugetops/ferrytrack/core/logger"
)

// MQTTConfig defines the connection parameters for the Paho MQTT publisher.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *MQTTConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "ferrytrack"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "ferrytrack/trips"
	}
}

// MQTTPublisher forwards trip events to an MQTT broker.
type MQTTPublisher struct {
	cli    paho.Client
	prefix string
	qos    byte
	log    logger.Logger
}

// NewMQTTPublisher connects to the broker.
func NewMQTTPublisher(cfg MQTTConfig, log logger.Logger) (*MQTTPublisher, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	cli := paho.NewClient(opts)
	tok := cli.Connect()
	if !tok.WaitTimeout(10*time.Second) || tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %v", cfg.Broker, tok.Error())
	}
	return &MQTTPublisher{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// PublishTripStarted emits a started event on <prefix>/<vessel>/started.
func (p *MQTTPublisher) PublishTripStarted(_ context.Context, ev events.TripStarted) error {
	return p.publish(p.prefix+"/"+ev.Trip.VesselAbbrev+"/started", ev)
}

// PublishTripCompleted emits a completed event on <prefix>/<vessel>/completed.
func (p *MQTTPublisher) PublishTripCompleted(_ context.Context, ev events.TripCompleted) error {
	return p.publish(p.prefix+"/"+ev.Trip.VesselAbbrev+"/completed", ev)
}

func (p *MQTTPublisher) publish(topic string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	tok := p.cli.Publish(topic, p.qos, false, b)
	if !tok.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.cli.Disconnect(250)
	return nil
}
