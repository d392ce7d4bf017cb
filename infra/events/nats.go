package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/pugetops/ferrytrack/core/events"
	"github.com/pugetops/ferrytrack/core/logger"
)

// NATSConfig defines the connection parameters for the NATS publisher.
type NATSConfig struct {
	Enabled       bool   `json:"enabled"`
	URL           string `json:"url"`
	SubjectPrefix string `json:"subject_prefix"`
}

// SetDefaults applies sane defaults.
func (c *NATSConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = "ferrytrack.trips"
	}
}

// NATSPublisher forwards trip events to a NATS server.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	log    logger.Logger
}

// NewNATSPublisher connects to the server with reconnect logging.
func NewNATSPublisher(cfg NATSConfig, log logger.Logger) (*NATSPublisher, error) {
	cfg.SetDefaults()
	nc, err := nats.Connect(cfg.URL,
		nats.Name("ferrytrack"),
		nats.DisconnectHandler(func(_ *nats.Conn) { log.Warnf("nats disconnected") }),
		nats.ReconnectHandler(func(_ *nats.Conn) { log.Infof("nats reconnected") }),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}
	return &NATSPublisher{nc: nc, prefix: cfg.SubjectPrefix, log: log}, nil
}

// PublishTripStarted emits a started event on <prefix>.<vessel>.started.
func (p *NATSPublisher) PublishTripStarted(_ context.Context, ev events.TripStarted) error {
	return p.publish(p.subject(ev.Trip.VesselAbbrev, "started"), ev)
}

// PublishTripCompleted emits a completed event on <prefix>.<vessel>.completed.
func (p *NATSPublisher) PublishTripCompleted(_ context.Context, ev events.TripCompleted) error {
	return p.publish(p.subject(ev.Trip.VesselAbbrev, "completed"), ev)
}

func (p *NATSPublisher) subject(vessel, kind string) string {
	return p.prefix + "." + subjectToken(vessel) + "." + kind
}

func (p *NATSPublisher) publish(subject string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.nc.Publish(subject, b); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
	return nil
}

// subjectToken strips characters NATS subjects cannot carry.
func subjectToken(s string) string {
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_")
	s = repl.Replace(strings.TrimSpace(s))
	if s == "" {
		return "_"
	}
	return s
}
