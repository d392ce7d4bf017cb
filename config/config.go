// Package config loads the service configuration from a YAML or JSON file
// with FT_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/pugetops/ferrytrack/core/metrics"
	"github.com/pugetops/ferrytrack/core/training"
	"github.com/pugetops/ferrytrack/infra/events"
	"github.com/pugetops/ferrytrack/infra/feed"
)

type Config struct {
	Feed     feed.Config             `json:"feed"`
	Storage  StorageConfig           `json:"storage"`
	Tracker  TrackerConfig           `json:"tracker"`
	Training training.PipelineConfig `json:"training"`
	Events   EventsConfig            `json:"events"`
	Metrics  metrics.Config          `json:"metrics"`
	API      APIConfig               `json:"api"`
}

// EventsConfig groups the broker publishers.
type EventsConfig struct {
	MQTT events.MQTTConfig `json:"mqtt"`
	NATS events.NATSConfig `json:"nats"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("FT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ft_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Feed.SetDefaults()
	cfg.Storage.SetDefaults()
	cfg.Tracker.SetDefaults()
	cfg.Training.SetDefaults()
	cfg.Events.MQTT.SetDefaults()
	cfg.Events.NATS.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Feed.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tracker.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
