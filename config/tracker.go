package config

import (
	"fmt"
	"time"
)

// TrackerConfig drives the polling loop.
type TrackerConfig struct {
	// IntervalSeconds is the delay between feed polls.
	IntervalSeconds int `json:"interval_seconds"`
}

func (c *TrackerConfig) SetDefaults() {
	if c.IntervalSeconds == 0 {
		c.IntervalSeconds = 30
	}
}

func (c TrackerConfig) Validate() error {
	if c.IntervalSeconds < 5 {
		return fmt.Errorf("tracker: interval_seconds must be at least 5, got %d", c.IntervalSeconds)
	}
	return nil
}

// Interval returns the poll interval as a duration.
func (c TrackerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}
