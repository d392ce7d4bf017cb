package config

import "fmt"

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is either "memory" or "postgres".
	Backend string `json:"backend"`
	// DSN is the Postgres connection string, required for the postgres
	// backend.
	DSN string `json:"dsn"`
}

func (c *StorageConfig) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "memory"
	}
}

func (c StorageConfig) Validate() error {
	switch c.Backend {
	case "memory":
		return nil
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("storage: dsn is required for the postgres backend")
		}
		return nil
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Backend)
	}
}
