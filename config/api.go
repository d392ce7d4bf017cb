package config

// APIConfig controls the read-only HTTP API.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Port    string `json:"port"`
}

func (c *APIConfig) SetDefaults() {
	if c.Port == "" {
		c.Port = "8080"
	}
}
