// internal/intake/config.go
package intake

import "time"

type Config struct {
	RequireBudget bool
	DraftTTL      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DraftTTL: 24 * time.Hour,
	}
}
