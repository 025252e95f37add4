package app

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process-level configuration, loaded from the environment.
type Config struct {
	Addr           string   `env:"ADDR" envDefault:":8080"`
	TickRate       int      `env:"TICK_RATE" envDefault:"60"`
	Seed           string   `env:"WORLD_SEED"`
	TuningPath     string   `env:"TUNING_PATH"`
	LogSinks       []string `env:"LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogJSONPath    string   `env:"LOG_JSON_PATH" envDefault:"runner-events.ndjson"`
	LogMinSeverity string   `env:"LOG_MIN_SEVERITY" envDefault:"info"`
	DebugTelemetry bool     `env:"DEBUG_TELEMETRY"`
}

// LoadConfig reads the process configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR must not be empty")
	}
	if c.TickRate <= 0 || c.TickRate > 240 {
		return fmt.Errorf("TICK_RATE must be in (0, 240], got %d", c.TickRate)
	}
	for _, sink := range c.LogSinks {
		switch sink {
		case "console", "json":
		default:
			return fmt.Errorf("LOG_SINKS contains unknown sink %q", sink)
		}
	}
	return nil
}

func (c Config) hasSink(name string) bool {
	for _, sink := range c.LogSinks {
		if sink == name {
			return true
		}
	}
	return false
}
