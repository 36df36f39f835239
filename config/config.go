// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration. A .env file, if present, is
// loaded into the environment by main before parsing.
type Config struct {
	Addr         string `env:"ADDR" envDefault:"0.0.0.0:9779"`
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	ModelName    string `env:"MODEL_NAME" envDefault:"gemini-2.5-flash"`

	// ArchivePath is the sqlite file for finished-game logs. Empty
	// disables archiving.
	ArchivePath string `env:"ARCHIVE_DB"`

	// GenerationTimeout bounds each model call so a hung call becomes a
	// gateway failure instead of a stuck game.
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
