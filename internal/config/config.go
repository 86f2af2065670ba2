// Package config loads server settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNilPointer    = errors.New("config: nil pointer")
	ErrParsingConfig = errors.New("config: failed to parse environment")
)

// Config holds the settings for the MCP server.
type Config struct {
	CacheCapacity int64  `env:"WEB_MCP_CACHE_BYTES" envDefault:"67108864"` // Byte budget of the in-memory content cache.
	LogPath       string `env:"WEB_MCP_LOG"`                               // Log file path; empty means next to the executable.
	Trace         bool   `env:"WEB_MCP_TRACE" envDefault:"false"`          // Emit cache trace lines to the log.
	SearchLimit   int    `env:"WEB_MCP_SEARCH_LIMIT" envDefault:"10"`      // Results returned per web search.
}

// Load parses environment variables into v. A .env file is loaded first if
// present; variables already set in the environment take precedence.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	// The .env file is optional.
	_ = godotenv.Load()
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// FromEnv loads a Config.
func FromEnv() (Config, error) {
	var cfg Config
	if err := Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
