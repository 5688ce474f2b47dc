// Package config loads mtgdeck settings. Values are layered: built-in
// defaults, then the TOML config file, then MTGDECK_* environment
// variables. Commands apply their flags on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/peterkuimelis/mtgdeck/internal/fetch"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MTGDECK_"

// Config holds the runtime settings shared by the commands.
type Config struct {
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// Outbound requests to deck sites
	HTTPTimeout       time.Duration `toml:"http_timeout" env:"HTTP_TIMEOUT"`
	RequestsPerSecond float64       `toml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `toml:"burst" env:"BURST"`
	UserAgent         string        `toml:"user_agent" env:"USER_AGENT"`

	// DecksFile is a YAML deck library preloaded into the deck store.
	DecksFile string `toml:"decks_file" env:"DECKS_FILE"`

	// MCP server
	Transport string `toml:"transport" env:"TRANSPORT"`
	Port      int    `toml:"port" env:"PORT"`

	// Web server
	WebAddr string `toml:"web_addr" env:"WEB_ADDR"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:          "info",
		HTTPTimeout:       15 * time.Second,
		RequestsPerSecond: 4,
		Burst:             2,
		UserAgent:         "mtgdeck/1.0",
		Transport:         "stdio",
		Port:              8080,
		WebAddr:           ":8081",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "mtgdeck", "config.toml")
}

// Load reads the config file at GetConfigFilePath (when present) and the
// process environment.
func Load() (Config, error) {
	return LoadFrom(GetConfigFilePath(), nil)
}

// LoadFrom layers the TOML file at path (skipped when missing) and then the
// environment over Default. A nil environ means the process environment.
func LoadFrom(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have a fixed set of values.
func (c Config) Validate() error {
	switch c.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("config: transport must be stdio or http, got %q", c.Transport)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config: port %d out of range", c.Port)
	}
	return nil
}

// FetchOptions builds the HTTP client settings for deck sites.
func (c Config) FetchOptions() fetch.Options {
	return fetch.Options{
		Timeout:           c.HTTPTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		UserAgent:         c.UserAgent,
	}
}
