package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/0xalexb/hjarta-conf/config"
	"github.com/0xalexb/hjarta-conf/config/env"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config holds configuration for the logger.
type Config struct {
	_ struct{} `config:"env_prefix={}LOG_"`

	Level     string `default:"info"`
	Format    string `default:"json"`
	AddSource bool   `default:"false"`
}

// Validate rejects unknown output formats.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatText:
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}

// FromEnv loads a Config from its defaults overridden by provider, reading
// <prefix>LOG_LEVEL, <prefix>LOG_FORMAT and <prefix>LOG_ADD_SOURCE.
func FromEnv(provider env.Provider, prefix string) (Config, error) {
	loader, err := config.NewLoader[Config](config.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return Config{}, err //nolint:exhaustruct // zero value on error
	}

	err = loader.Defaults()
	if err != nil {
		return Config{}, err //nolint:exhaustruct // zero value on error
	}

	err = loader.EnvWithProviderAndPrefix(provider, prefix)
	if err != nil {
		return Config{}, err //nolint:exhaustruct // zero value on error
	}

	return loader.Finish()
}

// NewLogger creates a new slog.Logger writing to w.
// The level is parsed from the config; defaults to INFO if invalid or empty.
// Format "text" selects a text handler, anything else JSON.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   cfg.AddSource,
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: nil,
	}

	if strings.EqualFold(cfg.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level, falling back to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
