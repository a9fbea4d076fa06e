package config

import (
	"errors"
	"fmt"
	"strings"
)

// Quality bounds accepted by the GIF encoder. Lower is better.
const (
	MinQuality = 1
	MaxQuality = 30
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.Capture.Validate(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.WorkRetentionHours <= 0 {
		return errors.New("paths.work_retention_hours must be positive")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.HistoryDB) == "" {
		return errors.New("paths.history_db must be set when history.enabled is true")
	}
	return nil
}

// Validate checks capture settings. Command flags are merged into Capture
// before the session is built, so the CLI re-runs this after overrides.
func (c Capture) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return errors.New("capture.url must be set")
	}
	if c.FrameCount < 1 {
		return fmt.Errorf("capture.frame_count must be >= 1 (got %d)", c.FrameCount)
	}
	if err := ensureNonNegativeMap(map[string]int{
		"capture.frame_delay_ms":  c.FrameDelayMS,
		"capture.settle_delay_ms": c.SettleDelayMS,
		"capture.max_in_flight":   c.MaxInFlight,
	}); err != nil {
		return err
	}
	if c.Quality < MinQuality || c.Quality > MaxQuality {
		return fmt.Errorf("capture.quality must be between %d and %d (got %d)", MinQuality, MaxQuality, c.Quality)
	}
	if c.Viewport <= 0 {
		return errors.New("capture.viewport must be positive")
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("capture.output must be set")
	}
	switch c.Type {
	case OutputGIF, OutputPNG:
	default:
		return fmt.Errorf("capture.type must be %q or %q (got %q)", OutputGIF, OutputPNG, c.Type)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error (got %q)", c.Logging.Level)
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
