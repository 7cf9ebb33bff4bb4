package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultStartTime is used when no start time is configured, in seconds.
const DefaultStartTime = 185

// MaxStartTime caps the start time at roughly 31 years.
const MaxStartTime = 1e9

var (
	ErrNegativeStartTime = errors.New("start time must not be negative")
	ErrStartTimeTooLarge = errors.New("start time is too large")
)

// Config holds the settings for a countdown run.
type Config struct {
	StartTime   float64 `yaml:"start_time"`
	LogLevel    string  `yaml:"log_level"`
	ControlPipe string  `yaml:"control_pipe"`
	NoColor     bool    `yaml:"no_color"`
}

func Default() Config {
	return Config{
		StartTime: DefaultStartTime,
		LogLevel:  "warn",
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then with COUNTDOWN_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw struct {
		StartTime   *string `yaml:"start_time"`
		LogLevel    *string `yaml:"log_level"`
		ControlPipe *string `yaml:"control_pipe"`
		NoColor     *bool   `yaml:"no_color"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if raw.StartTime != nil {
		start, err := ParseStartTime(*raw.StartTime)
		if err != nil {
			return fmt.Errorf("config start_time: %w", err)
		}
		c.StartTime = start
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	if raw.ControlPipe != nil {
		c.ControlPipe = *raw.ControlPipe
	}
	if raw.NoColor != nil {
		c.NoColor = *raw.NoColor
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("COUNTDOWN_START_TIME"); v != "" {
		start, err := ParseStartTime(v)
		if err != nil {
			return fmt.Errorf("COUNTDOWN_START_TIME: %w", err)
		}
		c.StartTime = start
	}

	c.LogLevel = getEnv("COUNTDOWN_LOG_LEVEL", c.LogLevel)
	c.ControlPipe = getEnv("COUNTDOWN_CONTROL_PIPE", c.ControlPipe)

	if v := os.Getenv("COUNTDOWN_NO_COLOR"); v != "" {
		noColor, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COUNTDOWN_NO_COLOR: %w", err)
		}
		c.NoColor = noColor
	}
	return nil
}

// ParseStartTime accepts plain seconds ("185", "8.123") or a Go duration
// ("3m5s").
func ParseStartTime(s string) (float64, error) {
	s = strings.TrimSpace(s)

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid start time %q: want seconds or a duration like 3m5s", s)
		}
		seconds = d.Seconds()
	}

	if seconds < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegativeStartTime, s)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("invalid start time %q", s)
	}
	if seconds > MaxStartTime {
		return 0, fmt.Errorf("%w: %q exceeds %g seconds", ErrStartTimeTooLarge, s, float64(MaxStartTime))
	}
	return seconds, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
