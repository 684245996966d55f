// Package config loads persistent toolkit settings from a YAML file and
// applies environment overrides on top.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kanglcn/apertools/internal/deform"
	"github.com/kanglcn/apertools/internal/logging"
	"github.com/kanglcn/apertools/internal/output"
	"github.com/kanglcn/apertools/internal/units"
)

const (
	defaultDirName  = ".apertools"
	defaultFileName = "config.yaml"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "APERTOOLS_CONFIG"
)

// ErrInvalidConfig is returned when the config payload is malformed or
// holds out-of-range values.
var ErrInvalidConfig = errors.New("config is invalid")

// Config holds settings shared by every command.
type Config struct {
	LogLevel     string  `json:"log_level" yaml:"log_level"`
	LogFormat    string  `json:"log_format" yaml:"log_format"`
	Workers      int     `json:"workers" yaml:"workers"`
	MaxCondition float64 `json:"max_condition" yaml:"max_condition"`
	Sensor       string  `json:"sensor" yaml:"sensor"`
	OutputFormat string  `json:"output_format" yaml:"output_format"`
	LOSMapDB     string  `json:"losmap_db" yaml:"losmap_db"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Workers:      0,
		MaxCondition: deform.DefaultMaxCondition,
		Sensor:       string(units.Sentinel),
		OutputFormat: string(output.FormatTable),
		LOSMapDB:     "losmaps.db",
	}
}

// Path resolves the config file location from the environment or the
// user's home directory.
func Path(lookup func(string) (string, bool)) (string, error) {
	if p, ok := lookup(EnvConfigPath); ok && p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName, defaultFileName), nil
}

// Load reads path. A missing file yields Default(); fields absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, payload, 0o644)
}

// WithEnv returns cfg with APERTOOLS_* environment overrides applied.
// Unparseable numeric values leave the setting unchanged.
func (c Config) WithEnv(lookup func(string) (string, bool)) Config {
	c.LogLevel = envString(lookup, "APERTOOLS_LOG_LEVEL", c.LogLevel)
	c.LogFormat = envString(lookup, "APERTOOLS_LOG_FORMAT", c.LogFormat)
	c.Workers = envInt(lookup, "APERTOOLS_WORKERS", c.Workers)
	c.MaxCondition = envFloat(lookup, "APERTOOLS_MAX_CONDITION", c.MaxCondition)
	c.Sensor = envString(lookup, "APERTOOLS_SENSOR", c.Sensor)
	c.OutputFormat = envString(lookup, "APERTOOLS_OUTPUT", c.OutputFormat)
	c.LOSMapDB = envString(lookup, "APERTOOLS_LOSMAP_DB", c.LOSMapDB)
	return c
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := units.ParseSensor(c.Sensor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := output.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxCondition <= 1 {
		return fmt.Errorf("%w: max_condition must exceed 1, got %g", ErrInvalidConfig, c.MaxCondition)
	}
	return nil
}

// Logger builds the logger described by the config.
func (c Config) Logger(out io.Writer) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format, out), nil
}

func envFloat(lookup func(string) (string, bool), key string, def float64) float64 {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func envInt(lookup func(string) (string, bool), key string, def int) int {
	if val, ok := lookup(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func envString(lookup func(string) (string, bool), key, def string) string {
	if val, ok := lookup(key); ok {
		return val
	}
	return def
}
