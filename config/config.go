// Package config provides YAML configuration parsing for the counter service.
//
// Example configuration:
//
//	title: Demo Counter
//	port: 8080
//	initial: 0
//	step_interval: 500ms
//	log_level: info
//	log_format: json
//
//	actions:
//	  - increment:1
//	  - decrement:2
//	  - kind: increment
//	    amount: 3
//
// Every scalar setting can be overridden from the environment with the
// COUNTER_ prefix: COUNTER_TITLE, COUNTER_PORT, COUNTER_INITIAL,
// COUNTER_STEP_INTERVAL, COUNTER_LOG_LEVEL and COUNTER_LOG_FORMAT.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jpalmerr/redux/counter"
	"gopkg.in/yaml.v3"
)

const (
	// envPrefix is prepended to every environment override.
	envPrefix = "COUNTER_"

	defaultPort         = 8080
	defaultStepInterval = time.Second
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"

	// minStepInterval keeps scripted playback from spinning.
	minStepInterval = 10 * time.Millisecond
)

// Config is the root configuration structure for the counter service.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is shown on the service index page.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Initial is the counter's starting value.
	Initial int `yaml:"initial"`

	// StepInterval is the delay between scripted actions.
	// Accepts duration strings like "1s", "250ms". Defaults to 1s.
	StepInterval Duration `yaml:"step_interval"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// LogFormat is json or text. Defaults to json.
	LogFormat string `yaml:"log_format"`

	// Actions is the script played in order after start.
	Actions []counter.Action `yaml:"actions"`
}

// Duration wraps time.Duration for YAML and environment decoding.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no file is given, with
// environment overrides applied.
func Default() (*Config, error) {
	return Parse(nil)
}

// Parse parses YAML configuration data.
//
// Environment overrides are applied after the YAML is decoded, then
// defaults are filled in and the result is validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.StepInterval == 0 {
		cfg.StepInterval = Duration(defaultStepInterval)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envOverrides lists the settings that can be overridden from the environment.
type envOverrides struct {
	Title        string   `env:"TITLE"`
	Port         int      `env:"PORT"`
	Initial      int      `env:"INITIAL"`
	StepInterval Duration `env:"STEP_INTERVAL"`
	LogLevel     string   `env:"LOG_LEVEL"`
	LogFormat    string   `env:"LOG_FORMAT"`
}

// applyEnv overwrites settings whose COUNTER_* variable is set.
// Unset variables leave the YAML value in place.
func (c *Config) applyEnv() error {
	ov := envOverrides{
		Title:        c.Title,
		Port:         c.Port,
		Initial:      c.Initial,
		StepInterval: c.StepInterval,
		LogLevel:     c.LogLevel,
		LogFormat:    c.LogFormat,
	}
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	c.Title = ov.Title
	c.Port = ov.Port
	c.Initial = ov.Initial
	c.StepInterval = ov.StepInterval
	c.LogLevel = ov.LogLevel
	c.LogFormat = ov.LogFormat
	return nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.Title)
	if err != nil {
		return fmt.Errorf("title: %w", err)
	}
	c.Title = expanded

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.StepInterval.Duration() < minStepInterval {
		return fmt.Errorf("step_interval must be at least %s, got %s", minStepInterval, c.StepInterval.Duration())
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("log_format must be json or text, got %q", c.LogFormat)
	}

	for i, a := range c.Actions {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}

	return nil
}

// parseLevel parses a level name such as "debug" or "WARN".
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}

// Logger builds a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
