package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all daemon configuration. Values come from FOCUSD_* environment
// variables, optionally overridden by a TOML config file (see LoadFile).
type Config struct {
	Server    ServerConfig
	Session   SessionConfig
	Enforce   EnforceConfig
	Challenge ChallengeConfig
	Shake     ShakeConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	StateFile string `envconfig:"STATE_FILE"`
	File      string `envconfig:"CONFIG_FILE"`
}

// ServerConfig holds control API configuration.
type ServerConfig struct {
	Addr string `envconfig:"ADDR" default:"127.0.0.1:7420"`
}

// SessionConfig holds default session durations in minutes.
type SessionConfig struct {
	TotalMinutes int `envconfig:"TOTAL_MINUTES" default:"120"`
	WorkMinutes  int `envconfig:"WORK_MINUTES" default:"25"`
	BreakMinutes int `envconfig:"BREAK_MINUTES" default:"5"`
}

// EnforceConfig holds enforcement policy defaults.
type EnforceConfig struct {
	DuringBreak       bool     `envconfig:"ENFORCE_DURING_BREAK" default:"false"`
	FloatingExempt    bool     `envconfig:"FLOATING_EXEMPT" default:"true"`
	BlockSpawn        bool     `envconfig:"BLOCK_SPAWN" default:"true"`
	ExceptionClasses  []string `envconfig:"EXCEPTION_CLASSES" default:"eww,rofi,wofi,dmenu,ulauncher"`
	SpawnWhitelist    []string `envconfig:"SPAWN_WHITELIST"`
	AllowedWorkspaces []int64  `envconfig:"ALLOWED_WORKSPACES"`
}

// ChallengeConfig holds exit challenge configuration.
// Type: 0 = none, 1 = type phrase, 2 = math problem, 3 = countdown.
type ChallengeConfig struct {
	Type   int    `envconfig:"EXIT_CHALLENGE_TYPE" default:"0"`
	Phrase string `envconfig:"EXIT_CHALLENGE_PHRASE" default:"I want to stop focusing"`
}

// ShakeConfig holds visual feedback parameters.
type ShakeConfig struct {
	Intensity   int `envconfig:"SHAKE_INTENSITY" default:"15"`
	DurationMs  int `envconfig:"SHAKE_DURATION" default:"300"`
	FrequencyMs int `envconfig:"SHAKE_FREQUENCY" default:"50"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds control API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// NotifyConfig holds optional webhook notification configuration.
type NotifyConfig struct {
	WebhookURL string `envconfig:"WEBHOOK_URL"`
}

// Load reads configuration from the environment and, if present, merges the
// TOML config file on top.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("focusd", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.File != "" {
		if err := cfg.MergeFile(cfg.File); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Validate clamps out-of-range values to safe defaults and returns warnings
// for everything it corrected. Configuration errors are never fatal.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Session.TotalMinutes < 1 {
		warnings = append(warnings, "total_minutes should be >= 1, using 120")
		c.Session.TotalMinutes = 120
	}
	if c.Session.WorkMinutes < 1 {
		warnings = append(warnings, "work_minutes should be >= 1, using 25")
		c.Session.WorkMinutes = 25
	}
	if c.Session.BreakMinutes < 0 {
		warnings = append(warnings, "break_minutes should be >= 0, using 5")
		c.Session.BreakMinutes = 5
	}
	if c.Shake.Intensity < 1 || c.Shake.Intensity > 100 {
		warnings = append(warnings, "shake_intensity should be 1-100 pixels")
		c.Shake.Intensity = min(max(c.Shake.Intensity, 1), 100)
	}
	if c.Shake.DurationMs < 0 {
		warnings = append(warnings, "shake_duration should be >= 0, using 300")
		c.Shake.DurationMs = 300
	}
	if c.Challenge.Type < 0 || c.Challenge.Type > 3 {
		warnings = append(warnings, "exit_challenge_type should be 0-3, disabling challenge")
		c.Challenge.Type = 0
	}

	return warnings
}
