package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig is the TOML config file shape. Every field is optional; absent
// fields keep their environment-derived values.
type fileConfig struct {
	Session *struct {
		TotalMinutes *int `toml:"total_minutes"`
		WorkMinutes  *int `toml:"work_minutes"`
		BreakMinutes *int `toml:"break_minutes"`
	} `toml:"session"`
	Enforce *struct {
		DuringBreak       *bool    `toml:"during_break"`
		FloatingExempt    *bool    `toml:"floating_exempt"`
		BlockSpawn        *bool    `toml:"block_spawn"`
		ExceptionClasses  []string `toml:"exception_classes"`
		SpawnWhitelist    []string `toml:"spawn_whitelist"`
		AllowedWorkspaces []int64  `toml:"allowed_workspaces"`
	} `toml:"enforce"`
	Challenge *struct {
		Type   *int    `toml:"type"`
		Phrase *string `toml:"phrase"`
	} `toml:"challenge"`
	Shake *struct {
		Intensity   *int `toml:"intensity"`
		DurationMs  *int `toml:"duration_ms"`
		FrequencyMs *int `toml:"frequency_ms"`
	} `toml:"shake"`
}

// MergeFile overlays settings from a TOML file onto the config. A missing
// file is not an error; a malformed one is.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if s := fc.Session; s != nil {
		setInt(&c.Session.TotalMinutes, s.TotalMinutes)
		setInt(&c.Session.WorkMinutes, s.WorkMinutes)
		setInt(&c.Session.BreakMinutes, s.BreakMinutes)
	}
	if e := fc.Enforce; e != nil {
		setBool(&c.Enforce.DuringBreak, e.DuringBreak)
		setBool(&c.Enforce.FloatingExempt, e.FloatingExempt)
		setBool(&c.Enforce.BlockSpawn, e.BlockSpawn)
		if e.ExceptionClasses != nil {
			c.Enforce.ExceptionClasses = e.ExceptionClasses
		}
		if e.SpawnWhitelist != nil {
			c.Enforce.SpawnWhitelist = e.SpawnWhitelist
		}
		if e.AllowedWorkspaces != nil {
			c.Enforce.AllowedWorkspaces = e.AllowedWorkspaces
		}
	}
	if ch := fc.Challenge; ch != nil {
		setInt(&c.Challenge.Type, ch.Type)
		if ch.Phrase != nil {
			c.Challenge.Phrase = *ch.Phrase
		}
	}
	if sh := fc.Shake; sh != nil {
		setInt(&c.Shake.Intensity, sh.Intensity)
		setInt(&c.Shake.DurationMs, sh.DurationMs)
		setInt(&c.Shake.FrequencyMs, sh.FrequencyMs)
	}

	return nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
