package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7420", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Session.WorkMinutes)
	assert.Equal(t, 5, cfg.Session.BreakMinutes)
	assert.True(t, cfg.Enforce.BlockSpawn)
	assert.False(t, cfg.Enforce.DuringBreak)
	assert.Contains(t, cfg.Enforce.ExceptionClasses, "rofi")
	assert.Equal(t, "I want to stop focusing", cfg.Challenge.Phrase)
	assert.Equal(t, 15, cfg.Shake.Intensity)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FOCUSD_WORK_MINUTES", "50")
	t.Setenv("FOCUSD_EXIT_CHALLENGE_TYPE", "2")
	t.Setenv("FOCUSD_SPAWN_WHITELIST", "firefox,kitty")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Session.WorkMinutes)
	assert.Equal(t, 2, cfg.Challenge.Type)
	assert.Equal(t, []string{"firefox", "kitty"}, cfg.Enforce.SpawnWhitelist)
}

func TestValidateClampsOutOfRange(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Session.TotalMinutes = 0
	cfg.Session.WorkMinutes = -3
	cfg.Shake.Intensity = 500
	cfg.Challenge.Type = 9

	warnings := cfg.Validate()
	assert.Len(t, warnings, 4)
	assert.Equal(t, 120, cfg.Session.TotalMinutes)
	assert.Equal(t, 25, cfg.Session.WorkMinutes)
	assert.Equal(t, 100, cfg.Shake.Intensity)
	assert.Equal(t, 0, cfg.Challenge.Type)
}

func TestValidateKeepsGoodValues(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Validate())
}

func TestMergeFileOverridesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focusd.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[session]
work_minutes = 90

[enforce]
during_break = true
allowed_workspaces = [1, 2]

[challenge]
type = 3
phrase = "let me leave"
`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.MergeFile(path))

	assert.Equal(t, 90, cfg.Session.WorkMinutes)
	assert.Equal(t, 5, cfg.Session.BreakMinutes, "absent keys keep defaults")
	assert.True(t, cfg.Enforce.DuringBreak)
	assert.Equal(t, []int64{1, 2}, cfg.Enforce.AllowedWorkspaces)
	assert.Equal(t, 3, cfg.Challenge.Type)
	assert.Equal(t, "let me leave", cfg.Challenge.Phrase)
}

func TestMergeFileMissingIsNotAnError(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.MergeFile(filepath.Join(t.TempDir(), "absent.toml")))
}

func TestMergeFileMalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[session\nwork"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Error(t, cfg.MergeFile(path))
}
