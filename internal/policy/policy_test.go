package policy

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

func newTestPolicy(active, breakTime bool) *Policy {
	var a, b atomic.Bool
	a.Store(active)
	b.Store(breakTime)
	return New(&a, &b, logging.NewNop())
}

func TestShouldBlockSwitchInactiveSession(t *testing.T) {
	p := newTestPolicy(false, false)

	for _, id := range []types.WorkspaceID{-99, -1, 1, 2, 42} {
		assert.False(t, p.ShouldBlockSwitch(id), "workspace %d", id)
	}
}

func TestShouldBlockSwitchSpecialWorkspaces(t *testing.T) {
	p := newTestPolicy(true, false)
	p.SetAllowedWorkspaces([]types.WorkspaceID{1})

	assert.False(t, p.ShouldBlockSwitch(-1))
	assert.False(t, p.ShouldBlockSwitch(-42))
}

func TestAllowDisallowWorkspace(t *testing.T) {
	p := newTestPolicy(true, false)

	p.AddAllowedWorkspace(3)
	assert.False(t, p.ShouldBlockSwitch(3))

	p.RemoveAllowedWorkspace(3)
	assert.True(t, p.ShouldBlockSwitch(3))
}

func TestNegativeWorkspacesNeverStored(t *testing.T) {
	p := newTestPolicy(true, false)

	p.SetAllowedWorkspaces([]types.WorkspaceID{-1, 2, -3, 4})
	assert.Equal(t, []types.WorkspaceID{2, 4}, p.AllowedWorkspaces())

	p.AddAllowedWorkspace(-7)
	assert.Equal(t, []types.WorkspaceID{2, 4}, p.AllowedWorkspaces())
}

func TestBreakTimeEnforcement(t *testing.T) {
	p := newTestPolicy(true, true)
	p.SetAllowedWorkspaces([]types.WorkspaceID{1})

	assert.False(t, p.ShouldBlockSwitch(9), "breaks unenforced by default")

	p.SetEnforceDuringBreak(true)
	assert.True(t, p.ShouldBlockSwitch(9))
	assert.False(t, p.ShouldBlockSwitch(1))
}

func TestIsWindowExempt(t *testing.T) {
	p := newTestPolicy(true, false)
	p.AddExceptionClass("rofi")

	assert.True(t, p.IsWindowExempt(nil))
	assert.True(t, p.IsWindowExempt(&types.Window{Class: "rofi", Workspace: 2}))
	assert.True(t, p.IsWindowExempt(&types.Window{Class: "firefox", Floating: true, Workspace: 2}))
	assert.True(t, p.IsWindowExempt(&types.Window{Class: "firefox", Special: true, Workspace: -5}))
	assert.False(t, p.IsWindowExempt(&types.Window{Class: "firefox", Workspace: 2}))

	p.SetFloatingExempt(false)
	assert.False(t, p.IsWindowExempt(&types.Window{Class: "firefox", Floating: true, Workspace: 2}))

	p.RemoveExceptionClass("rofi")
	assert.False(t, p.IsWindowExempt(&types.Window{Class: "rofi", Workspace: 2}))
}

func TestShouldBlockSpawn(t *testing.T) {
	p := newTestPolicy(true, false)
	p.AddSpawnWhitelist("firefox")

	assert.False(t, p.ShouldBlockSpawn("Firefox --new-window https://example.com"),
		"whitelist matches case-insensitive substrings")
	assert.True(t, p.ShouldBlockSpawn("steam"))

	p.RemoveSpawnWhitelist("firefox")
	assert.True(t, p.ShouldBlockSpawn("firefox"))
}

func TestSpawnAllowedWhenInactiveOrDisabled(t *testing.T) {
	inactive := newTestPolicy(false, false)
	assert.False(t, inactive.ShouldBlockSpawn("steam"))

	disabled := newTestPolicy(true, false)
	disabled.SetBlockSpawn(false)
	assert.False(t, disabled.ShouldBlockSpawn("steam"))

	onBreak := newTestPolicy(true, true)
	assert.False(t, onBreak.ShouldBlockSpawn("steam"))
}

func TestLastValidWorkspaceTracking(t *testing.T) {
	p := newTestPolicy(true, false)
	assert.Equal(t, types.WorkspaceID(1), p.LastValidWorkspace())

	p.SetLastValidWorkspace(7)
	assert.Equal(t, types.WorkspaceID(7), p.LastValidWorkspace())
}
