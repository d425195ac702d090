package controller

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/types"
)

// HandleWorkspaceChange processes a workspace-changed event from the host.
// Disallowed switches during an active session are reverted to the last valid
// workspace; the revert itself raises another change event, which the
// reverting flag keeps from cascading.
func (c *Controller) HandleWorkspaceChange(id types.WorkspaceID) {
	if c.reverting.Load() {
		if c.policy.IsWorkspaceAllowed(id) {
			c.policy.SetLastValidWorkspace(id)
		}
		return
	}

	if !c.policy.ShouldBlockSwitch(id) {
		c.policy.SetLastValidWorkspace(id)
		return
	}

	last := c.policy.LastValidWorkspace()
	c.metrics.IncBlockedSwitches()
	if c.shaker != nil {
		c.shaker.Shake()
	}
	c.notifyWarning(fmt.Sprintf("Focus mode: workspace %d is restricted!", id))

	c.reverting.Store(true)
	defer c.reverting.Store(false)
	if c.host != nil {
		if err := c.host.SwitchWorkspace(last); err != nil {
			c.log.Warn("failed to revert workspace switch",
				zap.Int64("workspace", int64(last)), zap.Error(err))
		}
	}
}

// HandleSpawn decides whether an app launch may proceed. Returns true to
// allow. Blocked launches get feedback but are never retried by the daemon.
func (c *Controller) HandleSpawn(command string) bool {
	if !c.policy.ShouldBlockSpawn(command) {
		return true
	}

	c.metrics.IncBlockedSpawns()
	if c.shaker != nil {
		c.shaker.Shake()
	}
	c.notifyWarning("Focus mode: app launching is blocked!")
	return false
}

// WindowExempt reports whether a window escapes enforcement entirely.
func (c *Controller) WindowExempt(w *types.Window) bool {
	return c.policy.IsWindowExempt(w)
}
