package policy

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// Policy makes allow/block decisions for workspace switches and app launches
// during an active session. It reads the session-active and break-time flags
// maintained by the controller without taking any scheduler lock; decisions
// are re-evaluated fresh on every attempt, so at most one tick of staleness
// is possible.
//
// All reads and writes of policy-owned state are serialized by a single lock.
// The policy never calls back into the scheduler.
type Policy struct {
	mu sync.Mutex

	allowed        map[types.WorkspaceID]struct{}
	exceptions     map[string]struct{}
	spawnWhitelist map[string]struct{}
	lastValid      types.WorkspaceID

	floatingExempt     bool
	enforceDuringBreak bool
	blockSpawn         bool

	sessionActive *atomic.Bool
	breakTime     *atomic.Bool

	log *logging.Logger
}

// New creates a policy reading the given session flags.
func New(sessionActive, breakTime *atomic.Bool, log *logging.Logger) *Policy {
	return &Policy{
		allowed:        make(map[types.WorkspaceID]struct{}),
		exceptions:     make(map[string]struct{}),
		spawnWhitelist: make(map[string]struct{}),
		lastValid:      1,
		floatingExempt: true,
		blockSpawn:     true,
		sessionActive:  sessionActive,
		breakTime:      breakTime,
		log:            log,
	}
}

// SetAllowedWorkspaces replaces the allow-list. Negative (special) workspace
// IDs are implicitly always allowed and never stored.
func (p *Policy) SetAllowedWorkspaces(ids []types.WorkspaceID) {
	p.mu.Lock()
	p.allowed = make(map[types.WorkspaceID]struct{}, len(ids))
	for _, id := range ids {
		if id >= 0 {
			p.allowed[id] = struct{}{}
		}
	}
	p.mu.Unlock()

	p.log.Info("allowed workspaces set", zap.Any("workspaces", ids))
}

// AddAllowedWorkspace adds a workspace to the allow-list.
func (p *Policy) AddAllowedWorkspace(id types.WorkspaceID) {
	if id < 0 {
		return
	}
	p.mu.Lock()
	p.allowed[id] = struct{}{}
	p.mu.Unlock()

	p.log.Debug("workspace allowed", zap.Int64("workspace", int64(id)))
}

// RemoveAllowedWorkspace removes a workspace from the allow-list.
func (p *Policy) RemoveAllowedWorkspace(id types.WorkspaceID) {
	p.mu.Lock()
	delete(p.allowed, id)
	p.mu.Unlock()

	p.log.Debug("workspace disallowed", zap.Int64("workspace", int64(id)))
}

// AllowedWorkspaces returns the allow-list sorted ascending.
func (p *Policy) AllowedWorkspaces() []types.WorkspaceID {
	p.mu.Lock()
	ids := make([]types.WorkspaceID, 0, len(p.allowed))
	for id := range p.allowed {
		ids = append(ids, id)
	}
	p.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsWorkspaceAllowed reports whether a workspace is exempt from blocking.
// Special workspaces (negative IDs) are always allowed.
func (p *Policy) IsWorkspaceAllowed(id types.WorkspaceID) bool {
	if id < 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.allowed[id]
	return ok
}

// ShouldBlockSwitch decides whether a switch to the target workspace must be
// blocked. It returns false when no session is active, during breaks unless
// break enforcement is on, and for allowed or special workspaces.
func (p *Policy) ShouldBlockSwitch(target types.WorkspaceID) bool {
	if !p.sessionActive.Load() {
		return false
	}

	p.mu.Lock()
	enforceBreak := p.enforceDuringBreak
	p.mu.Unlock()

	if p.breakTime.Load() && !enforceBreak {
		return false
	}

	if p.IsWorkspaceAllowed(target) {
		return false
	}

	p.log.Info("blocked workspace switch", zap.Int64("workspace", int64(target)))
	return true
}

// AddExceptionClass marks a window class as exempt from enforcement.
func (p *Policy) AddExceptionClass(class string) {
	p.mu.Lock()
	p.exceptions[class] = struct{}{}
	p.mu.Unlock()

	p.log.Debug("exception class added", zap.String("class", class))
}

// RemoveExceptionClass removes a window class exemption.
func (p *Policy) RemoveExceptionClass(class string) {
	p.mu.Lock()
	delete(p.exceptions, class)
	p.mu.Unlock()
}

// IsWindowExempt reports whether a window escapes enforcement: nil windows,
// excepted classes, floating windows when floating is exempt, and windows on
// special workspaces.
func (p *Policy) IsWindowExempt(w *types.Window) bool {
	if w == nil {
		return true
	}

	p.mu.Lock()
	_, excepted := p.exceptions[w.Class]
	floatingExempt := p.floatingExempt
	p.mu.Unlock()

	if excepted {
		return true
	}
	if floatingExempt && w.Floating {
		return true
	}
	if w.Special || w.Workspace < 0 {
		return true
	}
	return false
}

// AddSpawnWhitelist allows launch commands containing the given name.
func (p *Policy) AddSpawnWhitelist(name string) {
	p.mu.Lock()
	p.spawnWhitelist[name] = struct{}{}
	p.mu.Unlock()

	p.log.Info("app added to spawn whitelist", zap.String("app", name))
}

// RemoveSpawnWhitelist removes a spawn whitelist entry.
func (p *Policy) RemoveSpawnWhitelist(name string) {
	p.mu.Lock()
	delete(p.spawnWhitelist, name)
	p.mu.Unlock()

	p.log.Info("app removed from spawn whitelist", zap.String("app", name))
}

// ShouldBlockSpawn decides whether an app launch must be blocked. The
// whitelist matches case-insensitively on substrings, so "firefox" matches
// "firefox --new-window https://example.com".
func (p *Policy) ShouldBlockSpawn(command string) bool {
	if !p.sessionActive.Load() {
		return false
	}

	p.mu.Lock()
	blockSpawn := p.blockSpawn
	enforceBreak := p.enforceDuringBreak
	p.mu.Unlock()

	if !blockSpawn {
		return false
	}
	if p.breakTime.Load() && !enforceBreak {
		return false
	}

	lower := strings.ToLower(command)
	p.mu.Lock()
	defer p.mu.Unlock()
	for name := range p.spawnWhitelist {
		if strings.Contains(lower, strings.ToLower(name)) {
			return false
		}
	}

	p.log.Info("blocked spawn", zap.String("command", command))
	return true
}

// SetLastValidWorkspace records the most recent allowed workspace, the revert
// target for blocked switches.
func (p *Policy) SetLastValidWorkspace(id types.WorkspaceID) {
	p.mu.Lock()
	p.lastValid = id
	p.mu.Unlock()
}

// LastValidWorkspace returns the revert target for blocked switches.
func (p *Policy) LastValidWorkspace() types.WorkspaceID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastValid
}

// SetEnforceDuringBreak toggles enforcement during break intervals.
func (p *Policy) SetEnforceDuringBreak(v bool) {
	p.mu.Lock()
	p.enforceDuringBreak = v
	p.mu.Unlock()
}

// SetFloatingExempt toggles the floating window exemption.
func (p *Policy) SetFloatingExempt(v bool) {
	p.mu.Lock()
	p.floatingExempt = v
	p.mu.Unlock()
}

// SetBlockSpawn toggles app launch blocking.
func (p *Policy) SetBlockSpawn(v bool) {
	p.mu.Lock()
	p.blockSpawn = v
	p.mu.Unlock()
}
