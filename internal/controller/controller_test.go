package controller

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/focusd/internal/config"
	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/notify"
	"github.com/GriffinCanCode/focusd/internal/types"
)

type fakeHost struct {
	mu        sync.Mutex
	active    types.WorkspaceID
	activeErr error
	switches  []types.WorkspaceID
}

func (h *fakeHost) ActiveWorkspace() (types.WorkspaceID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active, h.activeErr
}

func (h *fakeHost) SwitchWorkspace(id types.WorkspaceID) error {
	h.mu.Lock()
	h.switches = append(h.switches, id)
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) switched() []types.WorkspaceID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]types.WorkspaceID(nil), h.switches...)
}

type memorySink struct {
	mu       sync.Mutex
	messages []string
}

func (s *memorySink) Notify(message string, _ notify.Severity, _ time.Duration) {
	s.mu.Lock()
	s.messages = append(s.messages, message)
	s.mu.Unlock()
}

type memoryState struct {
	mu      sync.Mutex
	last    types.Snapshot
	cleared int
}

func (s *memoryState) Publish(snap types.Snapshot) error {
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	return nil
}

func (s *memoryState) Clear() error {
	s.mu.Lock()
	s.cleared++
	s.mu.Unlock()
	return nil
}

func (s *memoryState) snapshot() types.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

type countingShaker struct {
	mu    sync.Mutex
	count int
}

func (s *countingShaker) Shake() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
}

func (s *countingShaker) shakes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{TotalMinutes: 120, WorkMinutes: 25, BreakMinutes: 5},
		Enforce: config.EnforceConfig{
			FloatingExempt:   true,
			BlockSpawn:       true,
			ExceptionClasses: []string{"rofi"},
		},
		Challenge: config.ChallengeConfig{Phrase: "I want to stop focusing"},
	}
}

type fixture struct {
	ctrl   *Controller
	host   *fakeHost
	sink   *memorySink
	state  *memoryState
	shaker *countingShaker
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	f := &fixture{
		host:   &fakeHost{active: 1},
		sink:   &memorySink{},
		state:  &memoryState{},
		shaker: &countingShaker{},
	}
	f.ctrl = New(cfg, f.host, f.sink, f.state, f.shaker, nil, logging.NewNop())
	t.Cleanup(f.ctrl.Shutdown)
	return f
}

func TestStartAndDoubleStart(t *testing.T) {
	f := newFixture(t, nil)

	msg, err := f.ctrl.Start("1,2@50")
	require.NoError(t, err)
	assert.Equal(t, "Focus session started! Allowed workspaces: 1, 2", msg)
	assert.NotEmpty(t, f.ctrl.SessionID())

	_, err = f.ctrl.Start("3")
	assert.ErrorIs(t, err, ErrSessionActive)

	snap := f.state.snapshot()
	assert.True(t, snap.Active)
	assert.Equal(t, "working", snap.State)
	assert.Equal(t, []int64{1, 2}, snap.Workspaces)
}

func TestStartFallsBackToActiveWorkspace(t *testing.T) {
	f := newFixture(t, nil)
	f.host.active = 5

	msg, err := f.ctrl.Start("")
	require.NoError(t, err)
	assert.Contains(t, msg, "Allowed workspaces: 5")
}

func TestStartUsesConfiguredDefaults(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Enforce.AllowedWorkspaces = []int64{2, 3}
	})

	msg, err := f.ctrl.Start("")
	require.NoError(t, err)
	assert.Contains(t, msg, "Allowed workspaces: 2, 3")
}

func TestStartWithNoWorkspacesFails(t *testing.T) {
	f := newFixture(t, nil)
	f.host.activeErr = errors.New("socket closed")

	_, err := f.ctrl.Start("")
	assert.ErrorIs(t, err, ErrNoWorkspaces)
}

func TestStopWithoutSession(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.ctrl.Stop(false)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestStopWithoutChallengeStopsImmediately(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	msg, stopped, err := f.ctrl.Stop(false)
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Contains(t, msg, "Focus session stopped. Total time: ")
	assert.Empty(t, f.ctrl.SessionID())
	assert.Equal(t, 1, f.state.cleared)
}

func TestChallengeGatedStop(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) {
		cfg.Challenge.Type = 1
		cfg.Challenge.Phrase = "let me out"
	})
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	prompt, stopped, err := f.ctrl.Stop(false)
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Contains(t, prompt, "let me out")
	assert.True(t, f.ctrl.ChallengeActive())

	// A repeated stop nags instead of re-initiating.
	msg, stopped, err := f.ctrl.Stop(false)
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Contains(t, msg, "Complete the challenge first!")

	msg, stopped, err = f.ctrl.ConfirmStop("wrong")
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Contains(t, msg, "Wrong answer!")

	msg, stopped, err = f.ctrl.ConfirmStop("LET me OUT")
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Contains(t, msg, "Challenge passed!")
	assert.False(t, f.ctrl.ChallengeActive())
}

func TestForceStopSkipsChallenge(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Challenge.Type = 1 })
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	_, stopped, err := f.ctrl.Stop(true)
	require.NoError(t, err)
	assert.True(t, stopped)
}

func TestCountdownChallenge(t *testing.T) {
	f := newFixture(t, func(cfg *config.Config) { cfg.Challenge.Type = 3 })
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	_, stopped, err := f.ctrl.Stop(false)
	require.NoError(t, err)
	require.False(t, stopped)

	msg, stopped, err := f.ctrl.ConfirmStop("yes")
	require.NoError(t, err)
	assert.False(t, stopped)
	assert.Equal(t, "Keep going! 2 more confirmations needed.", msg)

	_, stopped, err = f.ctrl.ConfirmStop("y")
	require.NoError(t, err)
	require.False(t, stopped)

	msg, stopped, err = f.ctrl.ConfirmStop("yes")
	require.NoError(t, err)
	assert.True(t, stopped)
	assert.Contains(t, msg, "Challenge passed!")
}

func TestConfirmWithoutChallenge(t *testing.T) {
	f := newFixture(t, nil)

	_, _, err := f.ctrl.ConfirmStop("yes")
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestPauseResume(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.ctrl.Pause()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = f.ctrl.Start("1")
	require.NoError(t, err)

	_, err = f.ctrl.Resume()
	assert.ErrorIs(t, err, ErrNotPaused)

	msg, err := f.ctrl.Pause()
	require.NoError(t, err)
	assert.Equal(t, "Focus session paused.", msg)
	assert.Equal(t, "paused", f.state.snapshot().State)

	msg, err = f.ctrl.Resume()
	require.NoError(t, err)
	assert.Equal(t, "Focus session resumed.", msg)
	assert.Equal(t, "working", f.state.snapshot().State)
}

func TestToggle(t *testing.T) {
	f := newFixture(t, nil)

	msg, err := f.ctrl.Toggle("1")
	require.NoError(t, err)
	assert.Contains(t, msg, "Focus session started!")

	msg, err = f.ctrl.Toggle("")
	require.NoError(t, err)
	assert.Contains(t, msg, "Focus session stopped.")
}

func TestStatus(t *testing.T) {
	f := newFixture(t, nil)

	msg, snap := f.ctrl.Status()
	assert.Equal(t, "No active focus session.", msg)
	assert.False(t, snap.Active)

	_, err := f.ctrl.Start("1,2@50")
	require.NoError(t, err)

	msg, snap = f.ctrl.Status()
	assert.Contains(t, msg, "Session: WORKING")
	assert.Contains(t, msg, "Workspaces: 1, 2")
	assert.True(t, snap.Active)
	assert.Equal(t, []int64{1, 2}, snap.Workspaces)
}

func TestWorkspaceListCommands(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	_, err = f.ctrl.AllowWorkspace(0)
	assert.Error(t, err)

	_, err = f.ctrl.AllowWorkspace(4)
	require.NoError(t, err)
	_, snap := f.ctrl.Status()
	assert.Contains(t, snap.Workspaces, int64(4))

	_, err = f.ctrl.DisallowWorkspace(4)
	require.NoError(t, err)
	_, snap = f.ctrl.Status()
	assert.NotContains(t, snap.Workspaces, int64(4))
}

func TestBlockedSwitchReverts(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctrl.Start("1,2")
	require.NoError(t, err)

	// Allowed switch updates the revert target.
	f.ctrl.HandleWorkspaceChange(2)
	// Disallowed switch reverts to it.
	f.ctrl.HandleWorkspaceChange(3)

	assert.Equal(t, []types.WorkspaceID{2}, f.host.switched())
	assert.Equal(t, 1, f.shaker.shakes())
}

func TestSpecialWorkspaceNeverBlocked(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	f.ctrl.HandleWorkspaceChange(-99)
	assert.Empty(t, f.host.switched())
}

func TestSwitchIgnoredWhenIdle(t *testing.T) {
	f := newFixture(t, nil)

	f.ctrl.HandleWorkspaceChange(9)
	assert.Empty(t, f.host.switched())
	assert.Zero(t, f.shaker.shakes())
}

func TestSpawnBlocking(t *testing.T) {
	f := newFixture(t, nil)

	assert.True(t, f.ctrl.HandleSpawn("steam"), "no session, everything allowed")

	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	assert.False(t, f.ctrl.HandleSpawn("steam"))
	assert.Equal(t, 1, f.shaker.shakes())

	_, err = f.ctrl.AllowApp("steam")
	require.NoError(t, err)
	assert.True(t, f.ctrl.HandleSpawn("Steam --silent"))
}

func TestWindowExemption(t *testing.T) {
	f := newFixture(t, nil)

	assert.True(t, f.ctrl.WindowExempt(nil))
	assert.True(t, f.ctrl.WindowExempt(&types.Window{Class: "rofi", Workspace: 1}))
	assert.True(t, f.ctrl.WindowExempt(&types.Window{Class: "kitty", Floating: true, Workspace: 1}))
	assert.False(t, f.ctrl.WindowExempt(&types.Window{Class: "kitty", Workspace: 1}))
}

func TestReloadUpdatesChallenge(t *testing.T) {
	f := newFixture(t, nil)

	cfg := testConfig()
	cfg.Challenge.Type = 1
	f.ctrl.Reload(cfg)

	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	_, stopped, err := f.ctrl.Stop(false)
	require.NoError(t, err)
	assert.False(t, stopped, "reload enabled the exit challenge")
}

func TestShutdownClearsState(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.ctrl.Start("1")
	require.NoError(t, err)

	f.ctrl.Shutdown()
	assert.GreaterOrEqual(t, f.state.cleared, 1)
	assert.Empty(t, f.ctrl.SessionID())
}
