package controller

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/challenge"
	"github.com/GriffinCanCode/focusd/internal/config"
	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/monitoring"
	"github.com/GriffinCanCode/focusd/internal/notify"
	"github.com/GriffinCanCode/focusd/internal/policy"
	"github.com/GriffinCanCode/focusd/internal/scheduler"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// Command errors surfaced to API callers.
var (
	ErrSessionActive = errors.New("a focus session is already running")
	ErrNoSession     = errors.New("no focus session is running")
	ErrNotPaused     = errors.New("session is not paused")
	ErrNoChallenge   = errors.New("no active challenge, request a stop first")
	ErrNoWorkspaces  = errors.New("no valid workspaces specified")
)

// Host is the window system bridge the controller drives for reverts and
// workspace queries.
type Host interface {
	ActiveWorkspace() (types.WorkspaceID, error)
	SwitchWorkspace(id types.WorkspaceID) error
}

// StateSink receives session snapshots for external consumers.
type StateSink interface {
	Publish(snap types.Snapshot) error
	Clear() error
}

// Shaker triggers visual feedback for blocked actions.
type Shaker interface {
	Shake()
}

// Controller coordinates the scheduler, policy, and exit challenge behind a
// single command surface. Every state mutation flows through here; the three
// engines never talk to each other directly.
type Controller struct {
	mu sync.Mutex

	scheduler *scheduler.Scheduler
	policy    *policy.Policy
	challenge *challenge.Challenge

	sessionActive atomic.Bool
	breakTime     atomic.Bool
	reverting     atomic.Bool

	host    Host
	sink    notify.Sink
	state   StateSink
	shaker  Shaker
	metrics *monitoring.Metrics

	defaultWorkMinutes int
	defaultWorkspaces  []types.WorkspaceID
	sessionID          string

	log *logging.Logger
}

// New wires a controller from its collaborators and applies the initial
// configuration.
func New(cfg *config.Config, host Host, sink notify.Sink, state StateSink, shaker Shaker, metrics *monitoring.Metrics, log *logging.Logger) *Controller {
	c := &Controller{
		host:    host,
		sink:    sink,
		state:   state,
		shaker:  shaker,
		metrics: metrics,
		log:     log,
	}

	c.scheduler = scheduler.New(log.Named("scheduler"))
	c.policy = policy.New(&c.sessionActive, &c.breakTime, log.Named("policy"))
	c.challenge = challenge.New(log.Named("challenge"))

	c.scheduler.SetOnWorkStart(c.onWorkStart)
	c.scheduler.SetOnBreakStart(c.onBreakStart)
	c.scheduler.SetOnTick(c.onTick)

	c.applyConfig(cfg)
	return c
}

// applyConfig pushes configuration into the engines.
func (c *Controller) applyConfig(cfg *config.Config) {
	c.defaultWorkMinutes = cfg.Session.WorkMinutes

	c.defaultWorkspaces = c.defaultWorkspaces[:0]
	for _, id := range cfg.Enforce.AllowedWorkspaces {
		if id >= 1 {
			c.defaultWorkspaces = append(c.defaultWorkspaces, types.WorkspaceID(id))
		}
	}

	c.policy.SetEnforceDuringBreak(cfg.Enforce.DuringBreak)
	c.policy.SetFloatingExempt(cfg.Enforce.FloatingExempt)
	c.policy.SetBlockSpawn(cfg.Enforce.BlockSpawn)
	for _, class := range cfg.Enforce.ExceptionClasses {
		if class = strings.TrimSpace(class); class != "" {
			c.policy.AddExceptionClass(class)
		}
	}
	for _, app := range cfg.Enforce.SpawnWhitelist {
		if app = strings.TrimSpace(app); app != "" {
			c.policy.AddSpawnWhitelist(app)
		}
	}

	c.challenge.Configure(types.ChallengeType(cfg.Challenge.Type), cfg.Challenge.Phrase)
}

// Reload re-applies a freshly loaded configuration. Session durations take
// effect on the next start; policy and challenge settings apply immediately.
func (c *Controller) Reload(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyConfig(cfg)
	c.log.Info("configuration reloaded")
}

// Start begins a focus session from a spec of the form "1,2,3@50" where both
// the workspace list and the duration are optional. Falls back to configured
// default workspaces, then to the currently active workspace.
func (c *Controller) Start(specInput string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionActive.Load() {
		return "", ErrSessionActive
	}

	spec := ParseSessionSpec(specInput)
	for _, w := range spec.Warnings {
		c.log.Warn("session spec issue", zap.String("warning", w))
	}

	ids := spec.Workspaces
	if len(ids) == 0 {
		ids = append(ids, c.defaultWorkspaces...)
	}
	if len(ids) == 0 && c.host != nil {
		if ws, err := c.host.ActiveWorkspace(); err == nil && ws >= 1 {
			ids = append(ids, ws)
		} else if err != nil {
			c.log.Warn("failed to query active workspace", zap.Error(err))
		}
	}
	if len(ids) == 0 {
		return "", ErrNoWorkspaces
	}

	work := spec.WorkMinutes
	if work <= 0 {
		work = c.defaultWorkMinutes
	}
	breakMin := max(1, work/5)
	total := work + breakMin

	c.scheduler.Configure(total, work, breakMin)
	c.policy.SetAllowedWorkspaces(ids)
	if c.host != nil {
		if ws, err := c.host.ActiveWorkspace(); err == nil {
			c.policy.SetLastValidWorkspace(ws)
		}
	}

	c.sessionActive.Store(true)
	c.breakTime.Store(false)
	if !c.scheduler.Start() {
		c.sessionActive.Store(false)
		return "", ErrSessionActive
	}

	c.sessionID = uuid.NewString()
	c.metrics.IncSessionsStarted()
	c.publishSnapshot()

	msg := "Focus session started! Allowed workspaces: " + joinWorkspaces(ids)
	c.notifyInfo(msg)
	c.log.Info("session started",
		zap.String("session_id", c.sessionID),
		zap.Int("work_minutes", work),
		zap.Int("break_minutes", breakMin))
	return msg, nil
}

// Stop requests a session stop. With an exit challenge configured the first
// call initiates the challenge and the session keeps running until a correct
// ConfirmStop; force skips the challenge entirely. The bool reports whether
// the session actually stopped.
func (c *Controller) Stop(force bool) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sessionActive.Load() {
		return "", false, ErrNoSession
	}

	if !force && c.challenge.Enabled() {
		if c.challenge.Active() {
			return "Complete the challenge first! Submit your answer to confirm.", false, nil
		}
		prompt := c.challenge.Initiate()
		c.notifyWarning(prompt)
		return prompt, false, nil
	}

	return c.haltLocked(), true, nil
}

// ConfirmStop submits an answer to the active exit challenge. The bool reports
// whether the session stopped.
func (c *Controller) ConfirmStop(answer string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.challenge.Active() {
		return "", false, ErrNoChallenge
	}
	if strings.TrimSpace(answer) == "" {
		return "", false, errors.New("please provide an answer")
	}

	c.metrics.IncChallengeAttempts()
	if c.challenge.Validate(answer) {
		c.metrics.IncChallengePasses()
		msg := "Challenge passed! " + c.haltLocked()
		return msg, true, nil
	}

	if c.challenge.Type() == types.ChallengeCountdown && isAffirmative(answer) {
		msg := fmt.Sprintf("Keep going! %d more confirmations needed.", c.challenge.RemainingConfirmations())
		c.notifyWarning(msg)
		return msg, false, nil
	}

	msg := "Wrong answer! " + c.challenge.Hint()
	c.notifyError(msg)
	return msg, false, nil
}

// haltLocked stops the session unconditionally. Elapsed time is read before
// the scheduler resets to idle. Callers must hold the command lock.
func (c *Controller) haltLocked() string {
	elapsed := c.scheduler.ElapsedSeconds()

	c.sessionActive.Store(false)
	c.breakTime.Store(false)
	c.scheduler.Stop()
	c.challenge.Cancel()

	c.metrics.IncSessionsStopped()
	c.metrics.SetState(float64(types.StateIdle))
	if err := c.state.Clear(); err != nil {
		c.log.Warn("failed to clear session state", zap.Error(err))
	}

	msg := "Focus session stopped. Total time: " + FormatMMSS(elapsed)
	c.notifyInfo(msg)
	c.log.Info("session stopped",
		zap.String("session_id", c.sessionID),
		zap.Int("elapsed_seconds", elapsed))
	return msg
}

// Pause freezes the session clock. Enforcement continues while paused.
func (c *Controller) Pause() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sessionActive.Load() {
		return "", ErrNoSession
	}
	if c.scheduler.State() == types.StatePaused {
		return "Session is already paused.", nil
	}

	c.scheduler.Pause()
	c.metrics.SetState(float64(types.StatePaused))
	c.publishSnapshot()

	msg := "Focus session paused."
	c.notifyInfo(msg)
	return msg, nil
}

// Resume continues a paused session.
func (c *Controller) Resume() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sessionActive.Load() {
		return "", ErrNoSession
	}
	if c.scheduler.State() != types.StatePaused {
		return "", ErrNotPaused
	}

	c.scheduler.Resume()
	c.metrics.SetState(float64(c.scheduler.State()))
	c.publishSnapshot()

	msg := "Focus session resumed."
	c.notifyInfo(msg)
	return msg, nil
}

// Toggle stops an active session (challenge rules apply) or starts a new one
// from the given spec.
func (c *Controller) Toggle(specInput string) (string, error) {
	if c.sessionActive.Load() {
		msg, _, err := c.Stop(false)
		return msg, err
	}
	return c.Start(specInput)
}

// AllowWorkspace adds a workspace to the allow-list mid-session.
func (c *Controller) AllowWorkspace(id types.WorkspaceID) (string, error) {
	if id < 1 {
		return "", fmt.Errorf("invalid workspace ID %d: must be >= 1", id)
	}
	c.policy.AddAllowedWorkspace(id)
	msg := fmt.Sprintf("Workspace %d added to allowed list.", id)
	c.notifyInfo(msg)
	return msg, nil
}

// DisallowWorkspace removes a workspace from the allow-list.
func (c *Controller) DisallowWorkspace(id types.WorkspaceID) (string, error) {
	if id < 1 {
		return "", fmt.Errorf("invalid workspace ID %d: must be >= 1", id)
	}
	c.policy.RemoveAllowedWorkspace(id)
	msg := fmt.Sprintf("Workspace %d removed from allowed list.", id)
	c.notifyInfo(msg)
	return msg, nil
}

// AddExceptionClass exempts a window class from enforcement.
func (c *Controller) AddExceptionClass(class string) (string, error) {
	class = strings.TrimSpace(class)
	if class == "" {
		return "", errors.New("window class must not be empty")
	}
	c.policy.AddExceptionClass(class)
	return fmt.Sprintf("Window class %q exempted from enforcement.", class), nil
}

// AllowApp whitelists an app for launching during sessions.
func (c *Controller) AllowApp(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("app name must not be empty")
	}
	c.policy.AddSpawnWhitelist(name)
	msg := fmt.Sprintf("App %q added to launch whitelist.", name)
	c.notifyInfo(msg)
	return msg, nil
}

// DisallowApp removes an app from the launch whitelist.
func (c *Controller) DisallowApp(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("app name must not be empty")
	}
	c.policy.RemoveSpawnWhitelist(name)
	msg := fmt.Sprintf("App %q removed from launch whitelist.", name)
	c.notifyInfo(msg)
	return msg, nil
}

// Status returns a human-readable session summary and the structured snapshot.
// Read-only, no side effects.
func (c *Controller) Status() (string, types.Snapshot) {
	snap := c.snapshot()
	if !snap.Active {
		return "No active focus session.", snap
	}

	msg := fmt.Sprintf("Session: %s | Remaining: %s | Elapsed: %s | Workspaces: %s",
		strings.ToUpper(snap.State),
		snap.Remaining,
		FormatMMSS(c.scheduler.ElapsedSeconds()),
		joinWorkspaces(c.policy.AllowedWorkspaces()))
	return msg, snap
}

// SessionID returns the identifier of the current session, empty when idle.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sessionActive.Load() {
		return ""
	}
	return c.sessionID
}

// ChallengeActive reports whether a stop confirmation is pending.
func (c *Controller) ChallengeActive() bool {
	return c.challenge.Active()
}

// Shutdown force-stops any active session and clears published state. Used on
// daemon exit.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessionActive.Load() {
		c.haltLocked()
		return
	}
	if err := c.state.Clear(); err != nil {
		c.log.Warn("failed to clear session state", zap.Error(err))
	}
}

// Scheduler callbacks, invoked on the scheduler goroutine.

// onWorkStart marks the end of a break. The notification is suppressed in the
// first seconds of a session so the initial work interval does not double up
// with the start message.
func (c *Controller) onWorkStart() {
	c.breakTime.Store(false)
	c.metrics.SetState(float64(types.StateWorking))
	c.publishSnapshot()

	if c.scheduler.ElapsedSeconds() > 5 {
		c.notifyInfo("Break over, back to work!")
	}
}

func (c *Controller) onBreakStart() {
	c.breakTime.Store(true)
	c.metrics.IncWorkIntervals()
	c.metrics.SetState(float64(types.StateBreak))
	c.publishSnapshot()

	c.notifyInfo("Break time! Step away for a few minutes.")
}

func (c *Controller) onTick(_ int, _ types.TimerState) {
	c.publishSnapshot()
}

// snapshot captures the current session state for publication.
func (c *Controller) snapshot() types.Snapshot {
	ids := c.policy.AllowedWorkspaces()
	workspaces := make([]int64, len(ids))
	for i, id := range ids {
		workspaces[i] = int64(id)
	}

	return types.Snapshot{
		Active:     c.sessionActive.Load(),
		State:      c.scheduler.State().String(),
		Remaining:  FormatMMSS(c.scheduler.RemainingSeconds()),
		Workspaces: workspaces,
	}
}

func (c *Controller) publishSnapshot() {
	if err := c.state.Publish(c.snapshot()); err != nil {
		c.log.Warn("failed to publish session state", zap.Error(err))
		return
	}
	c.metrics.IncSnapshotsPublished()
}

func isAffirmative(answer string) bool {
	answer = strings.TrimSpace(answer)
	return strings.EqualFold(answer, "yes") || strings.EqualFold(answer, "y")
}

func (c *Controller) notifyInfo(msg string) {
	c.sink.Notify(msg, notify.SeverityInfo, 3*time.Second)
}

func (c *Controller) notifyWarning(msg string) {
	c.sink.Notify(msg, notify.SeverityWarning, 4*time.Second)
}

func (c *Controller) notifyError(msg string) {
	c.sink.Notify(msg, notify.SeverityError, 5*time.Second)
}
