package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// Callback is invoked on interval transitions. Callbacks run on the scheduler
// goroutine outside the state lock and should be lightweight; panics are
// recovered and logged, never propagated.
type Callback func()

// TickCallback is invoked roughly once per second with the remaining minutes
// in the current interval and the current state.
type TickCallback func(minutesRemaining int, state types.TimerState)

// Scheduler manages timed work/break intervals for a focus session. A single
// background goroutine drives transitions while a session is active; all
// public methods are safe for concurrent use.
//
// The configured total duration is informational only: the loop alternates
// work and break intervals until Stop is called and never reaches Completed
// on its own. OnSessionComplete is reserved for an explicit completion path.
type Scheduler struct {
	mu sync.Mutex

	totalDuration time.Duration
	workInterval  time.Duration
	breakInterval time.Duration

	state           types.TimerState
	sessionStart    time.Time
	intervalStart   time.Time
	pausedRemaining time.Duration
	completedWork   int

	running bool
	done    chan struct{}
	wake    chan struct{}
	wg      sync.WaitGroup

	// Overridable for tests.
	now func() time.Time

	onWorkStart       Callback
	onBreakStart      Callback
	onSessionComplete Callback
	onTick            TickCallback

	log *logging.Logger
}

// New creates an idle scheduler with default Pomodoro durations.
func New(log *logging.Logger) *Scheduler {
	return &Scheduler{
		totalDuration: 120 * time.Minute,
		workInterval:  25 * time.Minute,
		breakInterval: 5 * time.Minute,
		state:         types.StateIdle,
		wake:          make(chan struct{}, 1),
		now:           time.Now,
		log:           log,
	}
}

// SetOnWorkStart registers the work-interval-start callback.
func (s *Scheduler) SetOnWorkStart(cb Callback) { s.onWorkStart = cb }

// SetOnBreakStart registers the break-interval-start callback.
func (s *Scheduler) SetOnBreakStart(cb Callback) { s.onBreakStart = cb }

// SetOnSessionComplete registers the session-complete callback. The loop never
// fires it; see the type comment.
func (s *Scheduler) SetOnSessionComplete(cb Callback) { s.onSessionComplete = cb }

// SetOnTick registers the per-second tick callback.
func (s *Scheduler) SetOnTick(cb TickCallback) { s.onTick = cb }

// Configure clamps and stores session durations. Callers must stop an active
// session before reconfiguring.
func (s *Scheduler) Configure(totalMinutes, workMinutes, breakMinutes int) {
	cfg := types.SessionConfig{
		TotalMinutes: totalMinutes,
		WorkMinutes:  workMinutes,
		BreakMinutes: breakMinutes,
	}
	for _, w := range cfg.Clamp() {
		s.log.Warn("invalid timer configuration", zap.String("correction", w))
	}

	s.mu.Lock()
	s.totalDuration = time.Duration(cfg.TotalMinutes) * time.Minute
	s.workInterval = time.Duration(cfg.WorkMinutes) * time.Minute
	s.breakInterval = time.Duration(cfg.BreakMinutes) * time.Minute
	s.mu.Unlock()

	s.log.Info("timer configured",
		zap.Int("total_minutes", cfg.TotalMinutes),
		zap.Int("work_minutes", cfg.WorkMinutes),
		zap.Int("break_minutes", cfg.BreakMinutes))
}

// Start begins a new session. It returns false without touching state if a
// session is already running or paused. On success the work-start callback is
// invoked synchronously before Start returns.
func (s *Scheduler) Start() bool {
	if !s.begin() {
		return false
	}

	s.wg.Add(1)
	go s.run()

	s.log.Info("focus session started")
	s.invoke(s.onWorkStart)
	return true
}

// begin resets session state and marks the scheduler running. Split from
// Start so tests can drive step directly without the background loop.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != types.StateIdle && s.state != types.StateCompleted {
		s.log.Warn("cannot start timer: already running or paused")
		return false
	}

	now := s.now()
	s.completedWork = 0
	s.sessionStart = now
	s.intervalStart = now
	s.state = types.StateWorking
	s.running = true
	s.done = make(chan struct{})
	return true
}

// Stop terminates the session. It signals the loop, blocks until the
// background worker has exited, and leaves the scheduler Idle. Safe to call
// multiple times.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.done)
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.state = types.StateIdle
	s.mu.Unlock()

	s.log.Info("focus session stopped")
}

// Pause freezes the current interval, preserving its remaining time. No-op
// unless the session is in a work or break interval.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if s.state != types.StateWorking && s.state != types.StateBreak {
		s.mu.Unlock()
		return
	}

	elapsed := s.now().Sub(s.intervalStart)
	s.pausedRemaining = s.intervalDurationLocked() - elapsed
	s.state = types.StatePaused
	remaining := s.pausedRemaining
	s.mu.Unlock()

	s.wakeLoop()
	s.log.Info("timer paused", zap.Duration("remaining", remaining))
}

// Resume continues a paused session. The interval start is shifted so elapsed
// arithmetic continues seamlessly; the restored state follows the parity of
// completed work intervals (even resumes to work, odd to break).
func (s *Scheduler) Resume() {
	s.mu.Lock()
	if s.state != types.StatePaused {
		s.mu.Unlock()
		return
	}

	var interval time.Duration
	if s.completedWork%2 == 0 {
		interval = s.workInterval
		s.state = types.StateWorking
	} else {
		interval = s.breakInterval
		s.state = types.StateBreak
	}
	s.intervalStart = s.now().Add(-(interval - s.pausedRemaining))
	s.mu.Unlock()

	s.wakeLoop()
	s.log.Info("timer resumed")
}

// State returns the current timer state.
func (s *Scheduler) State() types.TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRunning reports whether the session is in a work or break interval.
func (s *Scheduler) IsRunning() bool {
	st := s.State()
	return st == types.StateWorking || st == types.StateBreak
}

// IsBreak reports whether the session is in a break interval.
func (s *Scheduler) IsBreak() bool {
	return s.State() == types.StateBreak
}

// CompletedWorkIntervals returns the number of finished work intervals.
func (s *Scheduler) CompletedWorkIntervals() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedWork
}

// RemainingSeconds returns the seconds left in the current interval. While
// paused it returns the preserved value; idle returns 0.
func (s *Scheduler) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case types.StatePaused:
		return int(s.pausedRemaining.Seconds())
	case types.StateWorking, types.StateBreak:
		remaining := s.intervalDurationLocked() - s.now().Sub(s.intervalStart)
		if remaining < 0 {
			remaining = 0
		}
		return int(remaining.Seconds())
	default:
		return 0
	}
}

// ElapsedSeconds returns the seconds since the session started, 0 when idle.
func (s *Scheduler) ElapsedSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == types.StateIdle {
		return 0
	}
	return int(s.now().Sub(s.sessionStart).Seconds())
}

// run is the background loop. It wakes at least once per second, or
// immediately on a stop or pause signal, bounding shutdown latency to any
// in-flight callback.
func (s *Scheduler) run() {
	defer s.wg.Done()
	s.log.Debug("scheduler loop started")

	for {
		select {
		case <-s.done:
			s.log.Debug("scheduler loop exiting")
			return
		case <-s.wake:
		case <-time.After(time.Second):
		}

		select {
		case <-s.done:
			s.log.Debug("scheduler loop exiting")
			return
		default:
		}

		s.step(s.now())
	}
}

// step performs one wake cycle: interval transition check, then tick. The
// interval check runs before any total-duration consideration so transitions
// to break happen promptly. Paused sessions progress no time.
func (s *Scheduler) step(now time.Time) {
	s.mu.Lock()
	if s.state != types.StateWorking && s.state != types.StateBreak {
		s.mu.Unlock()
		return
	}

	var transition Callback
	if now.Sub(s.intervalStart) >= s.intervalDurationLocked() {
		if s.state == types.StateWorking {
			s.completedWork++
			s.state = types.StateBreak
			transition = s.onBreakStart
			s.log.Info("break interval started")
		} else {
			s.state = types.StateWorking
			transition = s.onWorkStart
			s.log.Info("work interval started")
		}
		s.intervalStart = now
	}

	remaining := s.intervalDurationLocked() - now.Sub(s.intervalStart)
	if remaining < 0 {
		remaining = 0
	}
	state := s.state
	tick := s.onTick
	s.mu.Unlock()

	// Callbacks run outside the lock so they may call back into the scheduler.
	s.invoke(transition)
	if tick != nil {
		s.invokeTick(tick, int(remaining.Seconds())/60, state)
	}
}

// intervalDurationLocked returns the duration of the active interval. Callers
// must hold the lock.
func (s *Scheduler) intervalDurationLocked() time.Duration {
	if s.state == types.StateBreak {
		return s.breakInterval
	}
	return s.workInterval
}

func (s *Scheduler) wakeLoop() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) invoke(cb Callback) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduler callback panicked", zap.Any("panic", r))
		}
	}()
	cb()
}

func (s *Scheduler) invokeTick(cb TickCallback, minutes int, state types.TimerState) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tick callback panicked", zap.Any("panic", r))
		}
	}()
	cb(minutes, state)
}
