package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

func TestConfigureClampsInvalidDurations(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(0, 0, -5)

	assert.Equal(t, time.Minute, s.totalDuration)
	assert.Equal(t, time.Minute, s.workInterval)
	assert.Equal(t, time.Duration(0), s.breakInterval)
}

func TestStartWhileActiveFails(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	require.True(t, s.Start())
	defer s.Stop()

	start := s.sessionStart
	require.Equal(t, types.StateWorking, s.State())

	assert.False(t, s.Start())
	assert.Equal(t, types.StateWorking, s.State())
	assert.Equal(t, start, s.sessionStart)
	assert.Equal(t, 0, s.CompletedWorkIntervals())
}

func TestStartInvokesWorkStartSynchronously(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	fired := 0
	s.SetOnWorkStart(func() { fired++ })

	require.True(t, s.Start())
	assert.Equal(t, 1, fired)
	s.Stop()
}

func TestStopIsIdempotentAndRestartable(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	require.True(t, s.Start())
	s.Stop()
	s.Stop()
	assert.Equal(t, types.StateIdle, s.State())

	require.True(t, s.Start())
	s.Stop()
	assert.Equal(t, types.StateIdle, s.State())
}

func TestRemainingSecondsWithinBounds(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	assert.Equal(t, 0, s.RemainingSeconds())

	require.True(t, s.Start())
	defer s.Stop()

	r := s.RemainingSeconds()
	assert.GreaterOrEqual(t, r, 0)
	assert.LessOrEqual(t, r, 25*60)
}

func TestPauseResumePreservesRemaining(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	require.True(t, s.Start())
	defer s.Stop()

	s.Pause()
	require.Equal(t, types.StatePaused, s.State())
	before := s.RemainingSeconds()

	s.Resume()
	require.Equal(t, types.StateWorking, s.State())
	after := s.RemainingSeconds()

	assert.InDelta(t, before, after, 1)
}

func TestPauseIgnoredWhenIdle(t *testing.T) {
	s := New(logging.NewNop())
	s.Pause()
	assert.Equal(t, types.StateIdle, s.State())

	s.Resume()
	assert.Equal(t, types.StateIdle, s.State())
}

func TestWorkBreakCycle(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	var workStarts, breakStarts, completes int
	s.SetOnWorkStart(func() { workStarts++ })
	s.SetOnBreakStart(func() { breakStarts++ })
	s.SetOnSessionComplete(func() { completes++ })

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.True(t, s.begin())
	require.Equal(t, types.StateWorking, s.State())

	// One second in: no transition yet.
	current = base.Add(time.Second)
	s.step(current)
	assert.Equal(t, types.StateWorking, s.State())
	assert.Equal(t, 0, breakStarts)

	// Work interval elapses: transition to break.
	current = base.Add(25 * time.Minute)
	s.step(current)
	assert.Equal(t, types.StateBreak, s.State())
	assert.Equal(t, 1, breakStarts)
	assert.Equal(t, 1, s.CompletedWorkIntervals())

	// Break elapses: back to work, cycle repeats.
	current = current.Add(5 * time.Minute)
	s.step(current)
	assert.Equal(t, types.StateWorking, s.State())
	assert.Equal(t, 1, workStarts)
	assert.Equal(t, 1, s.CompletedWorkIntervals())

	// The loop never completes the session on its own.
	current = current.Add(10 * time.Hour)
	s.step(current)
	assert.Equal(t, 0, completes)

	s.Stop()
}

func TestTickReportsRemainingMinutesAndState(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	var gotMinutes int
	var gotState types.TimerState
	s.SetOnTick(func(minutes int, state types.TimerState) {
		gotMinutes = minutes
		gotState = state
	})

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.True(t, s.begin())

	current = base.Add(5 * time.Minute)
	s.step(current)
	assert.Equal(t, 20, gotMinutes)
	assert.Equal(t, types.StateWorking, gotState)

	s.Stop()
}

func TestZeroBreakIntervalFlipsImmediately(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(26, 25, 0)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.True(t, s.begin())

	current = base.Add(25 * time.Minute)
	s.step(current)
	assert.Equal(t, types.StateBreak, s.State())

	s.step(current)
	assert.Equal(t, types.StateWorking, s.State())
	assert.Equal(t, 1, s.CompletedWorkIntervals())

	s.Stop()
}

func TestResumeRestoresStateByParity(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.True(t, s.begin())

	current = base.Add(25 * time.Minute)
	s.step(current)
	require.Equal(t, types.StateBreak, s.State())

	current = current.Add(time.Minute)
	s.Pause()
	require.Equal(t, types.StatePaused, s.State())
	assert.Equal(t, 4*60, s.RemainingSeconds())

	s.Resume()
	assert.Equal(t, types.StateBreak, s.State())
	assert.Equal(t, 4*60, s.RemainingSeconds())

	s.Stop()
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	s := New(logging.NewNop())
	s.Configure(30, 25, 5)

	s.SetOnBreakStart(func() { panic("boom") })

	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	current := base
	s.now = func() time.Time { return current }

	require.True(t, s.begin())

	current = base.Add(25 * time.Minute)
	assert.NotPanics(t, func() { s.step(current) })
	assert.Equal(t, types.StateBreak, s.State())

	s.Stop()
}

func TestElapsedSecondsZeroWhenIdle(t *testing.T) {
	s := New(logging.NewNop())
	assert.Equal(t, 0, s.ElapsedSeconds())
}
