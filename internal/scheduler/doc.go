// Package scheduler drives the work/break interval clock of a focus session.
//
// A single background goroutine wakes once per second, checks for interval
// boundaries, and fires transition and tick callbacks. The configured total
// duration is informational; the session alternates work and break intervals
// until it is explicitly stopped.
//
// Features:
//   - Pomodoro-style work/break alternation
//   - Pause/resume preserving the remaining interval time
//   - Per-second tick callbacks for state publication
//   - Panic-safe callbacks, invoked outside the state lock
//
// Example Usage:
//
//	s := scheduler.New(log)
//	s.Configure(120, 25, 5)
//	s.SetOnBreakStart(func() { fmt.Println("break!") })
//	s.Start()
package scheduler
