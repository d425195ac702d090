package types

// WorkspaceID identifies a host workspace. Negative IDs denote special
// workspaces and are always exempt from enforcement.
type WorkspaceID int64

// TimerState represents the current state of a focus session timer.
type TimerState int

const (
	StateIdle TimerState = iota
	StateWorking
	StateBreak
	StatePaused
	StateCompleted
)

// String returns the snapshot representation of the state.
func (s TimerState) String() string {
	switch s {
	case StateWorking:
		return "working"
	case StateBreak:
		return "break"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	default:
		return "inactive"
	}
}

// SessionConfig holds the timed durations of a focus session, in minutes.
type SessionConfig struct {
	TotalMinutes int
	WorkMinutes  int
	BreakMinutes int
}

// Clamp corrects out-of-range durations to safe values and reports what was
// changed. Invalid values are corrected, never rejected.
func (c *SessionConfig) Clamp() []string {
	var warnings []string
	if c.TotalMinutes < 1 {
		warnings = append(warnings, "total duration must be >= 1 minute")
		c.TotalMinutes = 1
	}
	if c.WorkMinutes < 1 {
		warnings = append(warnings, "work interval must be >= 1 minute")
		c.WorkMinutes = 1
	}
	if c.BreakMinutes < 0 {
		warnings = append(warnings, "break interval must be >= 0 minutes")
		c.BreakMinutes = 0
	}
	return warnings
}

// Window describes the host window attributes the policy engine needs to
// decide exemption. The host bridge fills this in from compositor state.
type Window struct {
	Class     string      `json:"class"`
	Floating  bool        `json:"floating"`
	Special   bool        `json:"special"`
	Workspace WorkspaceID `json:"workspace"`
}

// Snapshot is the structured session state pushed to the persistence
// collaborator on every tick and transition, and cleared on stop.
type Snapshot struct {
	Active     bool    `json:"active"`
	State      string  `json:"state"`
	Remaining  string  `json:"remaining"`
	Workspaces []int64 `json:"workspaces"`
}

// ChallengeType selects the confirmation gate required to stop a session.
type ChallengeType int

const (
	ChallengeNone ChallengeType = iota
	ChallengeTypePhrase
	ChallengeMathProblem
	ChallengeCountdown
)

// String returns a human-readable challenge type name.
func (t ChallengeType) String() string {
	switch t {
	case ChallengeTypePhrase:
		return "phrase"
	case ChallengeMathProblem:
		return "math"
	case ChallengeCountdown:
		return "countdown"
	default:
		return "none"
	}
}
