package monitoring

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the daemon's Prometheus metrics. A nil *Metrics is safe to
// call, so components can run unmetered in tests.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	SessionsStopped    prometheus.Counter
	BlockedSwitches    prometheus.Counter
	BlockedSpawns      prometheus.Counter
	ChallengeAttempts  prometheus.Counter
	ChallengePasses    prometheus.Counter
	WorkIntervals      prometheus.Counter
	SessionState       prometheus.Gauge
	SnapshotsPublished prometheus.Counter
}

// New creates and registers the metrics set.
func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_sessions_started_total",
			Help: "Total number of focus sessions started",
		}),
		SessionsStopped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_sessions_stopped_total",
			Help: "Total number of focus sessions stopped",
		}),
		BlockedSwitches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_blocked_switches_total",
			Help: "Total number of workspace switches blocked",
		}),
		BlockedSpawns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_blocked_spawns_total",
			Help: "Total number of app launches blocked",
		}),
		ChallengeAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_challenge_attempts_total",
			Help: "Total number of exit challenge answers submitted",
		}),
		ChallengePasses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_challenge_passes_total",
			Help: "Total number of exit challenges passed",
		}),
		WorkIntervals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_work_intervals_completed_total",
			Help: "Total number of completed work intervals",
		}),
		SessionState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "focusd_session_state",
			Help: "Current session state (0=idle 1=working 2=break 3=paused 4=completed)",
		}),
		SnapshotsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "focusd_snapshots_published_total",
			Help: "Total number of state snapshots published",
		}),
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Nil-safe increment helpers so components can run unmetered.

func (m *Metrics) IncSessionsStarted() {
	if m != nil {
		m.SessionsStarted.Inc()
	}
}

func (m *Metrics) IncSessionsStopped() {
	if m != nil {
		m.SessionsStopped.Inc()
	}
}

func (m *Metrics) IncBlockedSwitches() {
	if m != nil {
		m.BlockedSwitches.Inc()
	}
}

func (m *Metrics) IncBlockedSpawns() {
	if m != nil {
		m.BlockedSpawns.Inc()
	}
}

func (m *Metrics) IncChallengeAttempts() {
	if m != nil {
		m.ChallengeAttempts.Inc()
	}
}

func (m *Metrics) IncChallengePasses() {
	if m != nil {
		m.ChallengePasses.Inc()
	}
}

func (m *Metrics) IncWorkIntervals() {
	if m != nil {
		m.WorkIntervals.Inc()
	}
}

func (m *Metrics) IncSnapshotsPublished() {
	if m != nil {
		m.SnapshotsPublished.Inc()
	}
}

// SetState records the session state gauge.
func (m *Metrics) SetState(state float64) {
	if m != nil {
		m.SessionState.Set(state)
	}
}
