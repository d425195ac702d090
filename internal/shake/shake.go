package shake

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
)

// Animator moves the focused window by a pixel offset. The host bridge
// provides the real implementation; failures are best-effort.
type Animator interface {
	MoveActiveWindow(dx, dy int) error
}

// Shaker runs a one-shot shake animation on the focused window as visual
// feedback for blocked actions. Triggers are coalesced: a shake requested
// while one is in flight is ignored. Purely cosmetic, no decision-making
// role.
type Shaker struct {
	animator  Animator
	intensity int
	duration  time.Duration
	frequency time.Duration
	shaking   atomic.Bool
	log       *logging.Logger
}

// New creates a shaker with clamped parameters.
func New(animator Animator, intensityPx, durationMs, frequencyMs int, log *logging.Logger) *Shaker {
	intensityPx = min(max(intensityPx, 1), 100)
	if durationMs < 0 {
		durationMs = 300
	}
	if frequencyMs < 10 {
		frequencyMs = 50
	}

	return &Shaker{
		animator:  animator,
		intensity: intensityPx,
		duration:  time.Duration(durationMs) * time.Millisecond,
		frequency: time.Duration(frequencyMs) * time.Millisecond,
		log:       log,
	}
}

// Shake triggers the animation. Returns immediately; ignored while a shake
// is already in flight.
func (s *Shaker) Shake() {
	if s.animator == nil {
		return
	}
	if !s.shaking.CompareAndSwap(false, true) {
		return
	}

	go s.run()
}

func (s *Shaker) run() {
	defer s.shaking.Store(false)

	steps := int(s.duration / s.frequency)
	offset := s.intensity
	for i := 0; i < steps; i++ {
		if err := s.animator.MoveActiveWindow(offset, 0); err != nil {
			s.log.Debug("shake move failed", zap.Error(err))
			return
		}
		offset = -offset
		time.Sleep(s.frequency)
	}

	// Undo the net offset so the window lands where it started.
	if steps%2 != 0 {
		if err := s.animator.MoveActiveWindow(-s.intensity, 0); err != nil {
			s.log.Debug("shake restore failed", zap.Error(err))
		}
	}
}
