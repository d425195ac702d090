package challenge

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/focusd/internal/logging"
	"github.com/GriffinCanCode/focusd/internal/types"
)

// DefaultPhrase is required by the phrase challenge when no custom phrase is
// configured.
const DefaultPhrase = "I want to stop focusing"

const countdownConfirmations = 3

// Challenge is the confirmation gate between a stop request and the actual
// session halt. Created inert; configured from config reloads; activated by
// Initiate and deactivated by a correct answer or Cancel.
type Challenge struct {
	mu sync.Mutex

	typ      types.ChallengeType
	phrase   string
	expected string
	prompt   string
	active   bool
	confirms int

	rng *rand.Rand
	log *logging.Logger
}

// New creates an inert challenge (type none).
func New(log *logging.Logger) *Challenge {
	return &Challenge{
		phrase:   DefaultPhrase,
		confirms: countdownConfirmations,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      log,
	}
}

// Configure sets the challenge type and, for the phrase challenge, the phrase
// to require. An empty custom phrase keeps the current one.
func (c *Challenge) Configure(typ types.ChallengeType, customPhrase string) {
	c.mu.Lock()
	c.typ = typ
	if customPhrase != "" {
		c.phrase = customPhrase
	}
	c.mu.Unlock()

	c.log.Debug("exit challenge configured", zap.Stringer("type", typ))
}

// Enabled reports whether stopping requires a challenge.
func (c *Challenge) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typ != types.ChallengeNone
}

// Active reports whether a challenge is awaiting an answer.
func (c *Challenge) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Type returns the configured challenge type.
func (c *Challenge) Type() types.ChallengeType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typ
}

// RemainingConfirmations returns the countdown confirmations still required.
func (c *Challenge) RemainingConfirmations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirms
}

// Initiate activates the challenge and returns the prompt to surface. A
// challenge of type none stays inactive and returns an empty prompt.
func (c *Challenge) Initiate() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = true
	c.confirms = countdownConfirmations

	switch c.typ {
	case types.ChallengeTypePhrase:
		c.expected = normalize(c.phrase)
		c.prompt = fmt.Sprintf("To stop the session, type: %q", c.phrase)
		c.log.Info("phrase challenge initiated")

	case types.ChallengeMathProblem:
		c.prompt = c.generateMathProblem()
		c.log.Info("math challenge initiated")

	case types.ChallengeCountdown:
		c.prompt = fmt.Sprintf("Are you SURE you want to stop? (%d confirmations needed)", c.confirms)
		c.log.Info("countdown challenge initiated")

	default:
		c.active = false
		c.prompt = ""
	}

	return c.prompt
}

// Validate checks an answer against the active challenge. A pass deactivates
// the challenge; a failure leaves it active with unlimited retries. For the
// countdown, each yes/y decrements the counter and only the final one passes.
func (c *Challenge) Validate(answer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return true
	}

	got := normalize(answer)

	switch c.typ {
	case types.ChallengeTypePhrase, types.ChallengeMathProblem:
		if got == c.expected {
			c.active = false
			c.log.Info("exit challenge passed", zap.Stringer("type", c.typ))
			return true
		}
		return false

	case types.ChallengeCountdown:
		if got == "yes" || got == "y" {
			c.confirms--
			if c.confirms <= 0 {
				c.active = false
				c.log.Info("countdown challenge passed")
				return true
			}
			c.prompt = fmt.Sprintf("Still sure? (%d more confirmations needed)", c.confirms)
		}
		return false

	default:
		c.active = false
		return true
	}
}

// Cancel force-deactivates the challenge and resets the countdown.
func (c *Challenge) Cancel() {
	c.mu.Lock()
	c.active = false
	c.confirms = countdownConfirmations
	c.mu.Unlock()

	c.log.Debug("exit challenge cancelled")
}

// Hint returns per-type retry guidance.
func (c *Challenge) Hint() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.typ {
	case types.ChallengeTypePhrase:
		return "Hint: type the exact phrase shown (case-insensitive)"
	case types.ChallengeMathProblem:
		return "Hint: calculate the answer and submit just the number"
	case types.ChallengeCountdown:
		return "Hint: keep answering 'yes' to confirm"
	default:
		return ""
	}
}

// generateMathProblem draws operands in [10,50] and one of three operators.
// Subtraction swaps operands to keep the result non-negative; multiplication
// reduces operands to [2,14] to keep the problem tractable. Callers must hold
// the lock.
func (c *Challenge) generateMathProblem() string {
	a := c.rng.Intn(41) + 10
	b := c.rng.Intn(41) + 10

	var result int
	var op string
	switch c.rng.Intn(3) {
	case 0:
		result = a + b
		op = "+"
	case 1:
		if a < b {
			a, b = b, a
		}
		result = a - b
		op = "-"
	default:
		a = a%13 + 2
		b = b%13 + 2
		result = a * b
		op = "×"
	}

	c.expected = fmt.Sprintf("%d", result)
	return fmt.Sprintf("Solve to stop: %d %s %d = ?", a, op, b)
}

// normalize lowercases and strips all whitespace so answers compare loosely.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
