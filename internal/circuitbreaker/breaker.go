// Package circuitbreaker protects the router from bridge providers that keep
// failing downstream or start quoting erroneous fees.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
)

// ErrOpen is returned while the breaker blocks traffic
var ErrOpen = errors.New("circuit breaker open: provider protection engaged")

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, no transfers allowed
	StateHalfOpen              // Testing if the provider has recovered
)

// String returns the state name used in logs and status output
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Thresholds defines the limits that will trigger the circuit breaker
type Thresholds struct {
	// Consecutive downstream failures before the circuit trips
	MaxFailures int `json:"max_failures" yaml:"max_failures"`

	// Maximum quoted fee as basis points of the amount; 0 disables the check
	MaxFeeBps uint64 `json:"max_fee_bps,omitempty" yaml:"max_fee_bps,omitempty"`
}

// DefaultThresholds trips after five straight failures or a fee above 10%
func DefaultThresholds() Thresholds {
	return Thresholds{MaxFailures: 5, MaxFeeBps: fixedpoint.MaxFeeBps}
}

// CircuitBreaker implements the circuit breaker pattern around one provider
type CircuitBreaker struct {
	// Configuration thresholds for triggering the circuit breaker
	thresholds Thresholds

	// Current state of the circuit breaker (Closed, Open, HalfOpen)
	state State

	// Timestamp of the last circuit trip
	lastTrip time.Time

	// Duration before auto-reset attempt
	resetDelay time.Duration

	// Mutex for thread safety
	mu sync.RWMutex

	// Consecutive failures while closed
	failures int

	// Count of consecutive successful operations in HalfOpen state
	successCount int

	// Number of successful operations required to close circuit
	successThreshold int

	// Event callback for monitoring/alerting
	onTripCallback func(reason string)

	now func() time.Time
}

// New creates a new CircuitBreaker with the provided thresholds
func New(t Thresholds) *CircuitBreaker {
	if t.MaxFailures <= 0 {
		t.MaxFailures = DefaultThresholds().MaxFailures
	}
	return &CircuitBreaker{
		thresholds:       t,
		state:            StateClosed,
		resetDelay:       5 * time.Minute,
		successThreshold: 1,
		now:              time.Now,
	}
}

// WithResetDelay sets a custom reset delay and returns the circuit breaker
func (cb *CircuitBreaker) WithResetDelay(delay time.Duration) *CircuitBreaker {
	cb.resetDelay = delay
	return cb
}

// WithSuccessThreshold sets the number of successful operations needed to close the circuit
func (cb *CircuitBreaker) WithSuccessThreshold(threshold int) *CircuitBreaker {
	cb.successThreshold = threshold
	return cb
}

// WithTripCallback sets a callback function that is called when the circuit trips
func (cb *CircuitBreaker) WithTripCallback(callback func(reason string)) *CircuitBreaker {
	cb.onTripCallback = callback
	return cb
}

// WithClock overrides the clock used for reset timing
func (cb *CircuitBreaker) WithClock(now func() time.Time) *CircuitBreaker {
	cb.now = now
	return cb
}

// Allow reports whether an operation may proceed. An open circuit moves to
// half-open once the reset delay has passed.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastTrip) <= cb.resetDelay {
			return ErrOpen
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		logrus.Info("Circuit breaker half-open: testing provider recovery")
	}
	return nil
}

// Ready reports whether the provider may be offered to callers, applying
// the half-open transition once the reset delay has passed
func (cb *CircuitBreaker) Ready() bool {
	return cb.Allow() == nil
}

// CheckFee trips the circuit when fee exceeds the configured share of amount
func (cb *CircuitBreaker) CheckFee(fee, amount *uint256.Int) error {
	if cb.thresholds.MaxFeeBps == 0 || fee == nil || amount == nil || amount.IsZero() {
		return nil
	}
	limit := fixedpoint.Bps(amount, cb.thresholds.MaxFeeBps)
	if !fee.Gt(limit) {
		return nil
	}

	reason := fmt.Sprintf("quoted fee exceeds maximum threshold: %s > %s",
		fixedpoint.String(fee), fixedpoint.String(limit))
	cb.mu.Lock()
	cb.trip(reason)
	cb.mu.Unlock()
	return errors.New(reason)
}

// RecordSuccess notes a successful operation
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.successCount = 0
			logrus.Info("Circuit breaker closed: provider has recovered")
		}
	}
}

// RecordFailure notes a failed operation and trips the circuit when the
// failure budget is spent. Any failure while half-open trips it again.
func (cb *CircuitBreaker) RecordFailure(cause error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trip(fmt.Sprintf("failure while half-open: %v", cause))
		return
	}
	cb.failures++
	if cb.state == StateClosed && cb.failures >= cb.thresholds.MaxFailures {
		cb.trip(fmt.Sprintf("%d consecutive failures, last: %v", cb.failures, cause))
	}
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forcibly resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.successCount = 0
	cb.failures = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// trip sets the circuit breaker to open state. The caller must hold cb.mu.
func (cb *CircuitBreaker) trip(reason string) {
	cb.state = StateOpen
	cb.lastTrip = cb.now()
	cb.failures = 0
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if cb.onTripCallback != nil {
		go cb.onTripCallback(reason)
	}
}
