package services

import (
	"errors"
	"sync"
	"time"

	"budget-tracker/internal/config"
	"budget-tracker/internal/models"
)

var ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

const (
	StateClosed   = models.CircuitBreakerClosed
	StateOpen     = models.CircuitBreakerOpen
	StateHalfOpen = models.CircuitBreakerHalfOpen
)

// CircuitBreakerConfig: MaxFailures consecutive failures open the breaker, after
// ResetTimeout a trial call is let through, and ProbeSuccesses trial successes close it.
type CircuitBreakerConfig struct {
	MaxFailures    int
	ResetTimeout   time.Duration
	ProbeSuccesses int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{MaxFailures: 5, ResetTimeout: 30 * time.Second, ProbeSuccesses: 1}
}

// BrokerCircuitBreakerConfig applies the broker settings over the defaults.
func BrokerCircuitBreakerConfig(cfg *config.BrokerConfig) CircuitBreakerConfig {
	cb := DefaultCircuitBreakerConfig()
	if cfg.BreakerFailureThreshold > 0 {
		cb.MaxFailures = cfg.BreakerFailureThreshold
	}
	if cfg.BreakerResetTimeout > 0 {
		cb.ResetTimeout = cfg.BreakerResetTimeout
	}
	return cb
}

type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    models.CircuitBreakerState
	failures int
	probes   int
	openedAt time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, now: time.Now, state: StateClosed}
}

// IsOpen reports whether calls should be skipped. An open breaker whose reset timeout
// has passed moves to half-open and lets the caller through.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.ResetTimeout {
		cb.state = StateHalfOpen
		cb.probes = 0
	}
	return cb.state == StateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.probes++
		if cb.probes >= cb.cfg.ProbeSuccesses {
			cb.state = StateClosed
			cb.failures = 0
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.open()
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.cfg.MaxFailures {
			cb.open()
		}
	}
}

func (cb *CircuitBreaker) open() {
	cb.state = StateOpen
	cb.openedAt = cb.now()
	cb.probes = 0
}

func (cb *CircuitBreaker) GetState() models.CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
