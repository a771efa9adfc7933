package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	breaker := NewCircuitBreaker(2, time.Minute, 1)

	if err := breaker.Allow(); err != nil {
		t.Fatalf("closed breaker should allow: %v", err)
	}
	breaker.RecordFailure()
	breaker.RecordFailure()

	if err := breaker.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if state := breaker.State(); state != CircuitStateOpen {
		t.Fatalf("expected open state, got %s", state)
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	breaker := NewCircuitBreaker(1, time.Minute, 1)
	current := time.Now()
	breaker.now = func() time.Time { return current }

	breaker.RecordFailure()
	current = current.Add(2 * time.Minute)

	if err := breaker.Allow(); err != nil {
		t.Fatalf("half-open breaker should allow one probe: %v", err)
	}
	breaker.RecordSuccess()

	if state := breaker.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed state after probe success, got %s", state)
	}
}
