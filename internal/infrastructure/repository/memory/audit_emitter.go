package memory

import (
	"context"
	"sync"

	"github.com/statline/canonical/internal/domain/audit"
)

// AuditEmitter records events in memory for tests and dev mode.
type AuditEmitter struct {
	mu     sync.Mutex
	events []audit.Event
}

func NewAuditEmitter() *AuditEmitter {
	return &AuditEmitter{}
}

func (e *AuditEmitter) Emit(_ context.Context, event audit.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

// Events returns a copy of everything emitted so far, in emission order.
func (e *AuditEmitter) Events() []audit.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]audit.Event, len(e.events))
	copy(out, e.events)
	return out
}
