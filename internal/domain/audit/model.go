// Package audit defines the resolution decision trail. Every resolver call
// emits exactly one event: either the record matched an existing canonical
// entity or a new one was created.
package audit

import (
	"context"
	"time"
)

const (
	ActionMatched = "matched"
	ActionCreated = "created"

	EntityTypePlayer = "player"
	EntityTypeGame   = "game"
)

// Event is one resolution decision.
type Event struct {
	EntityType      string
	EntityID        string
	Action          string
	MatchMethod     string
	MatchConfidence *float64
	Timestamp       time.Time
}

// Emitter receives resolution decisions. Emission failures must not abort
// the resolution that produced them; implementations log and move on.
type Emitter interface {
	Emit(ctx context.Context, event Event)
}
