// Package auditsink holds the audit.Emitter implementations: structured log,
// webhook, and a fanout combining them. The postgres sink lives with the
// other repositories.
package auditsink

import (
	"context"

	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/platform/logging"
)

// LogEmitter writes every resolution decision as a structured log line. It is
// the always-on sink; the trail stays greppable even when the database or
// webhook sinks are disabled.
type LogEmitter struct {
	logger *logging.Logger
}

func NewLogEmitter(logger *logging.Logger) *LogEmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, event audit.Event) {
	fields := []any{
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"action", event.Action,
		"match_method", event.MatchMethod,
		"event_time", event.Timestamp,
	}
	if event.MatchConfidence != nil {
		fields = append(fields, "match_confidence", *event.MatchConfidence)
	}
	e.logger.InfoContext(ctx, "resolution decision", fields...)
}

// Fanout delivers each event to every configured sink in order.
type Fanout []audit.Emitter

func (f Fanout) Emit(ctx context.Context, event audit.Event) {
	for _, sink := range f {
		sink.Emit(ctx, event)
	}
}
