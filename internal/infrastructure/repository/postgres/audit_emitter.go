package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/platform/logging"
	qb "github.com/statline/canonical/internal/platform/querybuilder"
)

type auditEventInsertModel struct {
	EntityType      string    `db:"entity_type"`
	EntityID        string    `db:"entity_id"`
	Action          string    `db:"action"`
	MatchMethod     string    `db:"match_method"`
	MatchConfidence *float64  `db:"match_confidence"`
	EventTime       time.Time `db:"event_time"`
}

// AuditEmitter appends resolution decisions to the audit_events table. The
// table is append-only; rows are never updated or deleted here.
type AuditEmitter struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewAuditEmitter(db *sqlx.DB, logger *logging.Logger) *AuditEmitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuditEmitter{db: db, logger: logger}
}

func (e *AuditEmitter) Emit(ctx context.Context, event audit.Event) {
	query, args, err := qb.InsertModel("audit_events", auditEventInsertModel{
		EntityType:      event.EntityType,
		EntityID:        event.EntityID,
		Action:          event.Action,
		MatchMethod:     event.MatchMethod,
		MatchConfidence: event.MatchConfidence,
		EventTime:       event.Timestamp,
	}, "")
	if err != nil {
		e.logger.ErrorContext(ctx, "build insert audit event query", "error", err)
		return
	}
	if _, err := e.db.ExecContext(ctx, query, args...); err != nil {
		// the resolution itself already succeeded; losing one trail row is
		// logged, not propagated
		e.logger.ErrorContext(ctx, "insert audit event",
			"entity_type", event.EntityType, "entity_id", event.EntityID, "error", err)
	}
}
