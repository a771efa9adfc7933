package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/statline/canonical/internal/domain/player"
	qb "github.com/statline/canonical/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var playerSelectColumns = []string{
	"id",
	"sport",
	"canonical_name",
	"display_name",
	"team",
	"position",
	"is_active",
	"created_at",
	"updated_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}

	return r.hydrate(ctx, row)
}

func (r *PlayerRepository) GetBySourceID(ctx context.Context, sport, source, externalID string) (player.Player, bool, error) {
	query, args, err := qb.Select("player_id").From("player_source_ids").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("source", source),
			qb.Eq("external_id", externalID),
		).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player source id query: %w", err)
	}

	var playerID string
	if err := r.db.GetContext(ctx, &playerID, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by source id: %w", err)
	}

	return r.GetByID(ctx, playerID)
}

func (r *PlayerRepository) GetActiveByTeamAndName(ctx context.Context, sport, team, canonicalName string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("team", team),
			qb.Eq("canonical_name", canonicalName),
			qb.Eq("is_active", true),
		).
		OrderBy("created_at", "id").
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by team and name query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by team and name: %w", err)
	}

	return r.hydrate(ctx, row)
}

func (r *PlayerRepository) ListActiveByName(ctx context.Context, sport, canonicalName string) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("canonical_name", canonicalName),
			qb.Eq("is_active", true),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by name query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by name: %w", err)
	}
	if len(rows) == 0 {
		return []player.Player{}, nil
	}

	ids := make([]any, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	sourceIDs, err := r.loadSourceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row, sourceIDs[row.ID]))
	}
	return out, nil
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create player tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("players", playerTableModel{
		ID:            p.ID,
		Sport:         p.Sport,
		CanonicalName: p.CanonicalName,
		DisplayName:   p.DisplayName,
		Team:          p.Team,
		Position:      p.Position,
		IsActive:      p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isConflict(err) {
			return player.ErrConflict
		}
		return fmt.Errorf("insert player: %w", err)
	}

	for source, externalID := range p.SourceIDs {
		if err := insertSourceID(ctx, tx, "player_source_ids", "player_id", p.ID, p.Sport, source, externalID); err != nil {
			if isConflict(err) {
				return player.ErrConflict
			}
			return fmt.Errorf("insert player source id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create player tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) AddSourceIDs(ctx context.Context, id, sport string, sourceIDs map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add player source ids tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for source, externalID := range sourceIDs {
		// first mapping per (player, source) wins; later submissions are
		// dropped by the DO NOTHING
		const query = `
INSERT INTO player_source_ids (player_id, sport, source, external_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (player_id, source) DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, id, sport, source, externalID); err != nil {
			if isConflict(err) {
				return player.ErrConflict
			}
			return fmt.Errorf("add player source id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add player source ids tx: %w", err)
	}
	return nil
}

func (r *PlayerRepository) UpdateTeam(ctx context.Context, id, team string) error {
	query, args, err := qb.Update("players").
		Set("team", team).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update player team: %w", err)
	}
	return nil
}

func (r *PlayerRepository) hydrate(ctx context.Context, row playerTableModel) (player.Player, bool, error) {
	sourceIDs, err := r.loadSourceIDs(ctx, []any{row.ID})
	if err != nil {
		return player.Player{}, false, err
	}
	return playerFromRow(row, sourceIDs[row.ID]), true, nil
}

func (r *PlayerRepository) loadSourceIDs(ctx context.Context, playerIDs []any) (map[string]map[string]string, error) {
	query, args, err := qb.Select("player_id AS owner_id", "source", "external_id").
		From("player_source_ids").
		Where(qb.In("player_id", playerIDs)).
		OrderBy("player_id", "source").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player source ids query: %w", err)
	}

	var rows []sourceIDRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player source ids: %w", err)
	}

	return groupSourceIDs(rows), nil
}

func playerFromRow(row playerTableModel, sourceIDs map[string]string) player.Player {
	return player.Player{
		ID:            row.ID,
		Sport:         row.Sport,
		CanonicalName: row.CanonicalName,
		DisplayName:   row.DisplayName,
		Team:          row.Team,
		Position:      row.Position,
		Active:        row.IsActive,
		SourceIDs:     sourceIDs,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}

func insertSourceID(ctx context.Context, tx *sqlx.Tx, table, ownerColumn, ownerID, sport, source, externalID string) error {
	query, args, err := qb.InsertInto(table).
		Columns(ownerColumn, "sport", "source", "external_id").
		Values(ownerID, sport, source, externalID).
		ToSQL()
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func groupSourceIDs(rows []sourceIDRowModel) map[string]map[string]string {
	out := make(map[string]map[string]string, len(rows))
	for _, row := range rows {
		if out[row.OwnerID] == nil {
			out[row.OwnerID] = make(map[string]string)
		}
		out[row.OwnerID][row.Source] = row.ExternalID
	}
	return out
}
