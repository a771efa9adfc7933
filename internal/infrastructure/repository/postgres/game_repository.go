package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/statline/canonical/internal/domain/game"
	qb "github.com/statline/canonical/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

var gameSelectColumns = []string{
	"id",
	"sport",
	"game_date",
	"away_team",
	"home_team",
	"season",
	"status",
	"created_at",
	"updated_at",
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameSelectColumns...).From("games").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game by id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	return r.hydrate(ctx, row)
}

func (r *GameRepository) GetBySourceID(ctx context.Context, sport, source, externalID string) (game.Game, bool, error) {
	query, args, err := qb.Select("game_id").From("game_source_ids").
		Where(
			qb.Eq("sport", sport),
			qb.Eq("source", source),
			qb.Eq("external_id", externalID),
		).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game source id query: %w", err)
	}

	var gameID string
	if err := r.db.GetContext(ctx, &gameID, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by source id: %w", err)
	}

	return r.GetByID(ctx, gameID)
}

// FindByTeamsWithin picks the stored game closest in time to date when more
// than one falls inside the window.
func (r *GameRepository) FindByTeamsWithin(ctx context.Context, sport, awayTeam, homeTeam string, date time.Time, window time.Duration) (game.Game, bool, error) {
	const query = `
SELECT id, sport, game_date, away_team, home_team, season, status, created_at, updated_at
FROM games
WHERE sport = $1
  AND away_team = $2
  AND home_team = $3
  AND game_date BETWEEN $4 AND $5
ORDER BY ABS(EXTRACT(EPOCH FROM (game_date - $6))), id
LIMIT 1`

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, sport, awayTeam, homeTeam, date.Add(-window), date.Add(window), date); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("find game by teams: %w", err)
	}

	return r.hydrate(ctx, row)
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create game tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("games", gameTableModel{
		ID:        g.ID,
		Sport:     g.Sport,
		GameDate:  g.GameDate,
		AwayTeam:  g.AwayTeam,
		HomeTeam:  g.HomeTeam,
		Season:    g.Season,
		Status:    string(g.Status),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert game query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isConflict(err) {
			return game.ErrConflict
		}
		return fmt.Errorf("insert game: %w", err)
	}

	for source, externalID := range g.SourceIDs {
		if err := insertSourceID(ctx, tx, "game_source_ids", "game_id", g.ID, g.Sport, source, externalID); err != nil {
			if isConflict(err) {
				return game.ErrConflict
			}
			return fmt.Errorf("insert game source id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create game tx: %w", err)
	}
	return nil
}

func (r *GameRepository) AddSourceIDs(ctx context.Context, id, sport string, sourceIDs map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add game source ids tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for source, externalID := range sourceIDs {
		const query = `
INSERT INTO game_source_ids (game_id, sport, source, external_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (game_id, source) DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, id, sport, source, externalID); err != nil {
			if isConflict(err) {
				return game.ErrConflict
			}
			return fmt.Errorf("add game source id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add game source ids tx: %w", err)
	}
	return nil
}

func (r *GameRepository) UpdateStatus(ctx context.Context, id string, status game.Status) error {
	query, args, err := qb.Update("games").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update game status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	return nil
}

func (r *GameRepository) hydrate(ctx context.Context, row gameTableModel) (game.Game, bool, error) {
	query, args, err := qb.Select("game_id AS owner_id", "source", "external_id").
		From("game_source_ids").
		Where(qb.Eq("game_id", row.ID)).
		OrderBy("source").
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game source ids query: %w", err)
	}

	var rows []sourceIDRowModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return game.Game{}, false, fmt.Errorf("select game source ids: %w", err)
	}

	return game.Game{
		ID:        row.ID,
		Sport:     row.Sport,
		GameDate:  row.GameDate,
		AwayTeam:  row.AwayTeam,
		HomeTeam:  row.HomeTeam,
		Season:    row.Season,
		Status:    game.Status(row.Status),
		SourceIDs: groupSourceIDs(rows)[row.ID],
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}
