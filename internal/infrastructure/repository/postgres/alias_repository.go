package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AliasRepository reads the curated player_aliases table. The service never
// writes aliases; curation happens out of band.
type AliasRepository struct {
	db *sqlx.DB
}

func NewAliasRepository(db *sqlx.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

func (r *AliasRepository) Lookup(ctx context.Context, sport, normalizedName, team string) (string, bool, error) {
	// team-scoped rows sort before team-agnostic ones (team = '')
	const query = `
SELECT player_id
FROM player_aliases
WHERE sport = $1
  AND alias = $2
  AND (team = $3 OR team = '')
ORDER BY team DESC
LIMIT 1`

	var playerID string
	if err := r.db.GetContext(ctx, &playerID, query, sport, normalizedName, team); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup player alias: %w", err)
	}
	return playerID, true, nil
}
