package player

import (
	"context"
	"errors"
)

// ErrConflict reports that a write lost a uniqueness race: another caller
// already persisted a player claiming one of the same (sport, source,
// external id) triples. Resolvers treat it as "someone else created it
// first" and re-run their lookup tiers.
var ErrConflict = errors.New("player conflicts with an existing row")

// Repository describes player persistence needs from the resolver and
// validator use cases. Implementations return ErrConflict on unique
// constraint violations so callers can retry lookups instead of failing.
type Repository interface {
	GetByID(ctx context.Context, id string) (Player, bool, error)
	GetBySourceID(ctx context.Context, sport, source, externalID string) (Player, bool, error)
	GetActiveByTeamAndName(ctx context.Context, sport, team, canonicalName string) (Player, bool, error)
	// ListActiveByName returns all active players for a canonical name in a
	// stable order (oldest created_at first, then id).
	ListActiveByName(ctx context.Context, sport, canonicalName string) ([]Player, error)
	Create(ctx context.Context, p Player) error
	// AddSourceIDs backfills external ids, never overwriting one already set
	// for the same source.
	AddSourceIDs(ctx context.Context, id, sport string, sourceIDs map[string]string) error
	UpdateTeam(ctx context.Context, id, team string) error
}
