package game

import (
	"context"
	"errors"
	"time"
)

// ErrConflict reports that a write lost a uniqueness race: either a source
// id collision or the storage-level no-duplicate-game window constraint.
// Resolvers treat it as "someone else created it first" and re-run lookups.
var ErrConflict = errors.New("game conflicts with an existing row")

// Repository describes game persistence needs from the resolver and
// validator use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Game, bool, error)
	GetBySourceID(ctx context.Context, sport, source, externalID string) (Game, bool, error)
	// FindByTeamsWithin returns the first game for the same sport and team
	// pair whose date falls within the window around date, oldest first.
	FindByTeamsWithin(ctx context.Context, sport, awayTeam, homeTeam string, date time.Time, window time.Duration) (Game, bool, error)
	Create(ctx context.Context, g Game) error
	AddSourceIDs(ctx context.Context, id, sport string, sourceIDs map[string]string) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}
