package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/statline/canonical/internal/domain/game"
)

// GameRepository is the in-memory mirror of the postgres implementation.
// Create enforces the same overlap rule the database expresses with an
// exclusion constraint: no two games for the same sport and team pair
// within the conflict window of each other.
type GameRepository struct {
	mu             sync.RWMutex
	byID           map[string]game.Game
	bySource       map[string]string
	conflictWindow time.Duration
}

func NewGameRepository(games []game.Game, conflictWindow time.Duration) *GameRepository {
	repo := &GameRepository{
		byID:           make(map[string]game.Game),
		bySource:       make(map[string]string),
		conflictWindow: conflictWindow,
	}
	for _, g := range games {
		repo.byID[g.ID] = cloneGame(g)
		for source, externalID := range g.SourceIDs {
			repo.bySource[sourceKey(g.Sport, source, externalID)] = g.ID
		}
	}
	return repo
}

func (r *GameRepository) GetByID(_ context.Context, id string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) GetBySourceID(_ context.Context, sport, source, externalID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySource[sourceKey(sport, source, externalID)]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(r.byID[id]), true, nil
}

func (r *GameRepository) FindByTeamsWithin(_ context.Context, sport, awayTeam, homeTeam string, date time.Time, window time.Duration) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best      game.Game
		bestDelta time.Duration
		found     bool
	)
	for _, g := range r.byID {
		if g.Sport != sport || g.AwayTeam != awayTeam || g.HomeTeam != homeTeam {
			continue
		}
		delta := absDuration(g.GameDate.Sub(date))
		if delta > window {
			continue
		}
		if !found || delta < bestDelta || (delta == bestDelta && g.ID < best.ID) {
			best, bestDelta, found = g, delta, true
		}
	}
	if !found {
		return game.Game{}, false, nil
	}
	return cloneGame(best), true, nil
}

func (r *GameRepository) Create(_ context.Context, g game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[g.ID]; exists {
		return game.ErrConflict
	}
	for source, externalID := range g.SourceIDs {
		if _, exists := r.bySource[sourceKey(g.Sport, source, externalID)]; exists {
			return game.ErrConflict
		}
	}
	if r.conflictWindow > 0 {
		for _, existing := range r.byID {
			if existing.Sport != g.Sport || existing.AwayTeam != g.AwayTeam || existing.HomeTeam != g.HomeTeam {
				continue
			}
			if absDuration(existing.GameDate.Sub(g.GameDate)) <= r.conflictWindow {
				return game.ErrConflict
			}
		}
	}

	r.byID[g.ID] = cloneGame(g)
	for source, externalID := range g.SourceIDs {
		r.bySource[sourceKey(g.Sport, source, externalID)] = g.ID
	}
	return nil
}

func (r *GameRepository) AddSourceIDs(_ context.Context, id, sport string, sourceIDs map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return nil
	}
	// validate the whole batch before applying anything so a conflict
	// leaves no partial backfill, matching the postgres transaction
	adds := make(map[string]string, len(sourceIDs))
	for source, externalID := range sourceIDs {
		if _, exists := g.SourceIDs[source]; exists {
			continue
		}
		if owner, taken := r.bySource[sourceKey(sport, source, externalID)]; taken && owner != id {
			return game.ErrConflict
		}
		adds[source] = externalID
	}
	if len(adds) == 0 {
		return nil
	}

	g = cloneGame(g)
	if g.SourceIDs == nil {
		g.SourceIDs = make(map[string]string, len(adds))
	}
	for source, externalID := range adds {
		g.SourceIDs[source] = externalID
		r.bySource[sourceKey(sport, source, externalID)] = id
	}
	g.UpdatedAt = time.Now().UTC()
	r.byID[id] = g
	return nil
}

func (r *GameRepository) UpdateStatus(_ context.Context, id string, status game.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return nil
	}
	g.Status = status
	g.UpdatedAt = time.Now().UTC()
	r.byID[id] = g
	return nil
}

// Games returns all rows sorted by creation time then id. Test helper.
func (r *GameRepository) Games() []game.Game {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, cloneGame(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func cloneGame(g game.Game) game.Game {
	if g.SourceIDs != nil {
		cloned := make(map[string]string, len(g.SourceIDs))
		for k, v := range g.SourceIDs {
			cloned[k] = v
		}
		g.SourceIDs = cloned
	}
	return g
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
