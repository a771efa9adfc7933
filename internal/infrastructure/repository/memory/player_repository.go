package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/statline/canonical/internal/domain/player"
)

// PlayerRepository is the in-memory mirror of the postgres implementation,
// used by tests and the no-database dev mode. It enforces the same
// uniqueness rule: (sport, source, external_id) maps to one player.
type PlayerRepository struct {
	mu       sync.RWMutex
	byID     map[string]player.Player
	bySource map[string]string
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	repo := &PlayerRepository{
		byID:     make(map[string]player.Player),
		bySource: make(map[string]string),
	}
	for _, p := range players {
		repo.byID[p.ID] = clonePlayer(p)
		for source, externalID := range p.SourceIDs {
			repo.bySource[sourceKey(p.Sport, source, externalID)] = p.ID
		}
	}
	return repo
}

func (r *PlayerRepository) GetByID(_ context.Context, id string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) GetBySourceID(_ context.Context, sport, source, externalID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySource[sourceKey(sport, source, externalID)]
	if !ok {
		return player.Player{}, false, nil
	}
	return clonePlayer(r.byID[id]), true, nil
}

func (r *PlayerRepository) GetActiveByTeamAndName(_ context.Context, sport, team, canonicalName string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.stableOrder() {
		if p.Active && p.Sport == sport && p.Team == team && p.CanonicalName == canonicalName {
			return clonePlayer(p), true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) ListActiveByName(_ context.Context, sport, canonicalName string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, 2)
	for _, p := range r.stableOrder() {
		if p.Active && p.Sport == sport && p.CanonicalName == canonicalName {
			out = append(out, clonePlayer(p))
		}
	}
	return out, nil
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return player.ErrConflict
	}
	for source, externalID := range p.SourceIDs {
		if _, exists := r.bySource[sourceKey(p.Sport, source, externalID)]; exists {
			return player.ErrConflict
		}
	}

	r.byID[p.ID] = clonePlayer(p)
	for source, externalID := range p.SourceIDs {
		r.bySource[sourceKey(p.Sport, source, externalID)] = p.ID
	}
	return nil
}

func (r *PlayerRepository) AddSourceIDs(_ context.Context, id, sport string, sourceIDs map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil
	}
	// validate the whole batch before applying anything so a conflict
	// leaves no partial backfill, matching the postgres transaction
	adds := make(map[string]string, len(sourceIDs))
	for source, externalID := range sourceIDs {
		if _, exists := p.SourceIDs[source]; exists {
			continue
		}
		if owner, taken := r.bySource[sourceKey(sport, source, externalID)]; taken && owner != id {
			return player.ErrConflict
		}
		adds[source] = externalID
	}
	if len(adds) == 0 {
		return nil
	}

	p = clonePlayer(p)
	if p.SourceIDs == nil {
		p.SourceIDs = make(map[string]string, len(adds))
	}
	for source, externalID := range adds {
		p.SourceIDs[source] = externalID
		r.bySource[sourceKey(sport, source, externalID)] = id
	}
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return nil
}

func (r *PlayerRepository) UpdateTeam(_ context.Context, id, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil
	}
	p.Team = team
	p.UpdatedAt = time.Now().UTC()
	r.byID[id] = p
	return nil
}

// Players returns all rows sorted by creation time then id. Test helper.
func (r *PlayerRepository) Players() []player.Player {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.stableOrder()
	for i := range out {
		out[i] = clonePlayer(out[i])
	}
	return out
}

// stableOrder sorts by creation time then id, matching the postgres
// repository's deterministic candidate ordering.
func (r *PlayerRepository) stableOrder() []player.Player {
	out := make([]player.Player, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func clonePlayer(p player.Player) player.Player {
	if p.SourceIDs != nil {
		cloned := make(map[string]string, len(p.SourceIDs))
		for k, v := range p.SourceIDs {
			cloned[k] = v
		}
		p.SourceIDs = cloned
	}
	return p
}

func sourceKey(sport, source, externalID string) string {
	return strings.Join([]string{sport, source, externalID}, "|")
}
