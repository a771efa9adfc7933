package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/statline/canonical/internal/domain/alias"
)

// AliasRepository serves the curated alias table from memory. A team-scoped
// alias wins over a team-agnostic one for the same name.
type AliasRepository struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewAliasRepository(aliases []alias.Alias) *AliasRepository {
	repo := &AliasRepository{entries: make(map[string]string, len(aliases))}
	for _, a := range aliases {
		repo.entries[aliasKey(a.Sport, a.Alias, a.Team)] = a.PlayerID
	}
	return repo
}

func (r *AliasRepository) Lookup(_ context.Context, sport, normalizedName, team string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if team != "" {
		if playerID, ok := r.entries[aliasKey(sport, normalizedName, team)]; ok {
			return playerID, true, nil
		}
	}
	playerID, ok := r.entries[aliasKey(sport, normalizedName, "")]
	return playerID, ok, nil
}

func aliasKey(sport, normalizedName, team string) string {
	return strings.Join([]string{sport, normalizedName, team}, "|")
}
