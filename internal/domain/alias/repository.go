package alias

import "context"

// Repository is read-only: aliases are curated outside this service.
type Repository interface {
	// Lookup resolves a normalized name to a canonical player id. When team
	// is non-empty a team-scoped alias wins over a team-agnostic one.
	Lookup(ctx context.Context, sport, normalizedName, team string) (string, bool, error)
}
