package memory

import (
	"time"

	"github.com/statline/canonical/internal/domain/alias"
	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
)

// Seed data for the no-database dev mode. Names and ids are realistic but
// fictional; the point is exercising every match tier from a fresh boot.

func SeedPlayers() []player.Player {
	base := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	return []player.Player{
		{
			ID: "pl-nba-0001", Sport: "nba",
			CanonicalName: "marcus hollins", DisplayName: "Marcus Hollins",
			Team: "BOS", Position: "SG", Active: true,
			SourceIDs: map[string]string{"statsfeed": "sf-88421"},
			CreatedAt: base, UpdatedAt: base,
		},
		{
			ID: "pl-nba-0002", Sport: "nba",
			CanonicalName: "darius cole", DisplayName: "Darius Cole Jr.",
			Team: "DEN", Position: "PF", Active: true,
			SourceIDs: map[string]string{"statsfeed": "sf-88430", "oddsline": "ol-2211"},
			CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
		},
		{
			ID: "pl-nba-0003", Sport: "nba",
			CanonicalName: "darius cole", DisplayName: "Darius Cole Sr.",
			Team: "UNK", Position: "", Active: true,
			CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour),
		},
		{
			ID: "pl-nfl-0001", Sport: "nfl",
			CanonicalName: "trey whitfield", DisplayName: "Trey Whitfield",
			Team: "KC", Position: "WR", Active: true,
			SourceIDs: map[string]string{"statsfeed": "sf-nfl-104"},
			CreatedAt: base, UpdatedAt: base,
		},
	}
}

func SeedGames() []game.Game {
	tip := time.Date(2025, time.November, 12, 0, 30, 0, 0, time.UTC)
	return []game.Game{
		{
			ID: "gm-nba-0001", Sport: "nba",
			GameDate: tip, AwayTeam: "BOS", HomeTeam: "DEN",
			Season: 2025, Status: game.StatusScheduled,
			SourceIDs: map[string]string{"statsfeed": "sf-g-5001"},
			CreatedAt: tip.Add(-72 * time.Hour), UpdatedAt: tip.Add(-72 * time.Hour),
		},
		{
			ID: "gm-nfl-0001", Sport: "nfl",
			GameDate: time.Date(2025, time.November, 16, 18, 0, 0, 0, time.UTC),
			AwayTeam: "KC", HomeTeam: "BUF",
			Season: 2025, Status: game.StatusScheduled,
			SourceIDs: map[string]string{"statsfeed": "sf-g-7300"},
			CreatedAt: tip, UpdatedAt: tip,
		},
	}
}

func SeedAliases() []alias.Alias {
	return []alias.Alias{
		{Sport: "nba", Alias: "m hollins", Team: "BOS", PlayerID: "pl-nba-0001"},
		{Sport: "nba", Alias: "marc hollins", Team: "", PlayerID: "pl-nba-0001"},
	}
}
