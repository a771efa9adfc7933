package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statline/canonical/internal/domain/game"
)

func testGame(id string, date time.Time) game.Game {
	return game.Game{
		ID: id, Sport: "nba", GameDate: date,
		AwayTeam: "BOS", HomeTeam: "DEN",
		Season: 2025, Status: game.StatusScheduled,
		CreatedAt: date, UpdatedAt: date,
	}
}

func TestGameRepositoryCreateWindowAdmitsDoubleheaders(t *testing.T) {
	ctx := context.Background()
	first := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	repo := NewGameRepository([]game.Game{testGame("gm-1", first)}, 6*time.Hour)

	// 8h apart is a separate game even for the same matchup
	if err := repo.Create(ctx, testGame("gm-2", first.Add(8*time.Hour))); err != nil {
		t.Fatalf("create game 8h apart: %v", err)
	}

	// 5h from gm-1 falls inside the window and must be rejected
	err := repo.Create(ctx, testGame("gm-3", first.Add(5*time.Hour)))
	if !errors.Is(err, game.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if got := len(repo.Games()); got != 2 {
		t.Fatalf("stored games = %d, want 2", got)
	}
}

func TestGameRepositoryUpdateStatus(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	repo := NewGameRepository([]game.Game{testGame("gm-1", date)}, 6*time.Hour)

	if err := repo.UpdateStatus(ctx, "gm-1", game.StatusFinal); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, found, err := repo.GetByID(ctx, "gm-1")
	if err != nil || !found {
		t.Fatalf("get gm-1: found=%t err=%v", found, err)
	}
	if got.Status != game.StatusFinal {
		t.Fatalf("status = %s, want final", got.Status)
	}
	if !got.UpdatedAt.After(date) {
		t.Fatal("updated_at not advanced")
	}
}

func TestGameRepositoryAddSourceIDsConflictLeavesNoPartialBackfill(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2026, 1, 15, 19, 0, 0, 0, time.UTC)
	other := testGame("gm-2", date.Add(72*time.Hour))
	other.SourceIDs = map[string]string{"oddsline": "e-9"}
	repo := NewGameRepository([]game.Game{testGame("gm-1", date), other}, 6*time.Hour)

	err := repo.AddSourceIDs(ctx, "gm-1", "nba", map[string]string{
		"statsfeed": "e-1",
		"oddsline":  "e-9",
	})
	if !errors.Is(err, game.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	if _, found, _ := repo.GetBySourceID(ctx, "nba", "statsfeed", "e-1"); found {
		t.Fatal("clean mapping from the rejected batch was indexed")
	}
	got, _, _ := repo.GetByID(ctx, "gm-1")
	if len(got.SourceIDs) != 0 {
		t.Fatalf("gm-1 source ids = %v, want none", got.SourceIDs)
	}
}
