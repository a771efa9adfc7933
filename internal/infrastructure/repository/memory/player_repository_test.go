package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statline/canonical/internal/domain/player"
)

func TestPlayerRepositoryAddSourceIDsConflictLeavesNoPartialBackfill(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := NewPlayerRepository([]player.Player{
		{
			ID: "pl-1", Sport: "nba", CanonicalName: "aaron pierce", DisplayName: "Aaron Pierce",
			Team: "BOS", Active: true, CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "pl-2", Sport: "nba", CanonicalName: "marcus webb", DisplayName: "Marcus Webb",
			Team: "DEN", Active: true,
			SourceIDs: map[string]string{"oddsline": "x-9"},
			CreatedAt: created, UpdatedAt: created,
		},
	})

	// one clean mapping plus one that belongs to pl-2: the whole batch
	// must be rejected without applying the clean one
	err := repo.AddSourceIDs(ctx, "pl-1", "nba", map[string]string{
		"statsfeed": "a-1",
		"oddsline":  "x-9",
	})
	if !errors.Is(err, player.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	if _, found, _ := repo.GetBySourceID(ctx, "nba", "statsfeed", "a-1"); found {
		t.Fatal("clean mapping from the rejected batch was indexed")
	}
	got, found, err := repo.GetByID(ctx, "pl-1")
	if err != nil || !found {
		t.Fatalf("get pl-1: found=%t err=%v", found, err)
	}
	if len(got.SourceIDs) != 0 {
		t.Fatalf("pl-1 source ids = %v, want none", got.SourceIDs)
	}
	if !got.UpdatedAt.Equal(created) {
		t.Fatalf("pl-1 updated_at changed on a rejected batch")
	}
}

func TestPlayerRepositoryAddSourceIDsConflictKeepsExistingMappings(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := NewPlayerRepository([]player.Player{
		{
			ID: "pl-1", Sport: "nba", CanonicalName: "aaron pierce", DisplayName: "Aaron Pierce",
			Team: "BOS", Active: true,
			SourceIDs: map[string]string{"statsfeed": "a-1"},
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "pl-2", Sport: "nba", CanonicalName: "marcus webb", DisplayName: "Marcus Webb",
			Team: "DEN", Active: true,
			SourceIDs: map[string]string{"oddsline": "x-9"},
			CreatedAt: created, UpdatedAt: created,
		},
	})

	err := repo.AddSourceIDs(ctx, "pl-1", "nba", map[string]string{
		"boxscore": "b-7",
		"oddsline": "x-9",
	})
	if !errors.Is(err, player.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	got, _, _ := repo.GetByID(ctx, "pl-1")
	if len(got.SourceIDs) != 1 || got.SourceIDs["statsfeed"] != "a-1" {
		t.Fatalf("pl-1 source ids = %v, want only statsfeed", got.SourceIDs)
	}
	if _, found, _ := repo.GetBySourceID(ctx, "nba", "boxscore", "b-7"); found {
		t.Fatal("clean mapping from the rejected batch was indexed")
	}
}

func TestPlayerRepositoryAddSourceIDsBackfillsWithoutOverwrite(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := NewPlayerRepository([]player.Player{
		{
			ID: "pl-1", Sport: "nba", CanonicalName: "aaron pierce", DisplayName: "Aaron Pierce",
			Team: "BOS", Active: true,
			SourceIDs: map[string]string{"statsfeed": "a-1"},
			CreatedAt: created, UpdatedAt: created,
		},
	})

	if err := repo.AddSourceIDs(ctx, "pl-1", "nba", map[string]string{
		"statsfeed": "a-other",
		"oddsline":  "x-2",
	}); err != nil {
		t.Fatalf("add source ids: %v", err)
	}

	got, _, _ := repo.GetByID(ctx, "pl-1")
	if got.SourceIDs["statsfeed"] != "a-1" {
		t.Fatalf("statsfeed mapping = %q, existing mapping must win", got.SourceIDs["statsfeed"])
	}
	if got.SourceIDs["oddsline"] != "x-2" {
		t.Fatalf("oddsline mapping = %q, want x-2", got.SourceIDs["oddsline"])
	}
}
