package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/infrastructure/repository/memory"
)

func TestEntityServiceGetPlayer(t *testing.T) {
	seed := existingPlayer("pl-1", "nba", "Marcus Hollins", "BOS", testClock, nil)
	svc := NewEntityService(memory.NewPlayerRepository([]player.Player{seed}), memory.NewGameRepository(nil, 6*time.Hour))

	got, err := svc.GetPlayer(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("GetPlayer: %v", err)
	}
	if got.DisplayName != "Marcus Hollins" {
		t.Fatalf("display name = %q", got.DisplayName)
	}

	if _, err := svc.GetPlayer(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.GetPlayer(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEntityServiceGetGame(t *testing.T) {
	date := time.Date(2025, time.November, 12, 0, 30, 0, 0, time.UTC)
	seed := existingGame("gm-1", "nba", "BOS", "DEN", date, nil)
	svc := NewEntityService(memory.NewPlayerRepository(nil), memory.NewGameRepository([]game.Game{seed}, 6*time.Hour))

	got, err := svc.GetGame(context.Background(), "gm-1")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.AwayTeam != "BOS" {
		t.Fatalf("away team = %q", got.AwayTeam)
	}

	if _, err := svc.GetGame(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
