package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
)

// EntityService serves canonical rows back to downstream consumers.
type EntityService struct {
	players player.Repository
	games   game.Repository
}

func NewEntityService(players player.Repository, games game.Repository) *EntityService {
	return &EntityService{players: players, games: games}
}

func (s *EntityService) GetPlayer(ctx context.Context, id string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityService.GetPlayer")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	found, ok, err := s.players.GetByID(ctx, id)
	if err != nil {
		return player.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, id)
	}
	return found, nil
}

func (s *EntityService) GetGame(ctx context.Context, id string) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EntityService.GetGame")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return game.Game{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	found, ok, err := s.games.GetByID(ctx, id)
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	if !ok {
		return game.Game{}, fmt.Errorf("%w: game=%s", ErrNotFound, id)
	}
	return found, nil
}
