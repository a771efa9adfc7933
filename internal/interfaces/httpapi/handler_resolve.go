package httpapi

import (
	"net/http"
	"time"

	"github.com/statline/canonical/internal/usecase"
)

type resolvePlayerRequest struct {
	Sport     string            `json:"sport" validate:"required"`
	Name      string            `json:"name" validate:"required"`
	Team      string            `json:"team,omitempty"`
	Position  string            `json:"position,omitempty"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

type resolvePlayerResponse struct {
	Player  playerDTO `json:"player"`
	Created bool      `json:"created"`
}

func (h *Handler) ResolvePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolvePlayer")
	defer span.End()

	var req resolvePlayerRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resolved, created, err := h.playerResolver.ResolvePlayer(ctx, usecase.ResolvePlayerInput{
		Sport:     req.Sport,
		Name:      req.Name,
		Team:      req.Team,
		Position:  req.Position,
		SourceIDs: req.SourceIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, resolvePlayerResponse{
		Player:  playerToDTO(resolved),
		Created: created,
	})
}

type resolveGameRequest struct {
	Sport     string            `json:"sport" validate:"required"`
	GameDate  time.Time         `json:"game_date" validate:"required"`
	AwayTeam  string            `json:"away_team" validate:"required"`
	HomeTeam  string            `json:"home_team" validate:"required"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

type resolveGameResponse struct {
	Game    gameDTO `json:"game"`
	Created bool    `json:"created"`
}

func (h *Handler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveGame")
	defer span.End()

	var req resolveGameRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resolved, created, err := h.gameResolver.ResolveGame(ctx, usecase.ResolveGameInput{
		Sport:     req.Sport,
		GameDate:  req.GameDate,
		AwayTeam:  req.AwayTeam,
		HomeTeam:  req.HomeTeam,
		SourceIDs: req.SourceIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve game failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, resolveGameResponse{
		Game:    gameToDTO(resolved),
		Created: created,
	})
}
