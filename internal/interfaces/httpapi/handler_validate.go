package httpapi

import (
	"net/http"
	"time"

	"github.com/statline/canonical/internal/usecase"
)

type validatePlayerRequest struct {
	Sport     string            `json:"sport" validate:"required"`
	Name      string            `json:"name" validate:"required"`
	Team      string            `json:"team,omitempty"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

func (h *Handler) ValidatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidatePlayer")
	defer span.End()

	var req validatePlayerRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.validation.ValidatePlayer(ctx, usecase.PlayerRecord{
		Sport:     req.Sport,
		Name:      req.Name,
		Team:      req.Team,
		SourceIDs: req.SourceIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "validate player failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

type validateGameRequest struct {
	Sport     string            `json:"sport" validate:"required"`
	GameDate  time.Time         `json:"game_date" validate:"required"`
	AwayTeam  string            `json:"away_team" validate:"required"`
	HomeTeam  string            `json:"home_team" validate:"required"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

func (h *Handler) ValidateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateGame")
	defer span.End()

	var req validateGameRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.validation.ValidateGame(ctx, usecase.GameRecord{
		Sport:     req.Sport,
		GameDate:  req.GameDate,
		AwayTeam:  req.AwayTeam,
		HomeTeam:  req.HomeTeam,
		SourceIDs: req.SourceIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "validate game failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
