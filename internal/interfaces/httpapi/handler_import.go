package httpapi

import (
	"net/http"
	"time"

	"github.com/statline/canonical/internal/usecase"
)

type importPlayersRequest struct {
	Records []importPlayerRecord `json:"records" validate:"required,min=1,dive"`
}

type importPlayerRecord struct {
	Sport     string            `json:"sport" validate:"required"`
	Name      string            `json:"name" validate:"required"`
	Team      string            `json:"team,omitempty"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

func (h *Handler) ImportPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPlayers")
	defer span.End()

	var req importPlayersRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	records := make([]usecase.PlayerRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		records = append(records, usecase.PlayerRecord{
			Sport:     rec.Sport,
			Name:      rec.Name,
			Team:      rec.Team,
			SourceIDs: rec.SourceIDs,
		})
	}

	summary, err := h.importer.ImportPlayers(ctx, records)
	if err != nil {
		h.logger.ErrorContext(ctx, "import players failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

type importGamesRequest struct {
	Records []importGameRecord `json:"records" validate:"required,min=1,dive"`
}

type importGameRecord struct {
	Sport     string            `json:"sport" validate:"required"`
	GameDate  time.Time         `json:"game_date" validate:"required"`
	AwayTeam  string            `json:"away_team" validate:"required"`
	HomeTeam  string            `json:"home_team" validate:"required"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

func (h *Handler) ImportGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportGames")
	defer span.End()

	var req importGamesRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	records := make([]usecase.GameRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		records = append(records, usecase.GameRecord{
			Sport:     rec.Sport,
			GameDate:  rec.GameDate,
			AwayTeam:  rec.AwayTeam,
			HomeTeam:  rec.HomeTeam,
			SourceIDs: rec.SourceIDs,
		})
	}

	summary, err := h.importer.ImportGames(ctx, records)
	if err != nil {
		h.logger.ErrorContext(ctx, "import games failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}
