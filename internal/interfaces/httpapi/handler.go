package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/platform/logging"
	"github.com/statline/canonical/internal/usecase"
)

type Handler struct {
	playerResolver *usecase.PlayerResolverService
	gameResolver   *usecase.GameResolverService
	validation     *usecase.ValidationService
	importer       *usecase.ImportService
	entities       *usecase.EntityService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	playerResolver *usecase.PlayerResolverService,
	gameResolver *usecase.GameResolverService,
	validation *usecase.ValidationService,
	importer *usecase.ImportService,
	entities *usecase.EntityService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		playerResolver: playerResolver,
		gameResolver:   gameResolver,
		validation:     validation,
		importer:       importer,
		entities:       entities,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAndValidate parses the request body into req and runs struct tag
// validation, wrapping failures as ErrInvalidInput.
func (h *Handler) decodeAndValidate(r *http.Request, req any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(req); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type playerDTO struct {
	ID            string            `json:"id"`
	Sport         string            `json:"sport"`
	CanonicalName string            `json:"canonical_name"`
	DisplayName   string            `json:"display_name"`
	Team          string            `json:"team"`
	Position      string            `json:"position,omitempty"`
	Active        bool              `json:"is_active"`
	SourceIDs     map[string]string `json:"source_ids,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:            p.ID,
		Sport:         p.Sport,
		CanonicalName: p.CanonicalName,
		DisplayName:   p.DisplayName,
		Team:          p.Team,
		Position:      p.Position,
		Active:        p.Active,
		SourceIDs:     p.SourceIDs,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type gameDTO struct {
	ID        string            `json:"id"`
	Sport     string            `json:"sport"`
	GameDate  time.Time         `json:"game_date"`
	AwayTeam  string            `json:"away_team"`
	HomeTeam  string            `json:"home_team"`
	Season    int               `json:"season"`
	Status    string            `json:"status"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func gameToDTO(g game.Game) gameDTO {
	return gameDTO{
		ID:        g.ID,
		Sport:     g.Sport,
		GameDate:  g.GameDate,
		AwayTeam:  g.AwayTeam,
		HomeTeam:  g.HomeTeam,
		Season:    g.Season,
		Status:    string(g.Status),
		SourceIDs: g.SourceIDs,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
