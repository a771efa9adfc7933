package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/domain/game"
	idgen "github.com/statline/canonical/internal/platform/id"
	"github.com/statline/canonical/internal/platform/logging"
)

// GameResolverConfig exposes the matching knobs the resolver must not
// hard-code: the time fuzz absorbing cross-provider timezone disagreement
// and each sport's season rollover month.
type GameResolverConfig struct {
	SupportedSources []string
	MatchWindow      time.Duration
	SeasonRollover   map[string]time.Month
}

const defaultGameMatchWindow = 6 * time.Hour

// GameResolverService resolves raw provider game records to canonical games.
type GameResolverService struct {
	games   game.Repository
	auditor audit.Emitter
	ids     idgen.Generator
	logger  *logging.Logger

	sources        map[string]struct{}
	matchWindow    time.Duration
	seasonRollover map[string]time.Month
	now            func() time.Time
}

func NewGameResolverService(
	games game.Repository,
	auditor audit.Emitter,
	ids idgen.Generator,
	cfg GameResolverConfig,
	logger *logging.Logger,
) *GameResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	window := cfg.MatchWindow
	if window <= 0 {
		window = defaultGameMatchWindow
	}
	sources := make(map[string]struct{}, len(cfg.SupportedSources))
	for _, s := range cfg.SupportedSources {
		sources[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	return &GameResolverService{
		games:          games,
		auditor:        auditor,
		ids:            ids,
		logger:         logger,
		sources:        sources,
		matchWindow:    window,
		seasonRollover: cfg.SeasonRollover,
		now:            time.Now,
	}
}

// ResolveGameInput is one raw provider game record. GameDate must be UTC.
type ResolveGameInput struct {
	Sport     string
	GameDate  time.Time
	AwayTeam  string
	HomeTeam  string
	SourceIDs map[string]string
}

type gameMatch struct {
	game       game.Game
	method     string
	confidence float64
}

// ResolveGame walks the match tiers in order: exact external id, then the
// natural key (teams + date) within the configured window, then create.
func (s *GameResolverService) ResolveGame(ctx context.Context, in ResolveGameInput) (game.Game, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameResolverService.ResolveGame")
	defer span.End()

	in.Sport = strings.ToLower(strings.TrimSpace(in.Sport))
	in.AwayTeam = strings.ToUpper(strings.TrimSpace(in.AwayTeam))
	in.HomeTeam = strings.ToUpper(strings.TrimSpace(in.HomeTeam))
	if in.Sport == "" {
		return game.Game{}, false, fmt.Errorf("%w: sport is required", ErrInvalidInput)
	}
	if in.GameDate.IsZero() {
		return game.Game{}, false, fmt.Errorf("%w: game_date is required", ErrInvalidInput)
	}
	if in.AwayTeam == "" || in.HomeTeam == "" {
		return game.Game{}, false, fmt.Errorf("%w: away_team and home_team are required", ErrInvalidInput)
	}
	if in.AwayTeam == in.HomeTeam {
		return game.Game{}, false, fmt.Errorf("%w: away_team and home_team must be different", ErrInvalidInput)
	}
	in.GameDate = in.GameDate.UTC()

	sourceIDs := s.filterSourceIDs(ctx, in.SourceIDs)

	match, err := s.findMatch(ctx, in, sourceIDs)
	if err != nil {
		return game.Game{}, false, err
	}
	if match != nil {
		matched, err := s.applyMatch(ctx, in, *match, sourceIDs)
		if err != nil {
			return game.Game{}, false, err
		}
		return matched, false, nil
	}

	created, err := s.createGame(ctx, in, sourceIDs)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, game.ErrConflict) {
		return game.Game{}, false, err
	}

	// Lost a creation race to a concurrent resolver call for the same
	// never-before-seen game; the winner's row is findable now.
	s.logger.WarnContext(ctx, "game create lost uniqueness race, retrying lookup",
		"sport", in.Sport, "away_team", in.AwayTeam, "home_team", in.HomeTeam)
	match, retryErr := s.findMatch(ctx, in, sourceIDs)
	if retryErr != nil {
		return game.Game{}, false, retryErr
	}
	if match == nil {
		return game.Game{}, false, fmt.Errorf("resolve game after conflict: %w", err)
	}
	matched, err := s.applyMatch(ctx, in, *match, sourceIDs)
	if err != nil {
		return game.Game{}, false, err
	}
	return matched, false, nil
}

func (s *GameResolverService) findMatch(ctx context.Context, in ResolveGameInput, sourceIDs map[string]string) (*gameMatch, error) {
	for _, source := range sortedKeys(sourceIDs) {
		found, ok, err := s.games.GetBySourceID(ctx, in.Sport, source, sourceIDs[source])
		if err != nil {
			return nil, fmt.Errorf("get game by source id: %w", err)
		}
		if ok {
			return &gameMatch{game: found, method: MatchMethodExternalID, confidence: confidenceExternalID}, nil
		}
	}

	found, ok, err := s.games.FindByTeamsWithin(ctx, in.Sport, in.AwayTeam, in.HomeTeam, in.GameDate, s.matchWindow)
	if err != nil {
		return nil, fmt.Errorf("find game by natural key: %w", err)
	}
	if ok {
		return &gameMatch{game: found, method: MatchMethodTimeWindow, confidence: confidenceTimeWindow}, nil
	}

	return nil, nil
}

func (s *GameResolverService) applyMatch(ctx context.Context, in ResolveGameInput, match gameMatch, sourceIDs map[string]string) (game.Game, error) {
	if len(sourceIDs) > 0 {
		if err := s.games.AddSourceIDs(ctx, match.game.ID, in.Sport, sourceIDs); err != nil {
			return game.Game{}, fmt.Errorf("backfill game source ids: %w", err)
		}
		if match.game.SourceIDs == nil {
			match.game.SourceIDs = make(map[string]string, len(sourceIDs))
		}
		for source, externalID := range sourceIDs {
			if _, exists := match.game.SourceIDs[source]; !exists {
				match.game.SourceIDs[source] = externalID
			}
		}
	}

	confidence := match.confidence
	s.auditor.Emit(ctx, audit.Event{
		EntityType:      audit.EntityTypeGame,
		EntityID:        match.game.ID,
		Action:          audit.ActionMatched,
		MatchMethod:     match.method,
		MatchConfidence: &confidence,
		Timestamp:       s.now().UTC(),
	})

	return match.game, nil
}

func (s *GameResolverService) createGame(ctx context.Context, in ResolveGameInput, sourceIDs map[string]string) (game.Game, error) {
	newID, err := s.ids.NewID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate game id: %w", err)
	}

	created := game.Game{
		ID:        newID,
		Sport:     in.Sport,
		GameDate:  in.GameDate,
		AwayTeam:  in.AwayTeam,
		HomeTeam:  in.HomeTeam,
		Season:    game.DeriveSeason(in.GameDate, s.rolloverMonth(in.Sport)),
		Status:    game.StatusScheduled,
		SourceIDs: sourceIDs,
		CreatedAt: s.now().UTC(),
		UpdatedAt: s.now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.games.Create(ctx, created); err != nil {
		if errors.Is(err, game.ErrConflict) {
			return game.Game{}, err
		}
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		EntityType:  audit.EntityTypeGame,
		EntityID:    created.ID,
		Action:      audit.ActionCreated,
		MatchMethod: MatchMethodCreated,
		Timestamp:   s.now().UTC(),
	})

	return created, nil
}

// rolloverMonth falls back to January (calendar-year seasons) for sports
// with no configured rollover.
func (s *GameResolverService) rolloverMonth(sport string) time.Month {
	if month, ok := s.seasonRollover[sport]; ok {
		return month
	}
	return time.January
}

func (s *GameResolverService) filterSourceIDs(ctx context.Context, raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	out := make(map[string]string, len(raw))
	for source, externalID := range raw {
		key := strings.ToLower(strings.TrimSpace(source))
		value := strings.TrimSpace(externalID)
		if key == "" || value == "" {
			continue
		}
		if _, ok := s.sources[key]; !ok {
			s.logger.WarnContext(ctx, "ignoring unknown source id", "source", source)
			continue
		}
		out[key] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
