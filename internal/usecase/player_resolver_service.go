package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/statline/canonical/internal/domain/alias"
	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/normalize"
	idgen "github.com/statline/canonical/internal/platform/id"
	"github.com/statline/canonical/internal/platform/logging"
)

// PlayerResolverConfig carries the matching knobs that are deliberately not
// hard-coded: which provider source names are accepted and which
// generational-suffix pairs block a name-only merge.
type PlayerResolverConfig struct {
	SupportedSources []string
	ConflictPairs    []normalize.ConflictPair
}

// PlayerResolverService resolves raw provider player records to canonical
// players, creating one only when no tier finds a reasonable match.
type PlayerResolverService struct {
	players player.Repository
	aliases alias.Repository
	auditor audit.Emitter
	ids     idgen.Generator
	logger  *logging.Logger

	sources       map[string]struct{}
	conflictPairs []normalize.ConflictPair
	now           func() time.Time
}

func NewPlayerResolverService(
	players player.Repository,
	aliases alias.Repository,
	auditor audit.Emitter,
	ids idgen.Generator,
	cfg PlayerResolverConfig,
	logger *logging.Logger,
) *PlayerResolverService {
	if logger == nil {
		logger = logging.Default()
	}
	pairs := cfg.ConflictPairs
	if len(pairs) == 0 {
		pairs = normalize.DefaultConflictPairs()
	}
	sources := make(map[string]struct{}, len(cfg.SupportedSources))
	for _, s := range cfg.SupportedSources {
		sources[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	return &PlayerResolverService{
		players:       players,
		aliases:       aliases,
		auditor:       auditor,
		ids:           ids,
		logger:        logger,
		sources:       sources,
		conflictPairs: pairs,
		now:           time.Now,
	}
}

// ResolvePlayerInput is one raw provider player record.
type ResolvePlayerInput struct {
	Sport     string
	Name      string
	Team      string
	Position  string
	SourceIDs map[string]string
}

type playerMatch struct {
	player     player.Player
	method     string
	confidence float64
	// reassignTeam marks a name-only hit whose stored team differs from the
	// record's team, implying a roster transaction.
	reassignTeam bool
}

// ResolvePlayer walks the match tiers in order and returns the canonical
// player plus whether it was created by this call. Data-quality ambiguity
// never produces an error; only storage failures do.
func (s *PlayerResolverService) ResolvePlayer(ctx context.Context, in ResolvePlayerInput) (player.Player, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerResolverService.ResolvePlayer")
	defer span.End()

	in.Sport = strings.ToLower(strings.TrimSpace(in.Sport))
	in.Name = strings.TrimSpace(in.Name)
	in.Team = strings.ToUpper(strings.TrimSpace(in.Team))
	if in.Sport == "" {
		return player.Player{}, false, fmt.Errorf("%w: sport is required", ErrInvalidInput)
	}
	if in.Name == "" {
		return player.Player{}, false, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	canonicalName := normalize.Name(in.Name)
	sourceIDs := s.filterSourceIDs(ctx, in.SourceIDs)

	match, err := s.findMatch(ctx, in, canonicalName, sourceIDs)
	if err != nil {
		return player.Player{}, false, err
	}
	if match != nil {
		matched, err := s.applyMatch(ctx, in, *match, sourceIDs)
		if err != nil {
			return player.Player{}, false, err
		}
		return matched, false, nil
	}

	created, err := s.createPlayer(ctx, in, canonicalName, sourceIDs)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, player.ErrConflict) {
		return player.Player{}, false, err
	}

	// Lost a creation race: someone else persisted this player between our
	// lookups and the insert. Their row is now visible, so retry the tiers.
	s.logger.WarnContext(ctx, "player create lost uniqueness race, retrying lookup",
		"sport", in.Sport, "canonical_name", canonicalName)
	match, retryErr := s.findMatch(ctx, in, canonicalName, sourceIDs)
	if retryErr != nil {
		return player.Player{}, false, retryErr
	}
	if match == nil {
		return player.Player{}, false, fmt.Errorf("resolve player after conflict: %w", err)
	}
	matched, err := s.applyMatch(ctx, in, *match, sourceIDs)
	if err != nil {
		return player.Player{}, false, err
	}
	return matched, false, nil
}

func (s *PlayerResolverService) findMatch(ctx context.Context, in ResolvePlayerInput, canonicalName string, sourceIDs map[string]string) (*playerMatch, error) {
	tiers := []func(context.Context, ResolvePlayerInput, string, map[string]string) (*playerMatch, error){
		s.matchBySourceID,
		s.matchByTeamAndName,
		s.matchByNameOnly,
		s.matchByAlias,
	}

	for _, tier := range tiers {
		match, err := tier(ctx, in, canonicalName, sourceIDs)
		if err != nil {
			return nil, err
		}
		if match != nil {
			return match, nil
		}
	}
	return nil, nil
}

// matchBySourceID is the most authoritative tier: a provider id we have
// already seen identifies the player outright.
func (s *PlayerResolverService) matchBySourceID(ctx context.Context, in ResolvePlayerInput, _ string, sourceIDs map[string]string) (*playerMatch, error) {
	for _, source := range sortedKeys(sourceIDs) {
		found, ok, err := s.players.GetBySourceID(ctx, in.Sport, source, sourceIDs[source])
		if err != nil {
			return nil, fmt.Errorf("get player by source id: %w", err)
		}
		if ok {
			return &playerMatch{player: found, method: MatchMethodExternalID, confidence: confidenceExternalID}, nil
		}
	}
	return nil, nil
}

func (s *PlayerResolverService) matchByTeamAndName(ctx context.Context, in ResolvePlayerInput, canonicalName string, _ map[string]string) (*playerMatch, error) {
	if in.Team == "" {
		return nil, nil
	}
	found, ok, err := s.players.GetActiveByTeamAndName(ctx, in.Sport, in.Team, canonicalName)
	if err != nil {
		return nil, fmt.Errorf("get player by team and name: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &playerMatch{player: found, method: MatchMethodTeamNameExact, confidence: confidenceTeamNameExact}, nil
}

// matchByNameOnly ignores team, catching players who were traded between
// sightings. A lone candidate whose stored suffix conflicts with the
// record's (Jr vs Sr) is rejected so the two are never merged.
func (s *PlayerResolverService) matchByNameOnly(ctx context.Context, in ResolvePlayerInput, canonicalName string, _ map[string]string) (*playerMatch, error) {
	candidates, err := s.players.ListActiveByName(ctx, in.Sport, canonicalName)
	if err != nil {
		return nil, fmt.Errorf("list players by name: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	recordSuffix := normalize.Suffix(in.Name)

	if len(candidates) == 1 {
		candidate := candidates[0]
		if normalize.SuffixesConflict(recordSuffix, normalize.Suffix(candidate.DisplayName), s.conflictPairs) {
			s.logger.InfoContext(ctx, "name-only candidate rejected on suffix conflict",
				"sport", in.Sport, "name", in.Name, "candidate_id", candidate.ID)
			return nil, nil
		}
		return s.nameOnlyMatch(in, candidate, MatchMethodNameOnly, confidenceNameOnly), nil
	}

	if in.Team != "" {
		for _, candidate := range candidates {
			if candidate.Team == in.Team {
				return s.nameOnlyMatch(in, candidate, MatchMethodNameOnly, confidenceNameOnly), nil
			}
		}
	}
	if recordSuffix != "" {
		for _, candidate := range candidates {
			if normalize.Suffix(candidate.DisplayName) == recordSuffix {
				return s.nameOnlyMatch(in, candidate, MatchMethodNameOnly, confidenceNameOnly), nil
			}
		}
	}

	// No disambiguator left. Candidates arrive in stable order (oldest
	// first), so picking the first is deterministic; the decision is
	// surfaced through the audit method and a warning for manual review.
	picked := candidates[0]
	s.logger.WarnContext(ctx, "ambiguous name-only match, picked first stable candidate",
		"sport", in.Sport, "name", in.Name, "candidates", len(candidates), "picked_id", picked.ID)
	return s.nameOnlyMatch(in, picked, MatchMethodNameAmbiguous, confidenceNameAmbiguous), nil
}

func (s *PlayerResolverService) nameOnlyMatch(in ResolvePlayerInput, candidate player.Player, method string, confidence float64) *playerMatch {
	return &playerMatch{
		player:       candidate,
		method:       method,
		confidence:   confidence,
		reassignTeam: in.Team != "" && in.Team != candidate.Team,
	}
}

func (s *PlayerResolverService) matchByAlias(ctx context.Context, in ResolvePlayerInput, canonicalName string, _ map[string]string) (*playerMatch, error) {
	playerID, ok, err := s.aliases.Lookup(ctx, in.Sport, canonicalName, in.Team)
	if err != nil {
		return nil, fmt.Errorf("lookup alias: %w", err)
	}
	if !ok {
		return nil, nil
	}

	found, ok, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get aliased player: %w", err)
	}
	if !ok {
		// curated alias points at a row that no longer exists; not fatal
		s.logger.WarnContext(ctx, "alias resolves to unknown player, skipping",
			"sport", in.Sport, "alias", canonicalName, "player_id", playerID)
		return nil, nil
	}
	return &playerMatch{player: found, method: MatchMethodAlias, confidence: confidenceAlias}, nil
}

func (s *PlayerResolverService) applyMatch(ctx context.Context, in ResolvePlayerInput, match playerMatch, sourceIDs map[string]string) (player.Player, error) {
	if match.reassignTeam {
		if err := s.players.UpdateTeam(ctx, match.player.ID, in.Team); err != nil {
			return player.Player{}, fmt.Errorf("reassign player team: %w", err)
		}
		match.player.Team = in.Team
	}

	if len(sourceIDs) > 0 {
		if err := s.players.AddSourceIDs(ctx, match.player.ID, in.Sport, sourceIDs); err != nil {
			return player.Player{}, fmt.Errorf("backfill player source ids: %w", err)
		}
		if match.player.SourceIDs == nil {
			match.player.SourceIDs = make(map[string]string, len(sourceIDs))
		}
		for source, externalID := range sourceIDs {
			if _, exists := match.player.SourceIDs[source]; !exists {
				match.player.SourceIDs[source] = externalID
			}
		}
	}

	confidence := match.confidence
	s.auditor.Emit(ctx, audit.Event{
		EntityType:      audit.EntityTypePlayer,
		EntityID:        match.player.ID,
		Action:          audit.ActionMatched,
		MatchMethod:     match.method,
		MatchConfidence: &confidence,
		Timestamp:       s.now().UTC(),
	})

	return match.player, nil
}

func (s *PlayerResolverService) createPlayer(ctx context.Context, in ResolvePlayerInput, canonicalName string, sourceIDs map[string]string) (player.Player, error) {
	newID, err := s.ids.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	team := in.Team
	if team == "" {
		team = player.TeamUnknown
	}

	created := player.Player{
		ID:            newID,
		Sport:         in.Sport,
		CanonicalName: canonicalName,
		DisplayName:   in.Name,
		Team:          team,
		Position:      strings.ToUpper(strings.TrimSpace(in.Position)),
		Active:        true,
		SourceIDs:     sourceIDs,
		CreatedAt:     s.now().UTC(),
		UpdatedAt:     s.now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.players.Create(ctx, created); err != nil {
		if errors.Is(err, player.ErrConflict) {
			return player.Player{}, err
		}
		return player.Player{}, fmt.Errorf("create player: %w", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		EntityType:  audit.EntityTypePlayer,
		EntityID:    created.ID,
		Action:      audit.ActionCreated,
		MatchMethod: MatchMethodCreated,
		Timestamp:   s.now().UTC(),
	})

	return created, nil
}

// filterSourceIDs drops unknown provider names with a warning; a typo in a
// source name must never fail the whole record.
func (s *PlayerResolverService) filterSourceIDs(ctx context.Context, raw map[string]string) map[string]string {
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

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
