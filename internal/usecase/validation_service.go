package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/normalize"
	"github.com/statline/canonical/internal/platform/logging"
)

// ValidationConfig mirrors the resolver knobs for the read-only pre-insert
// checks used by bulk-import paths.
type ValidationConfig struct {
	SupportedSports []string
	ConflictPairs   []normalize.ConflictPair
	MatchWindow     time.Duration
	TeamCodeMaxLen  int
	BulkWorkers     int
}

const (
	defaultTeamCodeMaxLen = 5
	defaultBulkWorkers    = 8
)

// ValidationResult is returned synchronously and never persisted. Errors
// block the record; warnings are informational. DuplicateOf is set only on
// a confident duplicate hit (exact id or natural key).
type ValidationResult struct {
	Valid       bool     `json:"is_valid"`
	Errors      []string `json:"errors,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
	DuplicateOf string   `json:"duplicate_of,omitempty"`
}

// PlayerRecord is a raw provider player record submitted for validation.
type PlayerRecord struct {
	Sport     string            `json:"sport"`
	Name      string            `json:"name"`
	Team      string            `json:"team,omitempty"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

// GameRecord is a raw provider game record submitted for validation.
type GameRecord struct {
	Sport     string            `json:"sport"`
	GameDate  time.Time         `json:"game_date"`
	AwayTeam  string            `json:"away_team"`
	HomeTeam  string            `json:"home_team"`
	SourceIDs map[string]string `json:"source_ids,omitempty"`
}

// ValidationService runs the pre-insert duplicate checks. Its duplicate
// search mirrors the resolver tiers but never writes.
type ValidationService struct {
	players player.Repository
	games   game.Repository
	logger  *logging.Logger

	sports         map[string]struct{}
	conflictPairs  []normalize.ConflictPair
	matchWindow    time.Duration
	teamCodeMaxLen int
	bulkWorkers    int
}

func NewValidationService(
	players player.Repository,
	games game.Repository,
	cfg ValidationConfig,
	logger *logging.Logger,
) *ValidationService {
	if logger == nil {
		logger = logging.Default()
	}
	sports := make(map[string]struct{}, len(cfg.SupportedSports))
	for _, s := range cfg.SupportedSports {
		sports[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	pairs := cfg.ConflictPairs
	if len(pairs) == 0 {
		pairs = normalize.DefaultConflictPairs()
	}
	window := cfg.MatchWindow
	if window <= 0 {
		window = defaultGameMatchWindow
	}
	maxLen := cfg.TeamCodeMaxLen
	if maxLen <= 0 {
		maxLen = defaultTeamCodeMaxLen
	}
	workers := cfg.BulkWorkers
	if workers <= 0 {
		workers = defaultBulkWorkers
	}

	return &ValidationService{
		players:        players,
		games:          games,
		logger:         logger,
		sports:         sports,
		conflictPairs:  pairs,
		matchWindow:    window,
		teamCodeMaxLen: maxLen,
		bulkWorkers:    workers,
	}
}

// ValidatePlayer checks one record without writing. Only storage failures
// return an error; data problems land in the result.
func (s *ValidationService) ValidatePlayer(ctx context.Context, rec PlayerRecord) (ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidatePlayer")
	defer span.End()

	result := ValidationResult{Valid: true}

	sport := strings.ToLower(strings.TrimSpace(rec.Sport))
	name := strings.TrimSpace(rec.Name)
	team := strings.ToUpper(strings.TrimSpace(rec.Team))

	if sport == "" {
		result.addError("sport is required")
	}
	if name == "" {
		result.addError("name is required")
	}
	if !result.Valid {
		// missing required fields: skip the remaining checks entirely
		return result, nil
	}

	if _, ok := s.sports[sport]; !ok {
		result.addError(fmt.Sprintf("unsupported sport %q", rec.Sport))
	}
	if team != "" && len(team) > s.teamCodeMaxLen {
		result.addError(fmt.Sprintf("team code %q exceeds %d characters", rec.Team, s.teamCodeMaxLen))
	}
	if !result.Valid {
		return result, nil
	}

	if err := s.searchPlayerDuplicates(ctx, sport, name, team, rec.SourceIDs, &result); err != nil {
		return ValidationResult{}, err
	}
	return result, nil
}

func (s *ValidationService) searchPlayerDuplicates(ctx context.Context, sport, name, team string, sourceIDs map[string]string, result *ValidationResult) error {
	for _, source := range sortedKeys(trimRecordSourceIDs(sourceIDs)) {
		externalID := strings.TrimSpace(sourceIDs[source])
		found, ok, err := s.players.GetBySourceID(ctx, sport, strings.ToLower(source), externalID)
		if err != nil {
			return fmt.Errorf("get player by source id: %w", err)
		}
		if ok {
			result.DuplicateOf = found.ID
			result.addWarning(fmt.Sprintf("source id %s=%s already belongs to player %s", source, externalID, found.ID))
			return nil
		}
	}

	canonicalName := normalize.Name(name)
	if team != "" {
		found, ok, err := s.players.GetActiveByTeamAndName(ctx, sport, team, canonicalName)
		if err != nil {
			return fmt.Errorf("get player by team and name: %w", err)
		}
		if ok {
			result.DuplicateOf = found.ID
			result.addWarning(fmt.Sprintf("player %s already exists for %s/%s", found.ID, team, canonicalName))
			return nil
		}
	}

	// weaker name-only hit: warn but leave the merge decision to the caller
	candidates, err := s.players.ListActiveByName(ctx, sport, canonicalName)
	if err != nil {
		return fmt.Errorf("list players by name: %w", err)
	}
	recordSuffix := normalize.Suffix(name)
	for _, candidate := range candidates {
		if normalize.SuffixesConflict(recordSuffix, normalize.Suffix(candidate.DisplayName), s.conflictPairs) {
			continue
		}
		result.addWarning(fmt.Sprintf("possible duplicate of player %s (same name, team %s)", candidate.ID, candidate.Team))
		return nil
	}
	return nil
}

// ValidateGame checks one record without writing.
func (s *ValidationService) ValidateGame(ctx context.Context, rec GameRecord) (ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateGame")
	defer span.End()

	result := ValidationResult{Valid: true}

	sport := strings.ToLower(strings.TrimSpace(rec.Sport))
	away := strings.ToUpper(strings.TrimSpace(rec.AwayTeam))
	home := strings.ToUpper(strings.TrimSpace(rec.HomeTeam))

	if sport == "" {
		result.addError("sport is required")
	}
	if rec.GameDate.IsZero() {
		result.addError("game_date is required")
	}
	if away == "" {
		result.addError("away_team is required")
	}
	if home == "" {
		result.addError("home_team is required")
	}
	if !result.Valid {
		return result, nil
	}

	if _, ok := s.sports[sport]; !ok {
		result.addError(fmt.Sprintf("unsupported sport %q", rec.Sport))
	}
	if len(away) > s.teamCodeMaxLen {
		result.addError(fmt.Sprintf("team code %q exceeds %d characters", rec.AwayTeam, s.teamCodeMaxLen))
	}
	if len(home) > s.teamCodeMaxLen {
		result.addError(fmt.Sprintf("team code %q exceeds %d characters", rec.HomeTeam, s.teamCodeMaxLen))
	}
	if away == home {
		result.addError("away_team and home_team must be different")
	}
	if !result.Valid {
		return result, nil
	}

	if err := s.searchGameDuplicates(ctx, sport, away, home, rec.GameDate.UTC(), rec.SourceIDs, &result); err != nil {
		return ValidationResult{}, err
	}
	return result, nil
}

func (s *ValidationService) searchGameDuplicates(ctx context.Context, sport, away, home string, date time.Time, sourceIDs map[string]string, result *ValidationResult) error {
	for _, source := range sortedKeys(trimRecordSourceIDs(sourceIDs)) {
		externalID := strings.TrimSpace(sourceIDs[source])
		found, ok, err := s.games.GetBySourceID(ctx, sport, strings.ToLower(source), externalID)
		if err != nil {
			return fmt.Errorf("get game by source id: %w", err)
		}
		if ok {
			result.DuplicateOf = found.ID
			result.addWarning(fmt.Sprintf("source id %s=%s already belongs to game %s", source, externalID, found.ID))
			return nil
		}
	}

	found, ok, err := s.games.FindByTeamsWithin(ctx, sport, away, home, date, s.matchWindow)
	if err != nil {
		return fmt.Errorf("find game by natural key: %w", err)
	}
	if ok {
		result.DuplicateOf = found.ID
		result.addWarning(fmt.Sprintf("game %s already exists for %s@%s within %s of %s",
			found.ID, away, home, s.matchWindow, date.Format(time.RFC3339)))
	}
	return nil
}

// ValidatePlayersBulk evaluates records independently on a worker pool and
// returns results in input order. A storage failure on any record fails the
// batch; per-record data problems do not.
func (s *ValidationService) ValidatePlayersBulk(ctx context.Context, records []PlayerRecord) ([]ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidatePlayersBulk")
	defer span.End()

	results := make([]ValidationResult, len(records))
	err := s.runBulk(len(records), func(i int) error {
		result, err := s.ValidatePlayer(ctx, records[i])
		if err != nil {
			return err
		}
		results[i] = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ValidateGamesBulk is the games counterpart of ValidatePlayersBulk.
func (s *ValidationService) ValidateGamesBulk(ctx context.Context, records []GameRecord) ([]ValidationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ValidationService.ValidateGamesBulk")
	defer span.End()

	results := make([]ValidationResult, len(records))
	err := s.runBulk(len(records), func(i int) error {
		result, err := s.ValidateGame(ctx, records[i])
		if err != nil {
			return err
		}
		results[i] = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *ValidationService) runBulk(count int, evaluate func(i int) error) error {
	if count == 0 {
		return nil
	}

	workers := s.bulkWorkers
	if workers > count {
		workers = count
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return fmt.Errorf("%w: create validation worker pool: %v", ErrDependencyUnavailable, err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	recordErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for i := 0; i < count; i++ {
		idx := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := evaluate(idx); err != nil {
				recordErr(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			recordErr(fmt.Errorf("submit validation task: %w", submitErr))
		}
	}
	wg.Wait()

	return firstErr
}

func (r *ValidationResult) addError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func trimRecordSourceIDs(raw map[string]string) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for source, externalID := range raw {
		if strings.TrimSpace(source) == "" || strings.TrimSpace(externalID) == "" {
			continue
		}
		out[source] = externalID
	}
	return out
}
