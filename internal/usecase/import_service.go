package usecase

import (
	"context"
	"fmt"

	"github.com/statline/canonical/internal/platform/logging"
)

// ImportService runs bulk loads: records are validated on the worker pool
// first, then valid ones are resolved sequentially (same-entity writes must
// not race each other within one batch).
type ImportService struct {
	validation     *ValidationService
	playerResolver *PlayerResolverService
	gameResolver   *GameResolverService
	logger         *logging.Logger
}

func NewImportService(
	validation *ValidationService,
	playerResolver *PlayerResolverService,
	gameResolver *GameResolverService,
	logger *logging.Logger,
) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ImportService{
		validation:     validation,
		playerResolver: playerResolver,
		gameResolver:   gameResolver,
		logger:         logger,
	}
}

// ImportIssue itemizes one warning or error for manual follow-up.
type ImportIssue struct {
	Index    int    `json:"index"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ImportSummary is the operator-visible outcome of a bulk import.
type ImportSummary struct {
	Total   int           `json:"total"`
	Created int           `json:"created"`
	Matched int           `json:"matched"`
	Warned  int           `json:"warned"`
	Errored int           `json:"errored"`
	Issues  []ImportIssue `json:"issues,omitempty"`
}

const (
	issueSeverityError   = "error"
	issueSeverityWarning = "warning"
)

// ImportPlayers validates then resolves a batch of player records. A
// record's validation errors exclude only that record; storage failures
// abort the batch.
func (s *ImportService) ImportPlayers(ctx context.Context, records []PlayerRecord) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportPlayers")
	defer span.End()

	if len(records) == 0 {
		return ImportSummary{}, fmt.Errorf("%w: records are required", ErrInvalidInput)
	}

	results, err := s.validation.ValidatePlayersBulk(ctx, records)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("validate players: %w", err)
	}

	summary := ImportSummary{Total: len(records)}
	for i, result := range results {
		collectIssues(&summary, i, result)
		if !result.Valid {
			continue
		}

		_, created, err := s.playerResolver.ResolvePlayer(ctx, ResolvePlayerInput{
			Sport:     records[i].Sport,
			Name:      records[i].Name,
			Team:      records[i].Team,
			SourceIDs: records[i].SourceIDs,
		})
		if err != nil {
			return summary, fmt.Errorf("resolve player %d: %w", i, err)
		}
		if created {
			summary.Created++
		} else {
			summary.Matched++
		}
	}

	s.logger.InfoContext(ctx, "player import finished",
		"total", summary.Total, "created", summary.Created,
		"matched", summary.Matched, "warned", summary.Warned, "errored", summary.Errored)
	return summary, nil
}

// ImportGames is the games counterpart of ImportPlayers.
func (s *ImportService) ImportGames(ctx context.Context, records []GameRecord) (ImportSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ImportService.ImportGames")
	defer span.End()

	if len(records) == 0 {
		return ImportSummary{}, fmt.Errorf("%w: records are required", ErrInvalidInput)
	}

	results, err := s.validation.ValidateGamesBulk(ctx, records)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("validate games: %w", err)
	}

	summary := ImportSummary{Total: len(records)}
	for i, result := range results {
		collectIssues(&summary, i, result)
		if !result.Valid {
			continue
		}

		_, created, err := s.gameResolver.ResolveGame(ctx, ResolveGameInput{
			Sport:     records[i].Sport,
			GameDate:  records[i].GameDate,
			AwayTeam:  records[i].AwayTeam,
			HomeTeam:  records[i].HomeTeam,
			SourceIDs: records[i].SourceIDs,
		})
		if err != nil {
			return summary, fmt.Errorf("resolve game %d: %w", i, err)
		}
		if created {
			summary.Created++
		} else {
			summary.Matched++
		}
	}

	s.logger.InfoContext(ctx, "game import finished",
		"total", summary.Total, "created", summary.Created,
		"matched", summary.Matched, "warned", summary.Warned, "errored", summary.Errored)
	return summary, nil
}

func collectIssues(summary *ImportSummary, index int, result ValidationResult) {
	if !result.Valid {
		summary.Errored++
	} else if len(result.Warnings) > 0 {
		summary.Warned++
	}
	for _, msg := range result.Errors {
		summary.Issues = append(summary.Issues, ImportIssue{Index: index, Severity: issueSeverityError, Message: msg})
	}
	for _, msg := range result.Warnings {
		summary.Issues = append(summary.Issues, ImportIssue{Index: index, Severity: issueSeverityWarning, Message: msg})
	}
}
