package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/infrastructure/repository/memory"
	"github.com/statline/canonical/internal/platform/logging"
)

func newImportService(players []player.Player, games []game.Game) (*ImportService, *memory.PlayerRepository, *memory.GameRepository) {
	playerRepo := memory.NewPlayerRepository(players)
	gameRepo := memory.NewGameRepository(games, 6*time.Hour)
	auditor := memory.NewAuditEmitter()
	logger := logging.NewNop()

	validation := NewValidationService(playerRepo, gameRepo, ValidationConfig{
		SupportedSports: []string{"nba", "nfl"},
		MatchWindow:     6 * time.Hour,
		BulkWorkers:     4,
	}, logger)

	playerResolver := NewPlayerResolverService(playerRepo, memory.NewAliasRepository(nil), auditor, &sequenceIDs{},
		PlayerResolverConfig{SupportedSources: []string{"statsfeed"}}, logger)
	playerResolver.now = func() time.Time { return testClock }

	gameResolver := NewGameResolverService(gameRepo, auditor, &sequenceIDs{next: 1000},
		GameResolverConfig{SupportedSources: []string{"statsfeed"}, MatchWindow: 6 * time.Hour}, logger)
	gameResolver.now = func() time.Time { return testClock }

	return NewImportService(validation, playerResolver, gameResolver, logger), playerRepo, gameRepo
}

func TestImportPlayersMixedBatch(t *testing.T) {
	seed := existingPlayer("pl-1", "nba", "Marcus Hollins", "BOS", testClock.Add(-time.Hour),
		map[string]string{"statsfeed": "sf-1"})
	svc, repo, _ := newImportService([]player.Player{seed}, nil)

	summary, err := svc.ImportPlayers(context.Background(), []PlayerRecord{
		{Sport: "nba", Name: "Marcus Hollins", Team: "BOS", SourceIDs: map[string]string{"statsfeed": "sf-1"}},
		{Sport: "nba", Name: "Jalen Brooks", Team: "SAC"},
		{Sport: "nba"}, // missing name
		{Sport: "cricket", Name: "Someone"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.Warned, "the duplicate resolves but carries a warning")
	assert.Equal(t, 2, summary.Errored)

	var errorIssues, warningIssues int
	for _, issue := range summary.Issues {
		switch issue.Severity {
		case issueSeverityError:
			errorIssues++
		case issueSeverityWarning:
			warningIssues++
		}
	}
	assert.Equal(t, 2, errorIssues)
	assert.Equal(t, 1, warningIssues)

	rows := repo.Players()
	require.Len(t, rows, 2, "one seed plus one created")
}

func TestImportPlayersRejectsEmptyBatch(t *testing.T) {
	svc, _, _ := newImportService(nil, nil)

	_, err := svc.ImportPlayers(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportGamesMixedBatch(t *testing.T) {
	stored := time.Date(2025, time.November, 13, 0, 30, 0, 0, time.UTC)
	seed := existingGame("gm-1", "nba", "BOS", "DEN", stored, nil)
	svc, _, repo := newImportService(nil, []game.Game{seed})

	summary, err := svc.ImportGames(context.Background(), []GameRecord{
		{Sport: "nba", GameDate: stored.Add(-3 * time.Hour), AwayTeam: "BOS", HomeTeam: "DEN"},
		{Sport: "nba", GameDate: stored.Add(100 * time.Hour), AwayTeam: "MIA", HomeTeam: "NYK"},
		{Sport: "nba", GameDate: stored, AwayTeam: "LAL", HomeTeam: "LAL"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Matched)
	assert.Equal(t, 1, summary.Errored)

	rows := repo.Games()
	require.Len(t, rows, 2, "one seed plus one created")
}
