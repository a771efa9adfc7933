package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/infrastructure/repository/memory"
	"github.com/statline/canonical/internal/platform/logging"
)

func newGameResolver(games []game.Game) (*GameResolverService, *memory.GameRepository, *memory.AuditEmitter) {
	repo := memory.NewGameRepository(games, 6*time.Hour)
	auditor := memory.NewAuditEmitter()
	svc := NewGameResolverService(
		repo,
		auditor,
		&sequenceIDs{},
		GameResolverConfig{
			SupportedSources: []string{"statsfeed", "oddsline"},
			MatchWindow:      6 * time.Hour,
			SeasonRollover: map[string]time.Month{
				"nba": time.October,
				"nfl": time.September,
			},
		},
		logging.NewNop(),
	)
	svc.now = func() time.Time { return testClock }
	return svc, repo, auditor
}

func existingGame(id, sport, away, home string, date time.Time, sourceIDs map[string]string) game.Game {
	return game.Game{
		ID:        id,
		Sport:     sport,
		GameDate:  date,
		AwayTeam:  away,
		HomeTeam:  home,
		Season:    game.DeriveSeason(date, time.October),
		Status:    game.StatusScheduled,
		SourceIDs: sourceIDs,
		CreatedAt: date.Add(-72 * time.Hour),
		UpdatedAt: date.Add(-72 * time.Hour),
	}
}

func TestResolveGameCreatesWhenUnseen(t *testing.T) {
	svc, repo, auditor := newGameResolver(nil)

	date := time.Date(2025, time.November, 12, 0, 30, 0, 0, time.UTC)
	got, created, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:     "nba",
		GameDate:  date,
		AwayTeam:  "bos",
		HomeTeam:  "den",
		SourceIDs: map[string]string{"statsfeed": "sf-g-1"},
	})
	if err != nil {
		t.Fatalf("ResolveGame: %v", err)
	}
	if !created {
		t.Fatal("expected a new game to be created")
	}
	if got.AwayTeam != "BOS" || got.HomeTeam != "DEN" {
		t.Fatalf("teams = %s@%s, want uppercased BOS@DEN", got.AwayTeam, got.HomeTeam)
	}
	if got.Status != game.StatusScheduled {
		t.Fatalf("status = %s, want scheduled", got.Status)
	}
	if got.Season != 2025 {
		t.Fatalf("season = %d, want 2025 for a November game with October rollover", got.Season)
	}

	if rows := repo.Games(); len(rows) != 1 {
		t.Fatalf("stored games = %d, want 1", len(rows))
	}
	events := auditor.Events()
	if len(events) != 1 || events[0].Action != audit.ActionCreated || events[0].EntityType != audit.EntityTypeGame {
		t.Fatalf("audit events = %+v, want one game created event", events)
	}
}

func TestResolveGameSeasonSpansCalendarYears(t *testing.T) {
	svc, _, _ := newGameResolver(nil)

	// February playoff game belongs to the season that started the prior fall
	got, _, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:    "nba",
		GameDate: time.Date(2026, time.February, 3, 2, 0, 0, 0, time.UTC),
		AwayTeam: "MIA",
		HomeTeam: "NYK",
	})
	if err != nil {
		t.Fatalf("ResolveGame: %v", err)
	}
	if got.Season != 2025 {
		t.Fatalf("season = %d, want 2025", got.Season)
	}
}

func TestResolveGameMatchesBySourceID(t *testing.T) {
	date := time.Date(2025, time.November, 12, 0, 30, 0, 0, time.UTC)
	seed := existingGame("gm-1", "nba", "BOS", "DEN", date, map[string]string{"statsfeed": "sf-g-1"})
	svc, _, auditor := newGameResolver([]game.Game{seed})

	got, created, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:    "nba",
		GameDate: date.Add(48 * time.Hour), // provider even disagrees on the date
		AwayTeam: "BOS",
		HomeTeam: "DEN",
		SourceIDs: map[string]string{
			"statsfeed": "sf-g-1",
		},
	})
	if err != nil {
		t.Fatalf("ResolveGame: %v", err)
	}
	if created || got.ID != "gm-1" {
		t.Fatalf("got id=%s created=%v, want source-id match on gm-1", got.ID, created)
	}
	if events := auditor.Events(); events[0].MatchMethod != MatchMethodExternalID {
		t.Fatalf("match method = %s, want %s", events[0].MatchMethod, MatchMethodExternalID)
	}
}

func TestResolveGameMatchesWithinTimeWindow(t *testing.T) {
	// stored in UTC off a US evening broadcast; provider reports local date
	stored := time.Date(2025, time.November, 13, 0, 30, 0, 0, time.UTC)
	seed := existingGame("gm-1", "nba", "BOS", "DEN", stored, nil)
	svc, repo, auditor := newGameResolver([]game.Game{seed})

	got, created, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:     "nba",
		GameDate:  time.Date(2025, time.November, 12, 19, 30, 0, 0, time.UTC), // 5h earlier
		AwayTeam:  "BOS",
		HomeTeam:  "DEN",
		SourceIDs: map[string]string{"oddsline": "ol-g-7"},
	})
	if err != nil {
		t.Fatalf("ResolveGame: %v", err)
	}
	if created || got.ID != "gm-1" {
		t.Fatalf("got id=%s created=%v, want window match on gm-1", got.ID, created)
	}

	events := auditor.Events()
	if events[0].MatchMethod != MatchMethodTimeWindow {
		t.Fatalf("match method = %s, want %s", events[0].MatchMethod, MatchMethodTimeWindow)
	}
	if events[0].MatchConfidence == nil || *events[0].MatchConfidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", events[0].MatchConfidence)
	}

	stored2, _, _ := repo.GetByID(context.Background(), "gm-1")
	if stored2.SourceIDs["oddsline"] != "ol-g-7" {
		t.Fatal("window match must backfill the new source id")
	}
}

func TestResolveGameOutsideWindowCreates(t *testing.T) {
	stored := time.Date(2025, time.November, 13, 0, 30, 0, 0, time.UTC)
	seed := existingGame("gm-1", "nba", "BOS", "DEN", stored, nil)
	svc, repo, _ := newGameResolver([]game.Game{seed})

	// a rematch two days later is a different game
	_, created, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:    "nba",
		GameDate: stored.Add(48 * time.Hour),
		AwayTeam: "BOS",
		HomeTeam: "DEN",
	})
	if err != nil {
		t.Fatalf("ResolveGame: %v", err)
	}
	if !created {
		t.Fatal("game outside the window must create a new row")
	}
	if rows := repo.Games(); len(rows) != 2 {
		t.Fatalf("stored games = %d, want 2", len(rows))
	}
}

func TestResolveGameRejectsSameTeams(t *testing.T) {
	svc, _, _ := newGameResolver(nil)

	_, _, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:    "nba",
		GameDate: testClock,
		AwayTeam: "BOS",
		HomeTeam: "bos",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for away==home", err)
	}
}

// conflictOnceGameRepo mirrors the player variant: first Create persists the
// row but reports a conflict, as when a concurrent insert wins the race.
type conflictOnceGameRepo struct {
	*memory.GameRepository
	conflicted bool
}

func (r *conflictOnceGameRepo) Create(ctx context.Context, g game.Game) error {
	if !r.conflicted {
		r.conflicted = true
		if err := r.GameRepository.Create(ctx, g); err != nil {
			return err
		}
		return game.ErrConflict
	}
	return r.GameRepository.Create(ctx, g)
}

func TestResolveGameRetriesLookupAfterCreateConflict(t *testing.T) {
	repo := &conflictOnceGameRepo{GameRepository: memory.NewGameRepository(nil, 6*time.Hour)}
	auditor := memory.NewAuditEmitter()
	svc := NewGameResolverService(
		repo,
		auditor,
		&sequenceIDs{},
		GameResolverConfig{SupportedSources: []string{"statsfeed"}},
		logging.NewNop(),
	)
	svc.now = func() time.Time { return testClock }

	got, created, err := svc.ResolveGame(context.Background(), ResolveGameInput{
		Sport:    "nba",
		GameDate: time.Date(2025, time.November, 12, 0, 30, 0, 0, time.UTC),
		AwayTeam: "BOS",
		HomeTeam: "DEN",
	})
	if err != nil {
		t.Fatalf("ResolveGame after conflict: %v", err)
	}
	if created {
		t.Fatal("conflict retry must report a match, not a create")
	}
	if got.AwayTeam != "BOS" || got.HomeTeam != "DEN" {
		t.Fatalf("unexpected game returned: %+v", got)
	}
}
