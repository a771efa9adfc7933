package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	"github.com/statline/canonical/internal/infrastructure/repository/memory"
	"github.com/statline/canonical/internal/platform/id"
	"github.com/statline/canonical/internal/platform/logging"
	"github.com/statline/canonical/internal/usecase"
)

const testJobToken = "test-job-token"

func newTestRouter(t *testing.T, players []player.Player, games []game.Game) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	playerRepo := memory.NewPlayerRepository(players)
	gameRepo := memory.NewGameRepository(games, 6*time.Hour)
	aliasRepo := memory.NewAliasRepository(nil)
	auditor := memory.NewAuditEmitter()
	ids := id.NewRandomGenerator()

	playerResolver := usecase.NewPlayerResolverService(playerRepo, aliasRepo, auditor, ids,
		usecase.PlayerResolverConfig{SupportedSources: []string{"statsfeed", "oddsline"}}, logger)
	gameResolver := usecase.NewGameResolverService(gameRepo, auditor, ids,
		usecase.GameResolverConfig{SupportedSources: []string{"statsfeed", "oddsline"}, MatchWindow: 6 * time.Hour}, logger)
	validation := usecase.NewValidationService(playerRepo, gameRepo,
		usecase.ValidationConfig{SupportedSports: []string{"nba", "nfl"}, MatchWindow: 6 * time.Hour}, logger)
	importer := usecase.NewImportService(validation, playerResolver, gameResolver, logger)
	entities := usecase.NewEntityService(playerRepo, gameRepo)

	handler := NewHandler(playerResolver, gameResolver, validation, importer, entities, logger)
	return NewRouter(handler, logger, []string{"*"}, testJobToken)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestResolvePlayerEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	body := `{"sport":"nba","name":"Luka Dončić","team":"DAL","source_ids":{"statsfeed":"sf-1"}}`
	rec := doJSON(t, router, http.MethodPost, "/v1/players/resolve", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first resolve status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}

	// same record again: matched, not created
	rec = doJSON(t, router, http.MethodPost, "/v1/players/resolve", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second resolve status = %d, want 200", rec.Code)
	}
}

func TestResolvePlayerEndpointRejectsMissingName(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/players/resolve", `{"sport":"nba"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("error body = %+v, want INVALID_ARGUMENT", envelope.Error)
	}
}

func TestResolveGameEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	body := `{"sport":"nba","game_date":"2025-11-12T00:30:00Z","away_team":"BOS","home_team":"DEN"}`
	rec := doJSON(t, router, http.MethodPost, "/v1/games/resolve", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	// one hour off: same game within the window
	body = `{"sport":"nba","game_date":"2025-11-11T23:30:00Z","away_team":"BOS","home_team":"DEN"}`
	rec = doJSON(t, router, http.MethodPost, "/v1/games/resolve", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("window match status = %d, want 200", rec.Code)
	}
}

func TestValidateGameEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	body := `{"sport":"nba","game_date":"2025-11-12T00:30:00Z","away_team":"BOS","home_team":"BOS"}`
	rec := doJSON(t, router, http.MethodPost, "/v1/games/validate", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (validation problems are data, not errors)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "must be different") {
		t.Fatalf("body = %s, want same-team error", rec.Body.String())
	}
}

func TestGetPlayerEndpoint(t *testing.T) {
	seed := player.Player{
		ID: "pl-1", Sport: "nba",
		CanonicalName: "marcus hollins", DisplayName: "Marcus Hollins",
		Team: "BOS", Active: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	router := newTestRouter(t, []player.Player{seed}, nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/players/pl-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/players/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Error == nil || envelope.Error.Status != "NOT_FOUND" {
		t.Fatalf("error body = %+v, want NOT_FOUND", envelope.Error)
	}
}

func TestImportPlayersRequiresJobToken(t *testing.T) {
	router := newTestRouter(t, nil, nil)
	body := `{"records":[{"sport":"nba","name":"Jalen Brooks"}]}`

	rec := doJSON(t, router, http.MethodPost, "/v1/internal/import/players", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/internal/import/players", body,
		map[string]string{"X-Internal-Job-Token": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status with wrong token = %d, want 401", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/internal/import/players", body,
		map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"created":1`) {
		t.Fatalf("body = %s, want one created record", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/players/resolve", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want *", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}
