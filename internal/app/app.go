package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/statline/canonical/internal/config"
	"github.com/statline/canonical/internal/domain/alias"
	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/domain/game"
	"github.com/statline/canonical/internal/domain/player"
	auditsink "github.com/statline/canonical/internal/infrastructure/audit"
	"github.com/statline/canonical/internal/infrastructure/repository/memory"
	"github.com/statline/canonical/internal/infrastructure/repository/postgres"
	"github.com/statline/canonical/internal/interfaces/httpapi"
	idgen "github.com/statline/canonical/internal/platform/id"
	"github.com/statline/canonical/internal/platform/logging"
	"github.com/statline/canonical/internal/platform/resilience"
	"github.com/statline/canonical/internal/usecase"
)

// NewHTTPServer wires repositories, services and the router. With no
// DATABASE_URL the service runs entirely from seeded memory repositories,
// which is how local dev and the test suite operate. The returned cleanup
// closes the database pool and flushes in-flight audit deliveries.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		playerRepo player.Repository
		gameRepo   game.Repository
		aliasRepo  alias.Repository
		sinks      auditsink.Fanout
		cleanups   []func()
	)

	sinks = append(sinks, auditsink.NewLogEmitter(logger))

	if cfg.DBURL == "" {
		logger.Info("no DATABASE_URL configured, using seeded in-memory repositories")
		playerRepo = memory.NewPlayerRepository(memory.SeedPlayers())
		gameRepo = memory.NewGameRepository(memory.SeedGames(), cfg.GameMatchWindow)
		aliasRepo = memory.NewAliasRepository(memory.SeedAliases())
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { _ = db.Close() })

		playerRepo = postgres.NewPlayerRepository(db)
		gameRepo = postgres.NewGameRepository(db)
		aliasRepo = postgres.NewAliasRepository(db)
		sinks = append(sinks, postgres.NewAuditEmitter(db, logger))
	}

	if cfg.AuditWebhookEnabled {
		webhook := auditsink.NewWebhookEmitter(auditsink.WebhookEmitterConfig{
			URL:     cfg.AuditWebhookURL,
			Token:   cfg.AuditWebhookToken,
			Timeout: cfg.AuditWebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AuditCircuitEnabled,
				FailureThreshold: cfg.AuditCircuitFailureCount,
				OpenTimeout:      cfg.AuditCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AuditCircuitHalfOpenMaxReq,
			},
		}, logger)
		cleanups = append(cleanups, webhook.Close)
		sinks = append(sinks, webhook)
	}

	var auditor audit.Emitter = sinks
	ids := idgen.NewRandomGenerator()

	playerResolver := usecase.NewPlayerResolverService(playerRepo, aliasRepo, auditor, ids,
		usecase.PlayerResolverConfig{
			SupportedSources: cfg.SupportedSources,
			ConflictPairs:    cfg.ConflictSuffixPairs,
		}, logger)
	gameResolver := usecase.NewGameResolverService(gameRepo, auditor, ids,
		usecase.GameResolverConfig{
			SupportedSources: cfg.SupportedSources,
			MatchWindow:      cfg.GameMatchWindow,
			SeasonRollover:   cfg.SeasonRolloverMonths,
		}, logger)
	validation := usecase.NewValidationService(playerRepo, gameRepo,
		usecase.ValidationConfig{
			SupportedSports: cfg.SupportedSports,
			ConflictPairs:   cfg.ConflictSuffixPairs,
			MatchWindow:     cfg.GameMatchWindow,
			TeamCodeMaxLen:  cfg.TeamCodeMaxLen,
			BulkWorkers:     cfg.BulkValidateWorkers,
		}, logger)
	importer := usecase.NewImportService(validation, playerResolver, gameResolver, logger)
	entities := usecase.NewEntityService(playerRepo, gameRepo)

	handler := httpapi.NewHandler(playerResolver, gameResolver, validation, importer, entities, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return server, cleanup, nil
}
