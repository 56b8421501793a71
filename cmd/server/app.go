package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/errata-app/errata-api/internal/config"
	"github.com/errata-app/errata-api/internal/domain/mastery"
	"github.com/errata-app/errata-api/internal/events"
	"github.com/errata-app/errata-api/internal/generation"
	"github.com/errata-app/errata-api/internal/platform/clock"
	"github.com/errata-app/errata-api/internal/platform/gemini"
	"github.com/errata-app/errata-api/internal/platform/postgres"
	"github.com/errata-app/errata-api/internal/service/collection"
	"github.com/errata-app/errata-api/internal/service/identity"
	"github.com/errata-app/errata-api/internal/service/leaderboard"
	"github.com/errata-app/errata-api/internal/service/progression"
	"github.com/errata-app/errata-api/internal/service/review"
	"github.com/errata-app/errata-api/internal/store"
)

// application bundles the composed dependencies of the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	tokenService       identity.TokenService
	reviewService      review.ReviewService
	progressionService progression.ProgressionService
	leaderboardService leaderboard.LeaderboardService
	collectionService  collection.CollectionService
	generator          generation.Generator
}

// newApplication wires stores, services and event handlers together.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	tokenService, err := identity.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	recordStore := postgres.NewPostgresErrorRecordStore(db, log)
	revisionStore := postgres.NewPostgresRevisionLogStore(db, log)
	xpStateStore := postgres.NewPostgresXPStateStore(db, log)
	activityStore := postgres.NewPostgresActivityStore(db, log)
	leaderboardStore := postgres.NewPostgresLeaderboardStore(db, log)
	collectionStore := postgres.NewPostgresCollectionStore(db, log)

	clk := clock.System{}
	emitter := events.NewInMemoryEmitter(log)

	reviewService := review.NewReviewService(
		store.NewDBTransactor(db),
		recordStore,
		revisionStore,
		mastery.NewDefaultScheduler(),
		clk,
		emitter,
		log,
	)
	progressionService := progression.NewProgressionService(
		xpStateStore, activityStore, recordStore, clk, log,
	)
	leaderboardService := leaderboard.NewLeaderboardService(
		leaderboardStore, recordStore, xpStateStore, log,
	)
	collectionService := collection.NewCollectionService(collectionStore, emitter, log)

	// Rewards and leaderboard snapshots ride on the review events.
	emitter.RegisterHandler(progression.NewRewardHandler(progressionService, log))
	emitter.RegisterHandler(leaderboard.NewRefreshHandler(leaderboardService, log))

	var generator generation.Generator
	if cfg.LLM.Enabled() {
		g, err := gemini.NewGenerator(ctx, log, cfg.LLM)
		if err != nil {
			return nil, fmt.Errorf("failed to create generator: %w", err)
		}
		generator = g
	} else {
		log.Info("text generation disabled: no API key configured")
	}

	return &application{
		config:             cfg,
		logger:             log,
		db:                 db,
		tokenService:       tokenService,
		reviewService:      reviewService,
		progressionService: progressionService,
		leaderboardService: leaderboardService,
		collectionService:  collectionService,
		generator:          generator,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", "error", err)
		}
	}
}
