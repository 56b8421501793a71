package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/store"
)

// PostgresLeaderboardStore implements the store.LeaderboardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLeaderboardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLeaderboardStore creates a new PostgreSQL implementation of the
// LeaderboardStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresLeaderboardStore(db store.DBTX, logger *slog.Logger) *PostgresLeaderboardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLeaderboardStore{
		db:     db,
		logger: logger.With(slog.String("component", "leaderboard_store")),
	}
}

// Ensure PostgresLeaderboardStore implements store.LeaderboardStore interface
var _ store.LeaderboardStore = (*PostgresLeaderboardStore)(nil)

// Upsert implements store.LeaderboardStore.Upsert
// The snapshot is overwritten wholesale, never merged.
func (s *PostgresLeaderboardStore) Upsert(ctx context.Context, entry *domain.LeaderboardEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("leaderboard entry validation failed",
			slog.String("error", err.Error()),
			slog.String("user_id", entry.UserID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO leaderboard_entries (user_id, display_name, total_errors, repeated_mistake_count, streak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET display_name = $2, total_errors = $3, repeated_mistake_count = $4, streak = $5, updated_at = $6
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.UserID,
		entry.DisplayName,
		entry.TotalErrors,
		entry.RepeatedMistakeCount,
		entry.Streak,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to upsert leaderboard entry",
			slog.String("error", err.Error()),
			slog.String("user_id", entry.UserID.String()))
		return MapError(err)
	}

	log.Debug("leaderboard entry upserted",
		slog.String("user_id", entry.UserID.String()),
		slog.Int("repeated_mistake_count", entry.RepeatedMistakeCount))
	return nil
}

// List implements store.LeaderboardStore.List
func (s *PostgresLeaderboardStore) List(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, display_name, total_errors, repeated_mistake_count, streak, updated_at
		 FROM leaderboard_entries`,
	)
	if err != nil {
		log.Error("failed to query leaderboard entries", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var entries []*domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(
			&e.UserID,
			&e.DisplayName,
			&e.TotalErrors,
			&e.RepeatedMistakeCount,
			&e.Streak,
			&e.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return entries, nil
}
