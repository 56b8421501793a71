package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/store"
)

// PostgresXPStateStore implements the store.XPStateStore interface
// using a PostgreSQL database as the storage backend.
type PostgresXPStateStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresXPStateStore creates a new PostgreSQL implementation of the
// XPStateStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresXPStateStore(db store.DBTX, logger *slog.Logger) *PostgresXPStateStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresXPStateStore{
		db:     db,
		logger: logger.With(slog.String("component", "xp_state_store")),
	}
}

// Ensure PostgresXPStateStore implements store.XPStateStore interface
var _ store.XPStateStore = (*PostgresXPStateStore)(nil)

const xpStateColumns = `user_id, total_xp, level, level_name, current_streak, longest_streak, badges, updated_at`

// Get implements store.XPStateStore.Get
// Returns store.ErrXPStateNotFound if the user has no state row yet.
func (s *PostgresXPStateStore) Get(ctx context.Context, userID uuid.UUID) (*domain.XPState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + xpStateColumns + ` FROM xp_states WHERE user_id = $1`
	state, err := scanXPState(s.db.QueryRowContext(ctx, query, userID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("xp state not found", slog.String("user_id", userID.String()))
			return nil, store.ErrXPStateNotFound
		}
		log.Error("failed to get xp state",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}

	return state, nil
}

// AddXP implements store.XPStateStore.AddXP
// The increment happens server-side in a single statement so two racing
// awards both land.
func (s *PostgresXPStateStore) AddXP(ctx context.Context, userID uuid.UUID, amount int) (*domain.XPState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO xp_states (user_id, total_xp, level, level_name, current_streak, longest_streak, badges, updated_at)
		VALUES ($1, $2, 1, 'Beginner', 0, 0, '[]', $3)
		ON CONFLICT (user_id)
		DO UPDATE SET total_xp = xp_states.total_xp + $2, updated_at = $3
		RETURNING ` + xpStateColumns

	state, err := scanXPState(s.db.QueryRowContext(ctx, query, userID, amount, time.Now().UTC()).Scan)
	if err != nil {
		log.Error("failed to add xp",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("amount", amount))
		return nil, MapError(err)
	}

	log.Debug("xp added",
		slog.String("user_id", userID.String()),
		slog.Int("amount", amount),
		slog.Int("total_xp", state.TotalXP))
	return state, nil
}

// UpdateLevel implements store.XPStateStore.UpdateLevel
func (s *PostgresXPStateStore) UpdateLevel(ctx context.Context, userID uuid.UUID, level int, levelName string) error {
	return s.exec(ctx,
		`UPDATE xp_states SET level = $1, level_name = $2, updated_at = $3 WHERE user_id = $4`,
		level, levelName, time.Now().UTC(), userID)
}

// UpdateStreak implements store.XPStateStore.UpdateStreak
func (s *PostgresXPStateStore) UpdateStreak(ctx context.Context, userID uuid.UUID, current, longest int) error {
	return s.exec(ctx,
		`UPDATE xp_states SET current_streak = $1, longest_streak = $2, updated_at = $3 WHERE user_id = $4`,
		current, longest, time.Now().UTC(), userID)
}

// SetBadges implements store.XPStateStore.SetBadges
func (s *PostgresXPStateStore) SetBadges(ctx context.Context, userID uuid.UUID, badges []string) error {
	encoded, err := json.Marshal(badges)
	if err != nil {
		return fmt.Errorf("failed to marshal badges: %w", err)
	}
	return s.exec(ctx,
		`UPDATE xp_states SET badges = $1, updated_at = $2 WHERE user_id = $3`,
		encoded, time.Now().UTC(), userID)
}

func (s *PostgresXPStateStore) exec(ctx context.Context, query string, args ...any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update xp state", slog.String("error", err.Error()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrXPStateNotFound
	}

	return nil
}

func scanXPState(scan func(dest ...any) error) (*domain.XPState, error) {
	var state domain.XPState
	var badges []byte

	err := scan(
		&state.UserID,
		&state.TotalXP,
		&state.Level,
		&state.LevelName,
		&state.CurrentStreak,
		&state.LongestStreak,
		&badges,
		&state.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(badges, &state.Badges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal badges: %w", err)
	}
	if state.Badges == nil {
		state.Badges = []string{}
	}

	return &state, nil
}
