package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/store"
)

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the
// ActivityStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db store.DBTX, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

// Ensure PostgresActivityStore implements store.ActivityStore interface
var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// Increment implements store.ActivityStore.Increment
// The counter is incremented server-side in a single statement; racing
// same-day actions serialize on the row and each observes a distinct count.
func (s *PostgresActivityStore) Increment(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO activity_days (user_id, day, count)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, day)
		DO UPDATE SET count = activity_days.count + 1
		RETURNING count
	`

	var count int
	err := s.db.QueryRowContext(ctx, query, userID, domain.DateOf(day)).Scan(&count)
	if err != nil {
		log.Error("failed to increment activity counter",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	log.Debug("activity counter incremented",
		slog.String("user_id", userID.String()),
		slog.Int("count", count))
	return count, nil
}

// Get implements store.ActivityStore.Get
// Returns zero (not an error) when the (user, day) pair has no row.
func (s *PostgresActivityStore) Get(ctx context.Context, userID uuid.UUID, day time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT count FROM activity_days WHERE user_id = $1 AND day = $2`,
		userID,
		domain.DateOf(day),
	).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		log.Error("failed to get activity counter",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, MapError(err)
	}

	return count, nil
}

// ListByUser implements store.ActivityStore.ListByUser
func (s *PostgresActivityStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActivityDay, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, day, count FROM activity_days WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		log.Error("failed to query activity days",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var days []domain.ActivityDay
	for rows.Next() {
		var d domain.ActivityDay
		if err := rows.Scan(&d.UserID, &d.Day, &d.Count); err != nil {
			return nil, MapError(err)
		}
		d.Day = domain.DateOf(d.Day)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return days, nil
}
