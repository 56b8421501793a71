package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/store"
)

// PostgresRevisionLogStore implements the store.RevisionLogStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRevisionLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRevisionLogStore creates a new PostgreSQL implementation of the
// RevisionLogStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRevisionLogStore(db store.DBTX, logger *slog.Logger) *PostgresRevisionLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRevisionLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "revision_log_store")),
	}
}

// Ensure PostgresRevisionLogStore implements store.RevisionLogStore interface
var _ store.RevisionLogStore = (*PostgresRevisionLogStore)(nil)

// Append implements store.RevisionLogStore.Append
func (s *PostgresRevisionLogStore) Append(ctx context.Context, entry *domain.RevisionLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO revision_logs (id, user_id, error_id, outcome, level_before, level_after,
			interval_before, interval_after, reviewed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.ErrorID,
		entry.Outcome,
		entry.LevelBefore,
		entry.LevelAfter,
		entry.IntervalBefore,
		entry.IntervalAfter,
		entry.ReviewedAt,
	)
	if err != nil {
		log.Error("failed to append revision log",
			slog.String("error", err.Error()),
			slog.String("error_id", entry.ErrorID.String()))
		return MapError(err)
	}

	return nil
}

// ListByUser implements store.RevisionLogStore.ListByUser
func (s *PostgresRevisionLogStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RevisionLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, user_id, error_id, outcome, level_before, level_after,
			interval_before, interval_after, reviewed_at
		 FROM revision_logs
		 WHERE user_id = $1
		 ORDER BY reviewed_at DESC
		 LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		log.Error("failed to query revision logs",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var entries []*domain.RevisionLog
	for rows.Next() {
		var e domain.RevisionLog
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.ErrorID,
			&e.Outcome,
			&e.LevelBefore,
			&e.LevelAfter,
			&e.IntervalBefore,
			&e.IntervalAfter,
			&e.ReviewedAt,
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

// WithTx implements store.RevisionLogStore.WithTx
func (s *PostgresRevisionLogStore) WithTx(tx *sql.Tx) store.RevisionLogStore {
	return &PostgresRevisionLogStore{
		db:     tx,
		logger: s.logger,
	}
}
