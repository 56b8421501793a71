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

// PostgresErrorRecordStore implements the store.ErrorRecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresErrorRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresErrorRecordStore creates a new PostgreSQL implementation of the
// ErrorRecordStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresErrorRecordStore(db store.DBTX, logger *slog.Logger) *PostgresErrorRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresErrorRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "error_record_store")),
	}
}

// Ensure PostgresErrorRecordStore implements store.ErrorRecordStore interface
var _ store.ErrorRecordStore = (*PostgresErrorRecordStore)(nil)

const errorRecordColumns = `id, user_id, subject, topic, description, mistake_category,
	mastery_level, mastery_stage, revision_interval, next_review_at,
	review_history, archived, created_at, updated_at`

// Create implements store.ErrorRecordStore.Create
// It saves a new error record to the database, handling domain validation.
func (s *PostgresErrorRecordStore) Create(ctx context.Context, record *domain.ErrorRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("error record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	history, err := json.Marshal(reviewHistoryDates(record.ReviewHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal review history: %w", err)
	}

	query := `
		INSERT INTO error_records (` + errorRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.Subject,
		record.Topic,
		record.Description,
		record.MistakeCategory,
		record.MasteryLevel,
		record.MasteryStage,
		record.RevisionInterval,
		record.NextReviewAt,
		history,
		record.Archived,
		record.CreatedAt,
		record.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create error record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("user_id", record.UserID.String()))
		return MapError(err)
	}

	log.Debug("error record created",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", record.UserID.String()),
		slog.String("category", record.MistakeCategory))
	return nil
}

// GetByID implements store.ErrorRecordStore.GetByID
// Returns store.ErrErrorRecordNotFound if the record does not exist.
func (s *PostgresErrorRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error) {
	query := `SELECT ` + errorRecordColumns + ` FROM error_records WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetForUpdate implements store.ErrorRecordStore.GetForUpdate
// It locks the record's row for the duration of the surrounding transaction.
// Must be called on a store bound to a transaction via WithTx.
func (s *PostgresErrorRecordStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error) {
	query := `SELECT ` + errorRecordColumns + ` FROM error_records WHERE id = $1 FOR UPDATE`
	return s.getOne(ctx, query, id)
}

func (s *PostgresErrorRecordStore) getOne(ctx context.Context, query string, id uuid.UUID) (*domain.ErrorRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanErrorRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("error record not found", slog.String("record_id", id.String()))
			return nil, store.ErrErrorRecordNotFound
		}
		log.Error("failed to get error record",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return nil, MapError(err)
	}

	return record, nil
}

// Update implements store.ErrorRecordStore.Update
// Returns store.ErrErrorRecordNotFound if the record does not exist.
func (s *PostgresErrorRecordStore) Update(ctx context.Context, record *domain.ErrorRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("error record validation failed during update",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	history, err := json.Marshal(reviewHistoryDates(record.ReviewHistory))
	if err != nil {
		return fmt.Errorf("failed to marshal review history: %w", err)
	}

	query := `
		UPDATE error_records
		SET subject = $1, topic = $2, description = $3, mistake_category = $4,
			mastery_level = $5, mastery_stage = $6, revision_interval = $7,
			next_review_at = $8, review_history = $9, archived = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		record.Subject,
		record.Topic,
		record.Description,
		record.MistakeCategory,
		record.MasteryLevel,
		record.MasteryStage,
		record.RevisionInterval,
		record.NextReviewAt,
		history,
		record.Archived,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		log.Error("failed to update error record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		log.Debug("error record not found for update",
			slog.String("record_id", record.ID.String()))
		return store.ErrErrorRecordNotFound
	}

	log.Debug("error record updated",
		slog.String("record_id", record.ID.String()),
		slog.Int("mastery_level", record.MasteryLevel),
		slog.String("mastery_stage", string(record.MasteryStage)))
	return nil
}

// ListByUser implements store.ErrorRecordStore.ListByUser
func (s *PostgresErrorRecordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	query := `
		SELECT ` + errorRecordColumns + `
		FROM error_records
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, userID)
}

// ListDue implements store.ErrorRecordStore.ListDue
// It returns non-archived, not-yet-mastered records due on or before the
// given day, most overdue first.
func (s *PostgresErrorRecordStore) ListDue(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.ErrorRecord, error) {
	query := `
		SELECT ` + errorRecordColumns + `
		FROM error_records
		WHERE user_id = $1
		  AND NOT archived
		  AND mastery_stage <> 'mastered'
		  AND next_review_at <= $2
		ORDER BY next_review_at ASC
	`
	return s.list(ctx, query, userID, domain.DateOf(day))
}

func (s *PostgresErrorRecordStore) list(ctx context.Context, query string, args ...any) ([]*domain.ErrorRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query error records", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close rows", slog.String("error", closeErr.Error()))
		}
	}()

	var records []*domain.ErrorRecord
	for rows.Next() {
		record, err := scanErrorRecord(rows.Scan)
		if err != nil {
			log.Error("failed to scan error record", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return records, nil
}

// SetArchived implements store.ErrorRecordStore.SetArchived
func (s *PostgresErrorRecordStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		`UPDATE error_records SET archived = $1, updated_at = $2 WHERE id = $3`,
		archived,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to set archived flag",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return MapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if rows == 0 {
		return store.ErrErrorRecordNotFound
	}

	log.Debug("error record archived flag set",
		slog.String("record_id", id.String()),
		slog.Bool("archived", archived))
	return nil
}

// WithTx implements store.ErrorRecordStore.WithTx
func (s *PostgresErrorRecordStore) WithTx(tx *sql.Tx) store.ErrorRecordStore {
	return &PostgresErrorRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanErrorRecord scans one row using the standard column order.
func scanErrorRecord(scan func(dest ...any) error) (*domain.ErrorRecord, error) {
	var record domain.ErrorRecord
	var stage string
	var history []byte

	err := scan(
		&record.ID,
		&record.UserID,
		&record.Subject,
		&record.Topic,
		&record.Description,
		&record.MistakeCategory,
		&record.MasteryLevel,
		&stage,
		&record.RevisionInterval,
		&record.NextReviewAt,
		&history,
		&record.Archived,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.MasteryStage = domain.MasteryStage(stage)
	record.NextReviewAt = domain.DateOf(record.NextReviewAt)

	var dates []string
	if err := json.Unmarshal(history, &dates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal review history: %w", err)
	}
	record.ReviewHistory = make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.ParseInLocation(time.DateOnly, d, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("invalid review history date %q: %w", d, err)
		}
		record.ReviewHistory = append(record.ReviewHistory, t)
	}

	return &record, nil
}

// reviewHistoryDates renders the history as date-only strings for jsonb
// storage.
func reviewHistoryDates(history []time.Time) []string {
	dates := make([]string, 0, len(history))
	for _, t := range history {
		dates = append(dates, domain.DateOf(t).Format(time.DateOnly))
	}
	return dates
}
