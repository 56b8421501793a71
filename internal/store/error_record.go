package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// ErrorRecordStore defines the interface for error record persistence.
type ErrorRecordStore interface {
	// Create saves a new error record.
	// Returns validation errors if the record data is invalid.
	Create(ctx context.Context, record *domain.ErrorRecord) error

	// GetByID retrieves an error record by its unique ID.
	// Returns ErrErrorRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error)

	// GetForUpdate retrieves an error record and locks its row for the
	// duration of the surrounding transaction. It MUST be called on a
	// store bound to a transaction via WithTx; review transitions rely on
	// the lock so concurrent outcomes cannot double-advance the interval.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error)

	// Update overwrites an existing record's mutable fields.
	// Returns ErrErrorRecordNotFound if the record does not exist.
	Update(ctx context.Context, record *domain.ErrorRecord) error

	// ListByUser returns all of a user's records, newest first,
	// including archived ones.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error)

	// ListDue returns the user's non-archived, not-yet-mastered records
	// whose next review date is on or before the given day, ordered
	// ascending by next review date (most overdue first).
	ListDue(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.ErrorRecord, error)

	// SetArchived flips a record's archived flag. Archiving is a
	// collaborator action; the review engine itself never deletes records.
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error

	// WithTx returns an ErrorRecordStore bound to the given transaction.
	WithTx(tx *sql.Tx) ErrorRecordStore
}
