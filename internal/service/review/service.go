// Package review owns the error record lifecycle: logging mistakes,
// recording review outcomes through the mastery scheduler, and deriving
// the revision queue views.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/mastery"
)

// LogErrorInput carries the validated fields of a newly logged mistake.
type LogErrorInput struct {
	Subject         string
	Topic           string
	Description     string
	MistakeCategory string
}

// OutcomeResult reports what recording an outcome did. When the target
// record no longer exists the operation is a no-op: Applied is false,
// Record is nil and no reward is earned.
type OutcomeResult struct {
	Applied bool
	Record  *domain.ErrorRecord
}

// ScheduledDay is one (date, count) pair of the upcoming revision schedule.
type ScheduledDay struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// ReviewService provides the error record operations of the spaced-review
// engine.
type ReviewService interface {
	// LogError creates a new error record with its initial review
	// schedule and emits the ErrorLogged event that drives XP, activity
	// and badge side effects.
	LogError(ctx context.Context, userID uuid.UUID, input LogErrorInput) (*domain.ErrorRecord, error)

	// ListErrors returns all of the user's records, newest first.
	ListErrors(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error)

	// Archive takes a record out of the revision rotation. Only the
	// owner may archive a record.
	Archive(ctx context.Context, userID, errorID uuid.UUID) error

	// RecordOutcome applies a review outcome to a record in a single
	// transaction, appends the audit row and emits ReviewCompleted.
	// A missing record is a no-op, not an error.
	RecordOutcome(ctx context.Context, userID, errorID uuid.UUID, outcome mastery.Outcome) (*OutcomeResult, error)

	// DueToday returns the records due for review today, most overdue
	// first. Degrades to an empty list on transient store failure.
	DueToday(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error)

	// UpcomingSchedule groups the user's open records by next review date
	// into ascending (date, count) pairs, truncated to the nearest 30
	// distinct dates. Degrades to an empty list on transient store
	// failure.
	UpcomingSchedule(ctx context.Context, userID uuid.UUID) ([]ScheduledDay, error)
}

// Common error types for ReviewService
var (
	// ErrRecordNotOwned indicates that the record belongs to another user.
	ErrRecordNotOwned = errors.New("unauthorized access: record not owned by user")

	// ErrRecordNotFound indicates that the record does not exist.
	ErrRecordNotFound = errors.New("error record not found")

	// ErrInvalidOutcome indicates an invalid review outcome was provided.
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// ServiceError wraps errors from the review service with additional
// context so consumers can differentiate failures with errors.As instead
// of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "log_error", "record_outcome")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
