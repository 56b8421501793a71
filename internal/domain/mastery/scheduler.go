// Package mastery implements the pure scheduling math of the spaced-review
// engine: how a review outcome moves an error record's mastery level, its
// revision interval and its next review date. The package has no I/O; the
// service layer loads records, applies these functions and persists the
// result.
package mastery

import (
	"errors"
	"time"

	"github.com/errata-app/errata-api/internal/domain"
)

// Outcome represents the result of reviewing an error record.
type Outcome string

// Possible review outcome values
const (
	OutcomeMastered Outcome = "mastered"
	OutcomeReviewed Outcome = "reviewed"
	OutcomeSkipped  Outcome = "skipped"
)

// Common errors
var (
	ErrNilRecord      = errors.New("error record cannot be nil")
	ErrInvalidOutcome = errors.New("invalid review outcome")
)

// Scheduler defines the interface for mastery scheduling operations.
type Scheduler interface {
	// Apply computes the record state that results from a review outcome
	// on the given day. It returns a new record and never mutates the
	// input.
	Apply(record *domain.ErrorRecord, outcome Outcome, today time.Time) (*domain.ErrorRecord, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface.
type defaultScheduler struct {
	params *Params
}

// NewDefaultScheduler creates a scheduler with the default parameters.
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{params: NewDefaultParams()}
}

// NewSchedulerWithParams creates a scheduler with custom parameters.
func NewSchedulerWithParams(params *Params) Scheduler {
	return &defaultScheduler{params: params}
}

// Apply implements the Scheduler interface.
func (s *defaultScheduler) Apply(
	record *domain.ErrorRecord,
	outcome Outcome,
	today time.Time,
) (*domain.ErrorRecord, error) {
	if record == nil {
		return nil, ErrNilRecord
	}

	if !IsValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}

	return applyOutcome(record, outcome, today, s.params), nil
}

// IsValidOutcome checks if the given outcome is valid.
func IsValidOutcome(outcome Outcome) bool {
	switch outcome {
	case OutcomeMastered, OutcomeReviewed, OutcomeSkipped:
		return true
	default:
		return false
	}
}

// applyOutcome is the pure transition function of the review state machine.
//
// Stages are not one-directional: a skipped outcome can pull a mastered
// record back to learning, and there is no terminal state. The mastery
// stage is always recomputed from the new level so the persisted stage can
// never drift from it.
func applyOutcome(
	record *domain.ErrorRecord,
	outcome Outcome,
	today time.Time,
	params *Params,
) *domain.ErrorRecord {
	now := time.Now().UTC()
	day := domain.DateOf(today)

	updated := copyRecord(record)
	updated.UpdatedAt = now

	switch outcome {
	case OutcomeMastered:
		updated.MasteryLevel = clamp(record.MasteryLevel+params.MasterLevelGain, params.MinLevel, params.MaxLevel)
		updated.RevisionInterval = params.NextInterval(record.RevisionInterval)
		updated.NextReviewAt = day.AddDate(0, 0, updated.RevisionInterval)
		updated.ReviewHistory = append(updated.ReviewHistory, day)

	case OutcomeReviewed:
		updated.MasteryLevel = clamp(record.MasteryLevel+params.ReviewLevelGain, params.MinLevel, params.MaxLevel)
		updated.NextReviewAt = day.AddDate(0, 0, updated.RevisionInterval)
		updated.ReviewHistory = append(updated.ReviewHistory, day)

	case OutcomeSkipped:
		updated.MasteryLevel = clamp(record.MasteryLevel-params.SkipLevelPenalty, params.MinLevel, params.MaxLevel)
		updated.NextReviewAt = day.AddDate(0, 0, params.SkipDeferDays)
	}

	updated.MasteryStage = domain.StageForLevel(updated.MasteryLevel)

	return updated
}

// copyRecord returns a deep copy of the record so callers keep an
// unmodified original.
func copyRecord(record *domain.ErrorRecord) *domain.ErrorRecord {
	history := make([]time.Time, len(record.ReviewHistory))
	copy(history, record.ReviewHistory)

	copied := *record
	copied.ReviewHistory = history
	return &copied
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
