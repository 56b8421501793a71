package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MasteryStage is the coarse bucket a record's mastery level falls into.
type MasteryStage string

// Possible mastery stage values
const (
	StageWeak     MasteryStage = "weak"
	StageLearning MasteryStage = "learning"
	StageMastered MasteryStage = "mastered"
)

// Mastery stage thresholds. A record is "learning" from 40 up to but not
// including 75, and "mastered" from 75 upward.
const (
	LearningThreshold = 40
	MasteredThreshold = 75
)

// StageForLevel derives the mastery stage from a mastery level.
// The stage is a pure projection of the level and must never be set
// independently of it.
func StageForLevel(level int) MasteryStage {
	switch {
	case level >= MasteredThreshold:
		return StageMastered
	case level >= LearningThreshold:
		return StageLearning
	default:
		return StageWeak
	}
}

// Common validation errors for ErrorRecord
var (
	ErrEmptyRecordUserID   = errors.New("error record user ID cannot be empty")
	ErrEmptySubject        = errors.New("error record subject cannot be empty")
	ErrEmptyCategory       = errors.New("error record mistake category cannot be empty")
	ErrInvalidMasteryLevel = errors.New("mastery level must be between 0 and 100")
	ErrInvalidInterval     = errors.New("revision interval is not in the allowed sequence")
	ErrStageMismatch       = errors.New("mastery stage does not match mastery level")
)

// ErrorRecord is one logged study mistake together with its spaced-review
// scheduling state. Records are owned exclusively by the user that created
// them and are never deleted by the review engine; archiving is the only
// way to take one out of rotation.
type ErrorRecord struct {
	ID               uuid.UUID    `json:"id"`
	UserID           uuid.UUID    `json:"user_id"`
	Subject          string       `json:"subject"`
	Topic            string       `json:"topic"`
	Description      string       `json:"description"`
	MistakeCategory  string       `json:"mistake_category"`
	MasteryLevel     int          `json:"mastery_level"`     // 0-100
	MasteryStage     MasteryStage `json:"mastery_stage"`     // derived from MasteryLevel
	RevisionInterval int          `json:"revision_interval"` // days, one of 1,3,7,15,30
	NextReviewAt     time.Time    `json:"next_review_at"`    // date, UTC midnight
	ReviewHistory    []time.Time  `json:"review_history"`    // append-only review dates
	Archived         bool         `json:"archived"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// NewErrorRecord creates a freshly logged error with its initial review
// schedule: mastery level 0 (weak), the shortest revision interval, and the
// first review due one day after today.
func NewErrorRecord(
	userID uuid.UUID,
	subject, topic, description, mistakeCategory string,
	today time.Time,
) (*ErrorRecord, error) {
	now := time.Now().UTC()
	day := DateOf(today)

	record := &ErrorRecord{
		ID:               uuid.New(),
		UserID:           userID,
		Subject:          subject,
		Topic:            topic,
		Description:      description,
		MistakeCategory:  mistakeCategory,
		MasteryLevel:     0,
		MasteryStage:     StageWeak,
		RevisionInterval: 1,
		NextReviewAt:     day.AddDate(0, 0, 1),
		ReviewHistory:    []time.Time{},
		Archived:         false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks if the ErrorRecord has valid data.
// Returns an error if any field fails validation.
func (r *ErrorRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrEmptyRecordUserID
	}

	if r.Subject == "" {
		return ErrEmptySubject
	}

	if r.MistakeCategory == "" {
		return ErrEmptyCategory
	}

	if r.MasteryLevel < 0 || r.MasteryLevel > 100 {
		return ErrInvalidMasteryLevel
	}

	if !ValidInterval(r.RevisionInterval) {
		return ErrInvalidInterval
	}

	if r.MasteryStage != StageForLevel(r.MasteryLevel) {
		return ErrStageMismatch
	}

	return nil
}

// RevisionIntervals is the fixed sequence of review intervals in days.
// Intervals only ever advance forward through this sequence and saturate
// at the final value.
var RevisionIntervals = []int{1, 3, 7, 15, 30}

// ValidInterval reports whether the given interval is a member of the
// fixed revision interval sequence.
func ValidInterval(days int) bool {
	for _, d := range RevisionIntervals {
		if d == days {
			return true
		}
	}
	return false
}

// DateOf truncates a timestamp to its UTC calendar date (midnight UTC).
// All review-date math operates on values normalized this way.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
