package domain

import (
	"time"

	"github.com/google/uuid"
)

// RevisionLog is one append-only audit row recording a review outcome
// applied to an error record: what the outcome was and how it moved the
// mastery level and revision interval.
type RevisionLog struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ErrorID        uuid.UUID `json:"error_id"`
	Outcome        string    `json:"outcome"`
	LevelBefore    int       `json:"level_before"`
	LevelAfter     int       `json:"level_after"`
	IntervalBefore int       `json:"interval_before"`
	IntervalAfter  int       `json:"interval_after"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}

// NewRevisionLog creates an audit row for a single applied outcome.
func NewRevisionLog(
	userID, errorID uuid.UUID,
	outcome string,
	levelBefore, levelAfter, intervalBefore, intervalAfter int,
	reviewedAt time.Time,
) *RevisionLog {
	return &RevisionLog{
		ID:             uuid.New(),
		UserID:         userID,
		ErrorID:        errorID,
		Outcome:        outcome,
		LevelBefore:    levelBefore,
		LevelAfter:     levelAfter,
		IntervalBefore: intervalBefore,
		IntervalAfter:  intervalAfter,
		ReviewedAt:     reviewedAt,
	}
}
