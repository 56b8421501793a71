package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for LeaderboardEntry
var (
	ErrEmptyEntryUserID = errors.New("leaderboard entry user ID cannot be empty")
	ErrEmptyDisplayName = errors.New("leaderboard entry display name cannot be empty")
)

// LeaderboardEntry is a per-user leaderboard snapshot. Snapshots are
// overwritten wholesale on each update, never merged incrementally.
//
// RepeatedMistakeCount is the sum of the full occurrence counts of every
// mistake category the user logged more than once. A user with category
// counts {algebra: 3, optics: 1} has a repeated mistake count of 3, not 2.
// Fewer repeats ranks higher.
type LeaderboardEntry struct {
	UserID               uuid.UUID `json:"user_id"`
	DisplayName          string    `json:"display_name"`
	TotalErrors          int       `json:"total_errors"`
	RepeatedMistakeCount int       `json:"repeated_mistake_count"`
	Streak               int       `json:"streak"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Validate checks if the LeaderboardEntry has valid data.
func (e *LeaderboardEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrEmptyEntryUserID
	}

	if e.DisplayName == "" {
		return ErrEmptyDisplayName
	}

	return nil
}

// RankedEntry is a LeaderboardEntry with its 1-based position after ranking.
type RankedEntry struct {
	Rank int `json:"rank"`
	LeaderboardEntry
}
