package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for XPState
var (
	ErrEmptyXPUserID  = errors.New("xp state user ID cannot be empty")
	ErrNegativeXP     = errors.New("total XP cannot be negative")
	ErrInvalidLevel   = errors.New("level must be at least 1")
	ErrNegativeStreak = errors.New("streak values cannot be negative")
)

// XPState is the per-user gamification state: cumulative experience points,
// the level derived from them, streak counters and the set of earned badges.
// Level and level name are pure functions of TotalXP and are recomputed on
// every award; the badge set only ever grows.
type XPState struct {
	UserID        uuid.UUID `json:"user_id"`
	TotalXP       int       `json:"total_xp"`
	Level         int       `json:"level"`
	LevelName     string    `json:"level_name"`
	CurrentStreak int       `json:"current_streak"`
	LongestStreak int       `json:"longest_streak"`
	Badges        []string  `json:"badges"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewXPState creates the zero-progress state for a user: no XP, level 1,
// no streak, no badges.
func NewXPState(userID uuid.UUID) *XPState {
	return &XPState{
		UserID:    userID,
		TotalXP:   0,
		Level:     1,
		LevelName: "Beginner",
		Badges:    []string{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Validate checks if the XPState has valid data.
func (s *XPState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyXPUserID
	}

	if s.TotalXP < 0 {
		return ErrNegativeXP
	}

	if s.Level < 1 {
		return ErrInvalidLevel
	}

	if s.CurrentStreak < 0 || s.LongestStreak < 0 {
		return ErrNegativeStreak
	}

	return nil
}

// HasBadge reports whether the given badge id has already been earned.
func (s *XPState) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}
