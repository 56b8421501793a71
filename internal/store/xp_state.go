package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// XPStateStore defines the interface for per-user XP state persistence.
type XPStateStore interface {
	// Get retrieves a user's XP state.
	// Returns ErrXPStateNotFound if the user has no state row yet.
	Get(ctx context.Context, userID uuid.UUID) (*domain.XPState, error)

	// AddXP atomically adds the given amount to the user's total,
	// creating the state row if it does not exist, and returns the
	// resulting state. The increment is applied server-side so concurrent
	// awards cannot lose updates.
	AddXP(ctx context.Context, userID uuid.UUID, amount int) (*domain.XPState, error)

	// UpdateLevel sets the derived level fields. The caller recomputes
	// them from the total on every award so they can never drift.
	UpdateLevel(ctx context.Context, userID uuid.UUID, level int, levelName string) error

	// UpdateStreak sets the streak counters.
	UpdateStreak(ctx context.Context, userID uuid.UUID, current, longest int) error

	// SetBadges overwrites the badge set. Callers only ever pass supersets
	// of the current set; the store does not enforce monotonicity.
	SetBadges(ctx context.Context, userID uuid.UUID, badges []string) error
}
