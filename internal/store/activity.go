package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// ActivityStore defines the interface for per-(user, day) activity counters.
type ActivityStore interface {
	// Increment atomically adds one to the user's counter for the given
	// day, creating it at one if absent, and returns the new count.
	// Two racing same-day actions both succeed and exactly one of them
	// observes any particular count value crossing a threshold.
	Increment(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)

	// Get returns the count for a single (user, day) pair, zero if absent.
	Get(ctx context.Context, userID uuid.UUID, day time.Time) (int, error)

	// ListByUser returns all of a user's activity days in no particular
	// order. Streak derivation is order-independent by design.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ActivityDay, error)
}
