package store

import (
	"context"

	"github.com/errata-app/errata-api/internal/domain"
)

// LeaderboardStore defines the interface for leaderboard snapshot persistence.
type LeaderboardStore interface {
	// Upsert overwrites the user's snapshot wholesale; snapshots are never
	// merged incrementally.
	Upsert(ctx context.Context, entry *domain.LeaderboardEntry) error

	// List returns all snapshots in no particular order; ranking happens
	// in the service layer.
	List(ctx context.Context) ([]*domain.LeaderboardEntry, error)
}
