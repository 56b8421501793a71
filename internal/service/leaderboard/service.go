// Package leaderboard maintains per-user leaderboard snapshots and ranks
// them. Users with fewer repeated mistakes rank higher; the board rewards
// not repeating errors rather than raw volume.
package leaderboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// LeaderboardService maintains and ranks leaderboard snapshots.
type LeaderboardService interface {
	// Refresh recomputes the user's snapshot from their current records
	// and streak and overwrites the stored one.
	Refresh(ctx context.Context, userID uuid.UUID, displayName string) (*domain.LeaderboardEntry, error)

	// Rank returns all snapshots ordered best first with 1-based ranks.
	Rank(ctx context.Context) ([]domain.RankedEntry, error)
}

// ServiceError wraps leaderboard failures with the failed operation.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
