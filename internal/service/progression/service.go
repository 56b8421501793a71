// Package progression is the gamification service: it credits the XP
// ledger, maintains streak counters, evaluates badges and assembles the
// progress summary. It reacts to review events so the review flow never
// blocks on reward bookkeeping.
package progression

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
)

// ProgressSummary is the aggregate view behind the progress endpoint:
// the user's XP state plus tallies over their error records.
type ProgressSummary struct {
	State       *domain.XPState `json:"state"`
	TotalErrors int             `json:"total_errors"`
	StageCounts map[string]int  `json:"stage_counts"`
	DueToday    int             `json:"due_today"`
}

// ProgressionService maintains per-user gamification state.
type ProgressionService interface {
	// Award credits XP to the user's ledger and recomputes the derived
	// level. Amounts of zero or less are no-ops.
	Award(ctx context.Context, userID uuid.UUID, amount int) (*domain.XPState, error)

	// RecordActivity counts one qualifying action for today, awards the
	// daily bonus if this action is the one that makes the day qualify,
	// and refreshes the streak counters. It reports whether the bonus
	// was awarded.
	RecordActivity(ctx context.Context, userID uuid.UUID) (bool, error)

	// EvaluateBadges checks the badge catalog against the user's current
	// state and records, persists any newly earned badges and returns
	// their ids. Earned badges are never revoked.
	EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]string, error)

	// Progress assembles the user's progress summary. A user with no
	// recorded activity gets a well-formed zero summary, not an error.
	Progress(ctx context.Context, userID uuid.UUID) (*ProgressSummary, error)
}

// ServiceError wraps progression failures with the failed operation so
// callers can log and classify them.
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
