package leaderboard

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/store"
)

type leaderboardService struct {
	entries store.LeaderboardStore
	records store.ErrorRecordStore
	states  store.XPStateStore
	logger  *slog.Logger
}

var _ LeaderboardService = (*leaderboardService)(nil)

// NewLeaderboardService creates a LeaderboardService. All dependencies
// are required.
func NewLeaderboardService(
	entries store.LeaderboardStore,
	records store.ErrorRecordStore,
	states store.XPStateStore,
	logger *slog.Logger,
) LeaderboardService {
	if entries == nil {
		panic("entries cannot be nil")
	}
	if records == nil {
		panic("records cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &leaderboardService{
		entries: entries,
		records: records,
		states:  states,
		logger:  logger.With(slog.String("component", "leaderboard_service")),
	}
}

func (s *leaderboardService) Refresh(ctx context.Context, userID uuid.UUID, displayName string) (*domain.LeaderboardEntry, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "refresh", Message: "failed to load records", Err: err}
	}

	streak := 0
	state, err := s.states.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrXPStateNotFound) {
			return nil, &ServiceError{Operation: "refresh", Message: "failed to load state", Err: err}
		}
	} else {
		streak = state.CurrentStreak
	}

	entry := &domain.LeaderboardEntry{
		UserID:               userID,
		DisplayName:          displayName,
		TotalErrors:          len(records),
		RepeatedMistakeCount: RepeatedMistakeCount(records),
		Streak:               streak,
		UpdatedAt:            time.Now().UTC(),
	}
	if err := entry.Validate(); err != nil {
		return nil, &ServiceError{Operation: "refresh", Message: "invalid snapshot", Err: err}
	}
	if err := s.entries.Upsert(ctx, entry); err != nil {
		return nil, &ServiceError{Operation: "refresh", Message: "failed to store snapshot", Err: err}
	}

	s.logger.Debug("leaderboard snapshot refreshed",
		slog.String("user_id", userID.String()),
		slog.Int("repeated_mistakes", entry.RepeatedMistakeCount))
	return entry, nil
}

func (s *leaderboardService) Rank(ctx context.Context) ([]domain.RankedEntry, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, &ServiceError{Operation: "rank", Message: "failed to list snapshots", Err: err}
	}

	// Fewer repeated mistakes ranks higher. Ties break on fewer total
	// errors, then on user id so the order is deterministic.
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.RepeatedMistakeCount != b.RepeatedMistakeCount {
			return a.RepeatedMistakeCount < b.RepeatedMistakeCount
		}
		if a.TotalErrors != b.TotalErrors {
			return a.TotalErrors < b.TotalErrors
		}
		return a.UserID.String() < b.UserID.String()
	})

	ranked := make([]domain.RankedEntry, len(entries))
	for i, e := range entries {
		ranked[i] = domain.RankedEntry{Rank: i + 1, LeaderboardEntry: *e}
	}
	return ranked, nil
}

// RepeatedMistakeCount sums the full occurrence counts of every mistake
// category that appears more than once. Categories logged a single time
// contribute nothing; a category logged three times contributes three.
func RepeatedMistakeCount(records []*domain.ErrorRecord) int {
	perCategory := make(map[string]int)
	for _, r := range records {
		perCategory[r.MistakeCategory]++
	}
	total := 0
	for _, n := range perCategory {
		if n > 1 {
			total += n
		}
	}
	return total
}
