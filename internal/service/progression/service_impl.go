package progression

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/progression"
	"github.com/errata-app/errata-api/internal/platform/clock"
	"github.com/errata-app/errata-api/internal/store"
)

type progressionService struct {
	states   store.XPStateStore
	activity store.ActivityStore
	records  store.ErrorRecordStore
	clock    clock.Clock
	logger   *slog.Logger
}

var _ ProgressionService = (*progressionService)(nil)

// NewProgressionService creates a ProgressionService. All dependencies
// are required.
func NewProgressionService(
	states store.XPStateStore,
	activity store.ActivityStore,
	records store.ErrorRecordStore,
	clk clock.Clock,
	logger *slog.Logger,
) ProgressionService {
	if states == nil {
		panic("states cannot be nil")
	}
	if activity == nil {
		panic("activity cannot be nil")
	}
	if records == nil {
		panic("records cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &progressionService{
		states:   states,
		activity: activity,
		records:  records,
		clock:    clk,
		logger:   logger.With(slog.String("component", "progression_service")),
	}
}

func (s *progressionService) Award(ctx context.Context, userID uuid.UUID, amount int) (*domain.XPState, error) {
	if amount <= 0 {
		state, err := s.states.Get(ctx, userID)
		if errors.Is(err, store.ErrXPStateNotFound) {
			return domain.NewXPState(userID), nil
		}
		return state, err
	}

	state, err := s.states.AddXP(ctx, userID, amount)
	if err != nil {
		return nil, &ServiceError{Operation: "award", Message: "failed to add XP", Err: err}
	}

	// Level is derived from the total, never incremented, so replays of
	// this step converge instead of drifting.
	level := progression.LevelForXP(state.TotalXP)
	if level.Number != state.Level || level.Name != state.LevelName {
		if err := s.states.UpdateLevel(ctx, userID, level.Number, level.Name); err != nil {
			return nil, &ServiceError{Operation: "award", Message: "failed to update level", Err: err}
		}
		state.Level = level.Number
		state.LevelName = level.Name
		s.logger.Info("level up",
			slog.String("user_id", userID.String()),
			slog.Int("level", level.Number),
			slog.String("level_name", level.Name))
	}

	return state, nil
}

func (s *progressionService) RecordActivity(ctx context.Context, userID uuid.UUID) (bool, error) {
	today := s.clock.Today()

	count, err := s.activity.Increment(ctx, userID, today)
	if err != nil {
		return false, &ServiceError{Operation: "record_activity", Message: "failed to count activity", Err: err}
	}

	// The atomic increment returns the new count, so exactly one of any
	// number of racing same-day actions observes the threshold crossing
	// and awards the bonus.
	bonus := count == progression.QualifyingCount
	if bonus {
		if _, err := s.Award(ctx, userID, progression.XPDailyBonus); err != nil {
			return false, err
		}
		s.logger.Info("daily bonus awarded", slog.String("user_id", userID.String()))
	}

	if err := s.refreshStreak(ctx, userID, today); err != nil {
		return bonus, err
	}
	return bonus, nil
}

// refreshStreak recomputes the streak counters from the full activity log.
// Recomputing from scratch keeps the result order-independent when events
// arrive late or twice.
func (s *progressionService) refreshStreak(ctx context.Context, userID uuid.UUID, today time.Time) error {
	days, err := s.activity.ListByUser(ctx, userID)
	if err != nil {
		return &ServiceError{Operation: "record_activity", Message: "failed to load activity log", Err: err}
	}

	current := progression.Streak(days, today)

	state, err := s.states.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrXPStateNotFound) {
			return &ServiceError{Operation: "record_activity", Message: "failed to load state", Err: err}
		}
		// Materialize the state row so the streak update has a target.
		state, err = s.states.AddXP(ctx, userID, 0)
		if err != nil {
			return &ServiceError{Operation: "record_activity", Message: "failed to initialize state", Err: err}
		}
	}
	longest := current
	if state.LongestStreak > longest {
		longest = state.LongestStreak
	}
	if state.CurrentStreak == current && state.LongestStreak == longest {
		return nil
	}

	if err := s.states.UpdateStreak(ctx, userID, current, longest); err != nil {
		return &ServiceError{Operation: "record_activity", Message: "failed to update streak", Err: err}
	}
	return nil
}

func (s *progressionService) EvaluateBadges(ctx context.Context, userID uuid.UUID) ([]string, error) {
	state, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrXPStateNotFound) {
			state = domain.NewXPState(userID)
		} else {
			return nil, &ServiceError{Operation: "evaluate_badges", Message: "failed to load state", Err: err}
		}
	}

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "evaluate_badges", Message: "failed to load records", Err: err}
	}

	unlocked := progression.NewlyEarned(state, records)
	if len(unlocked) == 0 {
		return nil, nil
	}

	if state.TotalXP == 0 && len(state.Badges) == 0 {
		// Materialize the state row before writing badges to it.
		if _, err := s.states.AddXP(ctx, userID, 0); err != nil {
			return nil, &ServiceError{Operation: "evaluate_badges", Message: "failed to initialize state", Err: err}
		}
	}

	badges := append(append([]string{}, state.Badges...), unlocked...)
	if err := s.states.SetBadges(ctx, userID, badges); err != nil {
		return nil, &ServiceError{Operation: "evaluate_badges", Message: "failed to persist badges", Err: err}
	}

	s.logger.Info("badges unlocked",
		slog.String("user_id", userID.String()),
		slog.Any("badges", unlocked))
	return unlocked, nil
}

func (s *progressionService) Progress(ctx context.Context, userID uuid.UUID) (*ProgressSummary, error) {
	state, err := s.states.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrXPStateNotFound) {
			state = domain.NewXPState(userID)
		} else {
			return nil, &ServiceError{Operation: "progress", Message: "failed to load state", Err: err}
		}
	}

	summary := &ProgressSummary{
		State: state,
		StageCounts: map[string]int{
			string(domain.StageWeak):     0,
			string(domain.StageLearning): 0,
			string(domain.StageMastered): 0,
		},
	}

	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		// The XP state alone is still a useful answer.
		s.logger.Warn("record tallies unavailable for progress summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return summary, nil
	}

	today := s.clock.Today()
	for _, r := range records {
		if r.Archived {
			continue
		}
		summary.TotalErrors++
		summary.StageCounts[string(r.MasteryStage)]++
		if r.MasteryStage != domain.StageMastered && !r.NextReviewAt.After(today) {
			summary.DueToday++
		}
	}
	return summary, nil
}
