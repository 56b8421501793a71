package review

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/mastery"
	"github.com/errata-app/errata-api/internal/events"
	"github.com/errata-app/errata-api/internal/platform/clock"
	"github.com/errata-app/errata-api/internal/store"
)

// upcomingScheduleWindow caps the number of distinct dates returned by
// UpcomingSchedule.
const upcomingScheduleWindow = 30

type reviewService struct {
	transactor store.Transactor
	records    store.ErrorRecordStore
	revisions  store.RevisionLogStore
	scheduler  mastery.Scheduler
	clock      clock.Clock
	emitter    events.Emitter
	logger     *slog.Logger
}

var _ ReviewService = (*reviewService)(nil)

// NewReviewService creates a ReviewService with the given dependencies.
// All dependencies are required.
func NewReviewService(
	transactor store.Transactor,
	records store.ErrorRecordStore,
	revisions store.RevisionLogStore,
	scheduler mastery.Scheduler,
	clk clock.Clock,
	emitter events.Emitter,
	logger *slog.Logger,
) ReviewService {
	if transactor == nil {
		panic("transactor cannot be nil")
	}
	if records == nil {
		panic("records cannot be nil")
	}
	if revisions == nil {
		panic("revisions cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &reviewService{
		transactor: transactor,
		records:    records,
		revisions:  revisions,
		scheduler:  scheduler,
		clock:      clk,
		emitter:    emitter,
		logger:     logger.With(slog.String("component", "review_service")),
	}
}

func (s *reviewService) LogError(ctx context.Context, userID uuid.UUID, input LogErrorInput) (*domain.ErrorRecord, error) {
	log := s.logger.With(slog.String("user_id", userID.String()))

	record, err := domain.NewErrorRecord(userID, input.Subject, input.Topic, input.Description, input.MistakeCategory, s.clock.Today())
	if err != nil {
		return nil, &ServiceError{Operation: "log_error", Message: "invalid error record", Err: err}
	}

	if err := s.records.Create(ctx, record); err != nil {
		log.Error("failed to create error record", slog.String("error", err.Error()))
		return nil, &ServiceError{Operation: "log_error", Message: "failed to persist record", Err: err}
	}

	event, err := events.NewEvent(events.TypeErrorLogged, events.ErrorLoggedPayload{
		UserID:  userID,
		ErrorID: record.ID,
	})
	if err != nil {
		log.Error("failed to build error logged event", slog.String("error", err.Error()))
		return record, nil
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		// The record is saved; reward side effects are best-effort.
		log.Warn("error logged event delivery failed",
			slog.String("error_id", record.ID.String()),
			slog.String("error", err.Error()))
	}

	log.Debug("error record logged",
		slog.String("error_id", record.ID.String()),
		slog.String("subject", record.Subject))
	return record, nil
}

func (s *reviewService) ListErrors(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return nil, &ServiceError{Operation: "list_errors", Message: "failed to list records", Err: err}
	}
	return records, nil
}

func (s *reviewService) Archive(ctx context.Context, userID, errorID uuid.UUID) error {
	record, err := s.records.GetByID(ctx, errorID)
	if err != nil {
		if errors.Is(err, store.ErrErrorRecordNotFound) {
			return ErrRecordNotFound
		}
		return &ServiceError{Operation: "archive", Message: "failed to fetch record", Err: err}
	}
	if record.UserID != userID {
		return ErrRecordNotOwned
	}
	if err := s.records.SetArchived(ctx, errorID, true); err != nil {
		return &ServiceError{Operation: "archive", Message: "failed to archive record", Err: err}
	}
	s.logger.Debug("error record archived",
		slog.String("user_id", userID.String()),
		slog.String("error_id", errorID.String()))
	return nil
}

func (s *reviewService) RecordOutcome(ctx context.Context, userID, errorID uuid.UUID, outcome mastery.Outcome) (*OutcomeResult, error) {
	log := s.logger.With(
		slog.String("user_id", userID.String()),
		slog.String("error_id", errorID.String()),
		slog.String("outcome", string(outcome)))

	if !mastery.IsValidOutcome(outcome) {
		return nil, ErrInvalidOutcome
	}

	today := s.clock.Today()
	var (
		updated *domain.ErrorRecord
		logRow  *domain.RevisionLog
	)

	err := s.transactor.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txRecords := s.records.WithTx(tx)

		record, err := txRecords.GetForUpdate(ctx, errorID)
		if err != nil {
			return err
		}
		if record.UserID != userID {
			return ErrRecordNotOwned
		}
		if record.Archived {
			return ErrRecordNotFound
		}

		next, err := s.scheduler.Apply(record, outcome, today)
		if err != nil {
			return err
		}
		if err := txRecords.Update(ctx, next); err != nil {
			return err
		}

		logRow = domain.NewRevisionLog(
			userID, errorID, string(outcome),
			record.MasteryLevel, next.MasteryLevel,
			record.RevisionInterval, next.RevisionInterval,
			s.clock.Now(),
		)
		if err := s.revisions.WithTx(tx).Append(ctx, logRow); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		// A record deleted between scheduling and review is not an error:
		// the review simply no longer applies and earns nothing.
		if errors.Is(err, store.ErrErrorRecordNotFound) || errors.Is(err, ErrRecordNotFound) {
			log.Info("outcome skipped: record no longer exists")
			return &OutcomeResult{Applied: false}, nil
		}
		if errors.Is(err, ErrRecordNotOwned) {
			return nil, ErrRecordNotOwned
		}
		log.Error("failed to record outcome", slog.String("error", err.Error()))
		return nil, &ServiceError{Operation: "record_outcome", Message: "transaction failed", Err: err}
	}

	event, err := events.NewEvent(events.TypeReviewCompleted, events.ReviewCompletedPayload{
		UserID:  userID,
		ErrorID: errorID,
		Outcome: string(outcome),
	})
	if err != nil {
		log.Error("failed to build review completed event", slog.String("error", err.Error()))
		return &OutcomeResult{Applied: true, Record: updated}, nil
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		log.Warn("review completed event delivery failed", slog.String("error", err.Error()))
	}

	log.Debug("outcome recorded",
		slog.Int("mastery_level", updated.MasteryLevel),
		slog.String("mastery_stage", string(updated.MasteryStage)))
	return &OutcomeResult{Applied: true, Record: updated}, nil
}

func (s *reviewService) DueToday(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	due, err := s.records.ListDue(ctx, userID, s.clock.Today())
	if err != nil {
		// An empty queue beats an error page for a read-only view.
		s.logger.Warn("due list unavailable, returning empty queue",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return []*domain.ErrorRecord{}, nil
	}
	return due, nil
}

func (s *reviewService) UpcomingSchedule(ctx context.Context, userID uuid.UUID) ([]ScheduledDay, error) {
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("schedule unavailable, returning empty schedule",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return []ScheduledDay{}, nil
	}

	counts := make(map[time.Time]int)
	for _, r := range records {
		if r.Archived || r.MasteryStage == domain.StageMastered {
			continue
		}
		counts[domain.DateOf(r.NextReviewAt)]++
	}

	days := make([]ScheduledDay, 0, len(counts))
	for date, count := range counts {
		days = append(days, ScheduledDay{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	if len(days) > upcomingScheduleWindow {
		days = days[:upcomingScheduleWindow]
	}
	return days, nil
}
