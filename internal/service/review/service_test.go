package review

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/mastery"
	"github.com/errata-app/errata-api/internal/events"
	"github.com/errata-app/errata-api/internal/platform/clock"
	"github.com/errata-app/errata-api/internal/store"
)

// fakeTransactor runs the function directly without a real transaction.
type fakeTransactor struct {
	beginErr error
}

func (f *fakeTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx, nil)
}

// fakeRecordStore is an in-memory ErrorRecordStore.
type fakeRecordStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.ErrorRecord

	failList bool
	failDue  bool
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{records: make(map[uuid.UUID]*domain.ErrorRecord)}
}

func (f *fakeRecordStore) Create(ctx context.Context, record *domain.ErrorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; ok {
		return store.ErrDuplicate
	}
	cp := *record
	f.records[record.ID] = &cp
	return nil
}

func (f *fakeRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, store.ErrErrorRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRecordStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.ErrorRecord, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRecordStore) Update(ctx context.Context, record *domain.ErrorRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[record.ID]; !ok {
		return store.ErrErrorRecordNotFound
	}
	cp := *record
	f.records[record.ID] = &cp
	return nil
}

func (f *fakeRecordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	if f.failList {
		return nil, errors.New("store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ErrorRecord
	for _, r := range f.records {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) ListDue(ctx context.Context, userID uuid.UUID, day time.Time) ([]*domain.ErrorRecord, error) {
	if f.failDue {
		return nil, errors.New("store unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.ErrorRecord
	for _, r := range f.records {
		if r.UserID != userID || r.Archived || r.MasteryStage == domain.StageMastered {
			continue
		}
		if !r.NextReviewAt.After(day) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRecordStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return store.ErrErrorRecordNotFound
	}
	r.Archived = archived
	return nil
}

func (f *fakeRecordStore) WithTx(tx *sql.Tx) store.ErrorRecordStore { return f }

// fakeRevisionStore captures appended audit rows.
type fakeRevisionStore struct {
	mu   sync.Mutex
	rows []*domain.RevisionLog
}

func (f *fakeRevisionStore) Append(ctx context.Context, log *domain.RevisionLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, log)
	return nil
}

func (f *fakeRevisionStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.RevisionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows, nil
}

func (f *fakeRevisionStore) WithTx(tx *sql.Tx) store.RevisionLogStore { return f }

// capturingEmitter records emitted events.
type capturingEmitter struct {
	mu     sync.Mutex
	events []*events.Event
}

func (c *capturingEmitter) Emit(ctx context.Context, event *events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *capturingEmitter) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       ReviewService
	records   *fakeRecordStore
	revisions *fakeRevisionStore
	emitter   *capturingEmitter
	clock     *clock.Frozen
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	records := newFakeRecordStore()
	revisions := &fakeRevisionStore{}
	emitter := &capturingEmitter{}
	clk := clock.NewFrozen(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := NewReviewService(
		&fakeTransactor{},
		records,
		revisions,
		mastery.NewDefaultScheduler(),
		clk,
		emitter,
		slog.Default(),
	)
	return &fixture{svc: svc, records: records, revisions: revisions, emitter: emitter, clock: clk}
}

func TestLogError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates record with initial schedule and emits event", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()

		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject:         "math",
			Topic:           "fractions",
			Description:     "added denominators",
			MistakeCategory: "concept",
		})
		require.NoError(t, err)
		require.NotNil(t, record)

		assert.Equal(t, 0, record.MasteryLevel)
		assert.Equal(t, domain.StageWeak, record.MasteryStage)
		assert.Equal(t, 1, record.RevisionInterval)
		wantDue := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDue, record.NextReviewAt)

		assert.Equal(t, []string{events.TypeErrorLogged}, fx.emitter.types())
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)

		_, err := fx.svc.LogError(ctx, uuid.New(), LogErrorInput{
			Topic:       "fractions",
			Description: "added denominators",
		})
		require.Error(t, err)
		var svcErr *ServiceError
		assert.ErrorAs(t, err, &svcErr)
		assert.Empty(t, fx.emitter.types())
	})
}

func TestArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner can archive", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "algebra", Description: "sign error", MistakeCategory: "careless",
		})
		require.NoError(t, err)

		require.NoError(t, fx.svc.Archive(ctx, userID, record.ID))

		stored, err := fx.records.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.True(t, stored.Archived)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		record, err := fx.svc.LogError(ctx, uuid.New(), LogErrorInput{
			Subject: "math", Topic: "algebra", Description: "sign error", MistakeCategory: "careless",
		})
		require.NoError(t, err)

		err = fx.svc.Archive(ctx, uuid.New(), record.ID)
		assert.ErrorIs(t, err, ErrRecordNotOwned)
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		err := fx.svc.Archive(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestRecordOutcome(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("mastered advances level and interval", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "physics", Topic: "kinematics", Description: "mixed up units", MistakeCategory: "units",
		})
		require.NoError(t, err)

		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeMastered)
		require.NoError(t, err)
		require.True(t, result.Applied)

		assert.Equal(t, 25, result.Record.MasteryLevel)
		assert.Equal(t, 3, result.Record.RevisionInterval)
		wantDue := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDue, result.Record.NextReviewAt)

		require.Len(t, fx.revisions.rows, 1)
		row := fx.revisions.rows[0]
		assert.Equal(t, string(mastery.OutcomeMastered), row.Outcome)
		assert.Equal(t, 0, row.LevelBefore)
		assert.Equal(t, 25, row.LevelAfter)
		assert.Equal(t, 1, row.IntervalBefore)
		assert.Equal(t, 3, row.IntervalAfter)

		assert.Equal(t, []string{events.TypeErrorLogged, events.TypeReviewCompleted}, fx.emitter.types())
	})

	t.Run("reviewed keeps interval", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "physics", Topic: "optics", Description: "wrong lens formula", MistakeCategory: "formula",
		})
		require.NoError(t, err)

		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeReviewed)
		require.NoError(t, err)
		require.True(t, result.Applied)
		assert.Equal(t, 10, result.Record.MasteryLevel)
		assert.Equal(t, 1, result.Record.RevisionInterval)
	})

	t.Run("skipped lowers level and defers one day", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "chem", Topic: "stoichiometry", Description: "ratio error", MistakeCategory: "concept",
		})
		require.NoError(t, err)
		_, err = fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeReviewed)
		require.NoError(t, err)

		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeSkipped)
		require.NoError(t, err)
		assert.Equal(t, 5, result.Record.MasteryLevel)
		assert.Equal(t, 1, result.Record.RevisionInterval)
		wantDue := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, wantDue, result.Record.NextReviewAt)
	})

	t.Run("missing record is a no-op", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)

		result, err := fx.svc.RecordOutcome(ctx, uuid.New(), uuid.New(), mastery.OutcomeMastered)
		require.NoError(t, err)
		assert.False(t, result.Applied)
		assert.Nil(t, result.Record)
		assert.Empty(t, fx.revisions.rows)
		assert.Empty(t, fx.emitter.types())
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		record, err := fx.svc.LogError(ctx, uuid.New(), LogErrorInput{
			Subject: "math", Topic: "algebra", Description: "sign error", MistakeCategory: "careless",
		})
		require.NoError(t, err)

		_, err = fx.svc.RecordOutcome(ctx, uuid.New(), record.ID, mastery.OutcomeMastered)
		assert.ErrorIs(t, err, ErrRecordNotOwned)
	})

	t.Run("invalid outcome is rejected", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		_, err := fx.svc.RecordOutcome(ctx, uuid.New(), uuid.New(), mastery.Outcome("aced"))
		assert.ErrorIs(t, err, ErrInvalidOutcome)
	})

	t.Run("archived record is a no-op", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "geometry", Description: "angle sum", MistakeCategory: "concept",
		})
		require.NoError(t, err)
		require.NoError(t, fx.svc.Archive(ctx, userID, record.ID))

		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeReviewed)
		require.NoError(t, err)
		assert.False(t, result.Applied)
	})

	t.Run("transaction failure surfaces as service error", func(t *testing.T) {
		t.Parallel()
		records := newFakeRecordStore()
		svc := NewReviewService(
			&fakeTransactor{beginErr: errors.New("connection lost")},
			records,
			&fakeRevisionStore{},
			mastery.NewDefaultScheduler(),
			clock.NewFrozen(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
			&capturingEmitter{},
			slog.Default(),
		)

		_, err := svc.RecordOutcome(ctx, uuid.New(), uuid.New(), mastery.OutcomeMastered)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "record_outcome", svcErr.Operation)
	})
}

// TestMasteryProgression walks one record from weak to mastered through
// repeated successful reviews, checking stage and interval milestones.
func TestMasteryProgression(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFixture(t)
	userID := uuid.New()

	record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
		Subject: "math", Topic: "fractions", Description: "added denominators", MistakeCategory: "concept",
	})
	require.NoError(t, err)

	type milestone struct {
		level    int
		stage    domain.MasteryStage
		interval int
	}
	want := []milestone{
		{25, domain.StageWeak, 3},
		{50, domain.StageLearning, 7},
		{75, domain.StageMastered, 15},
		{100, domain.StageMastered, 30},
		{100, domain.StageMastered, 30}, // level and interval saturate
	}

	for i, m := range want {
		fx.clock.AdvanceDays(record.RevisionInterval)
		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, mastery.OutcomeMastered)
		require.NoError(t, err, "review %d", i+1)
		require.True(t, result.Applied)
		assert.Equal(t, m.level, result.Record.MasteryLevel, "review %d level", i+1)
		assert.Equal(t, m.stage, result.Record.MasteryStage, "review %d stage", i+1)
		assert.Equal(t, m.interval, result.Record.RevisionInterval, "review %d interval", i+1)
		record = result.Record
	}

	assert.Len(t, fx.revisions.rows, len(want))
}

// TestMixedOutcomeWalk follows one record through a realistic mix of
// reviewed and mastered outcomes, checking the due date after every step.
func TestMixedOutcomeWalk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newFixture(t)
	userID := uuid.New()
	day := func(n int) time.Time {
		return time.Date(2025, 3, 10+n, 0, 0, 0, 0, time.UTC)
	}

	// Day 0: logging the mistake schedules the first review for day 1.
	record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
		Subject: "math", Topic: "fractions", Description: "added denominators", MistakeCategory: "concept",
	})
	require.NoError(t, err)
	assert.Equal(t, day(1), record.NextReviewAt)

	steps := []struct {
		advanceTo    int
		outcome      mastery.Outcome
		wantLevel    int
		wantInterval int
		wantDueDay   int
	}{
		{advanceTo: 1, outcome: mastery.OutcomeReviewed, wantLevel: 10, wantInterval: 1, wantDueDay: 2},
		{advanceTo: 2, outcome: mastery.OutcomeMastered, wantLevel: 35, wantInterval: 3, wantDueDay: 5},
		{advanceTo: 5, outcome: mastery.OutcomeMastered, wantLevel: 60, wantInterval: 7, wantDueDay: 12},
		{advanceTo: 12, outcome: mastery.OutcomeMastered, wantLevel: 85, wantInterval: 15, wantDueDay: 27},
	}

	elapsed := 0
	for _, step := range steps {
		fx.clock.AdvanceDays(step.advanceTo - elapsed)
		elapsed = step.advanceTo

		due, err := fx.svc.DueToday(ctx, userID)
		require.NoError(t, err)
		require.Len(t, due, 1, "record should be due on day %d", step.advanceTo)

		result, err := fx.svc.RecordOutcome(ctx, userID, record.ID, step.outcome)
		require.NoError(t, err)
		require.True(t, result.Applied)
		assert.Equal(t, step.wantLevel, result.Record.MasteryLevel, "day %d level", step.advanceTo)
		assert.Equal(t, step.wantInterval, result.Record.RevisionInterval, "day %d interval", step.advanceTo)
		assert.Equal(t, day(step.wantDueDay), result.Record.NextReviewAt, "day %d due date", step.advanceTo)
	}

	// Level 85 is mastered; the record leaves the due queue for good,
	// even once its next review date arrives.
	fx.clock.AdvanceDays(15)
	due, err := fx.svc.DueToday(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestDueToday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("returns only records due on or before today", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()

		first, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "a", Description: "d", MistakeCategory: "c",
		})
		require.NoError(t, err)
		_, err = fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "b", Description: "d", MistakeCategory: "c",
		})
		require.NoError(t, err)

		// New records are due tomorrow, so today's queue is empty.
		due, err := fx.svc.DueToday(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, due)

		fx.clock.AdvanceDays(1)
		due, err = fx.svc.DueToday(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, due, 2)

		// Advancing one record to interval 3 takes it off tomorrow's queue.
		_, err = fx.svc.RecordOutcome(ctx, userID, first.ID, mastery.OutcomeMastered)
		require.NoError(t, err)
		fx.clock.AdvanceDays(1)
		due, err = fx.svc.DueToday(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, due, 1)
	})

	t.Run("degrades to empty list on store failure", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		fx.records.failDue = true

		due, err := fx.svc.DueToday(ctx, uuid.New())
		require.NoError(t, err)
		assert.NotNil(t, due)
		assert.Empty(t, due)
	})
}

func TestUpcomingSchedule(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("groups open records by next review date", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()

		// Two due tomorrow, one pushed out to day 3.
		for i := 0; i < 2; i++ {
			_, err := fx.svc.LogError(ctx, userID, LogErrorInput{
				Subject: "math", Topic: "t", Description: "d", MistakeCategory: "c",
			})
			require.NoError(t, err)
		}
		third, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "u", Description: "d", MistakeCategory: "c",
		})
		require.NoError(t, err)
		_, err = fx.svc.RecordOutcome(ctx, userID, third.ID, mastery.OutcomeMastered)
		require.NoError(t, err)

		schedule, err := fx.svc.UpcomingSchedule(ctx, userID)
		require.NoError(t, err)
		require.Len(t, schedule, 2)
		assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), schedule[0].Date)
		assert.Equal(t, 2, schedule[0].Count)
		assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), schedule[1].Date)
		assert.Equal(t, 1, schedule[1].Count)
	})

	t.Run("excludes archived and mastered records", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()

		record, err := fx.svc.LogError(ctx, userID, LogErrorInput{
			Subject: "math", Topic: "t", Description: "d", MistakeCategory: "c",
		})
		require.NoError(t, err)
		require.NoError(t, fx.svc.Archive(ctx, userID, record.ID))

		schedule, err := fx.svc.UpcomingSchedule(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, schedule)
	})

	t.Run("degrades to empty list on store failure", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		fx.records.failList = true

		schedule, err := fx.svc.UpcomingSchedule(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, schedule)
	})

	t.Run("truncates to the nearest 30 distinct dates", func(t *testing.T) {
		t.Parallel()
		fx := newFixture(t)
		userID := uuid.New()
		today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

		// 35 records on 35 distinct future dates.
		for i := 1; i <= 35; i++ {
			record, err := domain.NewErrorRecord(userID, "math", "t", "d", "c", today)
			require.NoError(t, err)
			record.NextReviewAt = today.AddDate(0, 0, i)
			require.NoError(t, fx.records.Create(ctx, record))
		}

		schedule, err := fx.svc.UpcomingSchedule(ctx, userID)
		require.NoError(t, err)
		require.Len(t, schedule, 30)
		assert.Equal(t, today.AddDate(0, 0, 1), schedule[0].Date)
		assert.Equal(t, today.AddDate(0, 0, 30), schedule[len(schedule)-1].Date)
	})
}
