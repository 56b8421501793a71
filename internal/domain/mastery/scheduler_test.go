package mastery_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/mastery"
)

func testRecord(t *testing.T, level, interval int) *domain.ErrorRecord {
	t.Helper()
	record, err := domain.NewErrorRecord(
		uuid.New(), "math", "fractions", "mixed up numerator and denominator", "conceptual",
		time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	record.MasteryLevel = level
	record.MasteryStage = domain.StageForLevel(level)
	record.RevisionInterval = interval
	return record
}

func TestApply_Mastered(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	record := testRecord(t, 0, 1)
	updated, err := scheduler.Apply(record, mastery.OutcomeMastered, today)
	require.NoError(t, err)

	assert.Equal(t, 25, updated.MasteryLevel)
	assert.Equal(t, domain.StageWeak, updated.MasteryStage)
	assert.Equal(t, 3, updated.RevisionInterval, "interval should advance to the next step")
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), updated.NextReviewAt,
		"next review should be the advanced interval from today")
	require.Len(t, updated.ReviewHistory, 1)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), updated.ReviewHistory[0])
}

func TestApply_Reviewed(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	record := testRecord(t, 40, 7)
	updated, err := scheduler.Apply(record, mastery.OutcomeReviewed, today)
	require.NoError(t, err)

	assert.Equal(t, 50, updated.MasteryLevel)
	assert.Equal(t, domain.StageLearning, updated.MasteryStage)
	assert.Equal(t, 7, updated.RevisionInterval, "reviewed keeps the current interval")
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC), updated.NextReviewAt)
	assert.Len(t, updated.ReviewHistory, 1)
}

func TestApply_Skipped(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	record := testRecord(t, 42, 7)
	updated, err := scheduler.Apply(record, mastery.OutcomeSkipped, today)
	require.NoError(t, err)

	assert.Equal(t, 37, updated.MasteryLevel)
	assert.Equal(t, domain.StageWeak, updated.MasteryStage, "penalty can drop a record back a stage")
	assert.Equal(t, 7, updated.RevisionInterval, "skipping never touches the interval")
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), updated.NextReviewAt,
		"skipped items come back the next day")
	assert.Empty(t, updated.ReviewHistory, "a skip is not a review")
}

func TestApply_LevelBounds(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("level saturates at 100", func(t *testing.T) {
		t.Parallel()
		record := testRecord(t, 90, 30)
		updated, err := scheduler.Apply(record, mastery.OutcomeMastered, today)
		require.NoError(t, err)
		assert.Equal(t, 100, updated.MasteryLevel)
		assert.Equal(t, domain.StageMastered, updated.MasteryStage)
	})

	t.Run("level never goes below 0", func(t *testing.T) {
		t.Parallel()
		record := testRecord(t, 3, 1)
		updated, err := scheduler.Apply(record, mastery.OutcomeSkipped, today)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.MasteryLevel)
	})
}

func TestApply_IntervalSequence(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		current int
		want    int
	}{
		{current: 1, want: 3},
		{current: 3, want: 7},
		{current: 7, want: 15},
		{current: 15, want: 30},
		{current: 30, want: 30},
	}

	for _, tc := range testCases {
		record := testRecord(t, 50, tc.current)
		updated, err := scheduler.Apply(record, mastery.OutcomeMastered, today)
		require.NoError(t, err)
		assert.Equal(t, tc.want, updated.RevisionInterval,
			"interval after %d days should be %d", tc.current, tc.want)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	record := testRecord(t, 50, 7)
	record.ReviewHistory = []time.Time{time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)}
	originalLevel := record.MasteryLevel
	originalHistory := len(record.ReviewHistory)

	updated, err := scheduler.Apply(record, mastery.OutcomeMastered, today)
	require.NoError(t, err)

	assert.Equal(t, originalLevel, record.MasteryLevel)
	assert.Len(t, record.ReviewHistory, originalHistory)
	assert.Len(t, updated.ReviewHistory, originalHistory+1)
}

func TestApply_InvalidInput(t *testing.T) {
	t.Parallel()

	scheduler := mastery.NewDefaultScheduler()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := scheduler.Apply(nil, mastery.OutcomeMastered, today)
	assert.ErrorIs(t, err, mastery.ErrNilRecord)

	record := testRecord(t, 0, 1)
	_, err = scheduler.Apply(record, mastery.Outcome("perfect"), today)
	assert.ErrorIs(t, err, mastery.ErrInvalidOutcome)
}

func TestIsValidOutcome(t *testing.T) {
	t.Parallel()

	assert.True(t, mastery.IsValidOutcome(mastery.OutcomeMastered))
	assert.True(t, mastery.IsValidOutcome(mastery.OutcomeReviewed))
	assert.True(t, mastery.IsValidOutcome(mastery.OutcomeSkipped))
	assert.False(t, mastery.IsValidOutcome(mastery.Outcome("")))
	assert.False(t, mastery.IsValidOutcome(mastery.Outcome("MASTERED")))
}
