package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/domain/mastery"
	"github.com/errata-app/errata-api/internal/service/review"
)

// fakeReviewService implements review.ReviewService with canned results.
type fakeReviewService struct {
	record     *domain.ErrorRecord
	records    []*domain.ErrorRecord
	outcome    *review.OutcomeResult
	schedule   []review.ScheduledDay
	err        error
	archiveErr error
}

func (f *fakeReviewService) LogError(ctx context.Context, userID uuid.UUID, input review.LogErrorInput) (*domain.ErrorRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeReviewService) ListErrors(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeReviewService) Archive(ctx context.Context, userID, errorID uuid.UUID) error {
	return f.archiveErr
}

func (f *fakeReviewService) RecordOutcome(ctx context.Context, userID, errorID uuid.UUID, outcome mastery.Outcome) (*review.OutcomeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeReviewService) DueToday(ctx context.Context, userID uuid.UUID) ([]*domain.ErrorRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeReviewService) UpcomingSchedule(ctx context.Context, userID uuid.UUID) ([]review.ScheduledDay, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.schedule, nil
}

func authedRequest(t *testing.T, method, target string, body string, userID uuid.UUID) *http.Request {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func testRecord(userID uuid.UUID) *domain.ErrorRecord {
	return &domain.ErrorRecord{
		ID:               uuid.New(),
		UserID:           userID,
		Subject:          "math",
		Topic:            "fractions",
		Description:      "added denominators",
		MistakeCategory:  "concept",
		MasteryLevel:     0,
		MasteryStage:     domain.StageWeak,
		RevisionInterval: 1,
		NextReviewAt:     time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
		CreatedAt:        time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestErrorHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("valid request creates record", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		record := testRecord(userID)
		handler := NewErrorHandler(&fakeReviewService{record: record}, slog.Default())

		body := `{"subject":"math","topic":"fractions","description":"added denominators","mistake_category":"concept"}`
		req := authedRequest(t, http.MethodPost, "/api/errors", body, userID)
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got ErrorRecordResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, record.ID.String(), got.ID)
		assert.Equal(t, "weak", got.MasteryStage)
		assert.Equal(t, 1, got.RevisionInterval)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{}, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/errors", `{"subject":"math"}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{}, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/errors", `{not json`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{}, slog.Default())

		req := httptest.NewRequest(http.MethodPost, "/api/errors", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Create(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestErrorHandlerList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	handler := NewErrorHandler(&fakeReviewService{
		records: []*domain.ErrorRecord{testRecord(userID), testRecord(userID)},
	}, slog.Default())

	req := authedRequest(t, http.MethodGet, "/api/errors", "", userID)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []ErrorRecordResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestErrorHandlerArchive(t *testing.T) {
	t.Parallel()

	newArchiveRequest := func(t *testing.T, id string, userID uuid.UUID) *http.Request {
		t.Helper()
		req := authedRequest(t, http.MethodPost, "/api/errors/"+id+"/archive", "", userID)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", id)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	}

	t.Run("archives owned record", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{}, slog.Default())

		req := newArchiveRequest(t, uuid.New().String(), uuid.New())
		rec := httptest.NewRecorder()
		handler.Archive(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not owned maps to forbidden", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{archiveErr: review.ErrRecordNotOwned}, slog.Default())

		req := newArchiveRequest(t, uuid.New().String(), uuid.New())
		rec := httptest.NewRecorder()
		handler.Archive(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing record maps to not found", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{archiveErr: review.ErrRecordNotFound}, slog.Default())

		req := newArchiveRequest(t, uuid.New().String(), uuid.New())
		rec := httptest.NewRecorder()
		handler.Archive(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewErrorHandler(&fakeReviewService{}, slog.Default())

		req := newArchiveRequest(t, "not-a-uuid", uuid.New())
		rec := httptest.NewRecorder()
		handler.Archive(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
