package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/domain/mastery"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/service/review"
)

// RecordOutcomeRequest represents the request body for recording a review
// outcome.
type RecordOutcomeRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=mastered reviewed skipped"`
}

// OutcomeResponse represents the result of recording an outcome. Applied
// is false when the record no longer existed and the review was a no-op.
type OutcomeResponse struct {
	Applied bool                 `json:"applied"`
	Record  *ErrorRecordResponse `json:"record,omitempty"`
}

// RevisionHandler handles revision queue HTTP requests.
type RevisionHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewRevisionHandler creates a new RevisionHandler.
func NewRevisionHandler(reviewService review.ReviewService, logger *slog.Logger) *RevisionHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &RevisionHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "revision_handler")),
	}
}

// Due handles GET /revision/due requests.
func (h *RevisionHandler) Due(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	records, err := h.reviewService.DueToday(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to load revision queue", err)
		return
	}

	responses := make([]ErrorRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, errorRecordToResponse(record))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Upcoming handles GET /revision/upcoming requests.
func (h *RevisionHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	schedule, err := h.reviewService.UpcomingSchedule(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to load revision schedule", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, schedule)
}

// RecordOutcome handles POST /revision/{id}/outcome requests.
func (h *RevisionHandler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	errorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("invalid error ID format", slog.String("error_id", chi.URLParam(r, "id")))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid error ID format")
		return
	}

	var req RecordOutcomeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Outcome must be one of: mastered, reviewed, skipped")
		return
	}

	result, err := h.reviewService.RecordOutcome(r.Context(), userID, errorID, mastery.Outcome(req.Outcome))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := OutcomeResponse{Applied: result.Applied}
	if result.Record != nil {
		record := errorRecordToResponse(result.Record)
		response.Record = &record
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}
