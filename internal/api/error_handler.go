package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/domain"
	"github.com/errata-app/errata-api/internal/platform/logger"
	"github.com/errata-app/errata-api/internal/service/review"
)

// ErrorRecordResponse represents the response data for an error record.
type ErrorRecordResponse struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	Topic            string    `json:"topic"`
	Description      string    `json:"description"`
	MistakeCategory  string    `json:"mistake_category"`
	MasteryLevel     int       `json:"mastery_level"`
	MasteryStage     string    `json:"mastery_stage"`
	RevisionInterval int       `json:"revision_interval"`
	NextReviewAt     time.Time `json:"next_review_at"`
	Archived         bool      `json:"archived"`
	CreatedAt        time.Time `json:"created_at"`
}

func errorRecordToResponse(record *domain.ErrorRecord) ErrorRecordResponse {
	return ErrorRecordResponse{
		ID:               record.ID.String(),
		Subject:          record.Subject,
		Topic:            record.Topic,
		Description:      record.Description,
		MistakeCategory:  record.MistakeCategory,
		MasteryLevel:     record.MasteryLevel,
		MasteryStage:     string(record.MasteryStage),
		RevisionInterval: record.RevisionInterval,
		NextReviewAt:     record.NextReviewAt,
		Archived:         record.Archived,
		CreatedAt:        record.CreatedAt,
	}
}

// CreateErrorRequest represents the request body for logging a mistake.
type CreateErrorRequest struct {
	Subject         string `json:"subject" validate:"required,max=100"`
	Topic           string `json:"topic" validate:"required,max=100"`
	Description     string `json:"description" validate:"required,max=2000"`
	MistakeCategory string `json:"mistake_category" validate:"required,max=100"`
}

// ErrorHandler handles error record HTTP requests.
type ErrorHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewErrorHandler creates a new ErrorHandler.
func NewErrorHandler(reviewService review.ReviewService, logger *slog.Logger) *ErrorHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ErrorHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "error_handler")),
	}
}

// Create handles POST /errors requests.
func (h *ErrorHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateErrorRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation failed: subject, topic, description and mistake_category are required")
		return
	}

	record, err := h.reviewService.LogError(r.Context(), userID, review.LogErrorInput{
		Subject:         req.Subject,
		Topic:           req.Topic,
		Description:     req.Description,
		MistakeCategory: req.MistakeCategory,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("error record created", slog.String("error_id", record.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, errorRecordToResponse(record))
}

// List handles GET /errors requests.
func (h *ErrorHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	records, err := h.reviewService.ListErrors(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list error records", err)
		return
	}

	responses := make([]ErrorRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, errorRecordToResponse(record))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// Archive handles POST /errors/{id}/archive requests.
func (h *ErrorHandler) Archive(w http.ResponseWriter, r *http.Request) {
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

	if err := h.reviewService.Archive(r.Context(), userID, errorID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
