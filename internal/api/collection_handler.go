package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/service/collection"
)

// CreateCollectionEntryRequest represents the request body for logging a
// collection entry. The payload is stored opaquely.
type CreateCollectionEntryRequest struct {
	Payload json.RawMessage `json:"payload" validate:"required"`
}

// CollectionEntryResponse represents the response data for a collection
// entry.
type CollectionEntryResponse struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// CollectionHandler handles collection tracker HTTP requests.
type CollectionHandler struct {
	collectionService collection.CollectionService
	logger            *slog.Logger
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(collectionService collection.CollectionService, logger *slog.Logger) *CollectionHandler {
	if collectionService == nil {
		panic("collectionService cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &CollectionHandler{
		collectionService: collectionService,
		logger:            logger.With(slog.String("component", "collection_handler")),
	}
}

// Create handles POST /collection requests.
func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateCollectionEntryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Payload) == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Entry payload is required")
		return
	}

	entry, err := h.collectionService.Add(r.Context(), userID, req.Payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, CollectionEntryResponse{
		ID:        entry.ID.String(),
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt,
	})
}

// List handles GET /collection requests.
func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	entries, err := h.collectionService.List(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list collection entries", err)
		return
	}

	responses := make([]CollectionEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, CollectionEntryResponse{
			ID:        entry.ID.String(),
			Payload:   entry.Payload,
			CreatedAt: entry.CreatedAt,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
