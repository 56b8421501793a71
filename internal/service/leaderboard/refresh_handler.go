package leaderboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/events"
)

// DefaultDisplayName derives a stable display name from a user id. There
// is no profile surface here, so every snapshot uses the derived name.
func DefaultDisplayName(userID uuid.UUID) string {
	return "student-" + userID.String()[:8]
}

// RefreshHandler keeps leaderboard snapshots current by recomputing a
// user's entry whenever their records or reviews change.
type RefreshHandler struct {
	service LeaderboardService
	logger  *slog.Logger
}

var _ events.Handler = (*RefreshHandler)(nil)

// NewRefreshHandler creates a RefreshHandler backed by the given service.
func NewRefreshHandler(service LeaderboardService, logger *slog.Logger) *RefreshHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &RefreshHandler{
		service: service,
		logger:  logger.With(slog.String("component", "leaderboard_refresh_handler")),
	}
}

// HandleEvent implements events.Handler.
func (h *RefreshHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	var userID uuid.UUID

	switch event.Type {
	case events.TypeErrorLogged:
		var payload events.ErrorLoggedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		userID = payload.UserID
	case events.TypeReviewCompleted:
		var payload events.ReviewCompletedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		userID = payload.UserID
	default:
		return nil
	}

	if _, err := h.service.Refresh(ctx, userID, DefaultDisplayName(userID)); err != nil {
		// The board is a derived view; a stale snapshot is not worth
		// failing the originating request over.
		h.logger.Warn("leaderboard refresh failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}
