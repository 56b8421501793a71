package progression

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/domain/progression"
	"github.com/errata-app/errata-api/internal/events"
)

// RewardHandler reacts to review events by crediting XP, counting daily
// activity and re-evaluating badges. It is registered on the in-process
// emitter so rewards ride on the same request that produced the event.
type RewardHandler struct {
	service ProgressionService
	logger  *slog.Logger
}

var _ events.Handler = (*RewardHandler)(nil)

// NewRewardHandler creates a RewardHandler backed by the given service.
func NewRewardHandler(service ProgressionService, logger *slog.Logger) *RewardHandler {
	if service == nil {
		panic("service cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &RewardHandler{
		service: service,
		logger:  logger.With(slog.String("component", "reward_handler")),
	}
}

// HandleEvent implements events.Handler.
func (h *RewardHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.TypeErrorLogged:
		var payload events.ErrorLoggedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		return h.reward(ctx, payload.UserID, progression.XPAddError, true)

	case events.TypeReviewCompleted:
		var payload events.ReviewCompletedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		// Reviews earn XP, but only error and collection entries count
		// toward the daily activity tally; reviewing due items must not
		// extend streaks or trigger the daily bonus.
		return h.reward(ctx, payload.UserID, progression.RewardForOutcome(payload.Outcome), false)

	case events.TypeCollectionEntryAdded:
		var payload events.CollectionEntryAddedPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
		}
		return h.reward(ctx, payload.UserID, 0, true)

	default:
		// Unknown event types are not ours to fail on.
		return nil
	}
}

func (h *RewardHandler) reward(ctx context.Context, userID uuid.UUID, amount int, qualifies bool) error {
	if amount > 0 {
		if _, err := h.service.Award(ctx, userID, amount); err != nil {
			return err
		}
	}
	if qualifies {
		if _, err := h.service.RecordActivity(ctx, userID); err != nil {
			return err
		}
	}
	if _, err := h.service.EvaluateBadges(ctx, userID); err != nil {
		h.logger.Warn("badge evaluation failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}
