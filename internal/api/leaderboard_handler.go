package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/service/leaderboard"
)

// LeaderboardEntryResponse is one ranked row of the leaderboard.
type LeaderboardEntryResponse struct {
	Rank                 int       `json:"rank"`
	UserID               string    `json:"user_id"`
	DisplayName          string    `json:"display_name"`
	TotalErrors          int       `json:"total_errors"`
	RepeatedMistakeCount int       `json:"repeated_mistake_count"`
	Streak               int       `json:"streak"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// LeaderboardHandler handles leaderboard HTTP requests.
type LeaderboardHandler struct {
	leaderboardService leaderboard.LeaderboardService
	logger             *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(leaderboardService leaderboard.LeaderboardService, logger *slog.Logger) *LeaderboardHandler {
	if leaderboardService == nil {
		panic("leaderboardService cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		logger:             logger.With(slog.String("component", "leaderboard_handler")),
	}
}

// Get handles GET /leaderboard requests.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ranked, err := h.leaderboardService.Rank(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to load leaderboard", err)
		return
	}

	responses := make([]LeaderboardEntryResponse, 0, len(ranked))
	for _, entry := range ranked {
		responses = append(responses, LeaderboardEntryResponse{
			Rank:                 entry.Rank,
			UserID:               entry.UserID.String(),
			DisplayName:          entry.DisplayName,
			TotalErrors:          entry.TotalErrors,
			RepeatedMistakeCount: entry.RepeatedMistakeCount,
			Streak:               entry.Streak,
			UpdatedAt:            entry.UpdatedAt,
		})
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
