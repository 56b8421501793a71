package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/service/progression"
)

// ProgressResponse represents the response data for the progress summary.
type ProgressResponse struct {
	TotalXP       int            `json:"total_xp"`
	Level         int            `json:"level"`
	LevelName     string         `json:"level_name"`
	CurrentStreak int            `json:"current_streak"`
	LongestStreak int            `json:"longest_streak"`
	Badges        []string       `json:"badges"`
	TotalErrors   int            `json:"total_errors"`
	StageCounts   map[string]int `json:"stage_counts"`
	DueToday      int            `json:"due_today"`
}

// ProgressHandler handles progress summary HTTP requests.
type ProgressHandler struct {
	progressionService progression.ProgressionService
	logger             *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressionService progression.ProgressionService, logger *slog.Logger) *ProgressHandler {
	if progressionService == nil {
		panic("progressionService cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ProgressHandler{
		progressionService: progressionService,
		logger:             logger.With(slog.String("component", "progress_handler")),
	}
}

// Get handles GET /progress requests.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	summary, err := h.progressionService.Progress(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to load progress", err)
		return
	}

	badges := summary.State.Badges
	if badges == nil {
		badges = []string{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		TotalXP:       summary.State.TotalXP,
		Level:         summary.State.Level,
		LevelName:     summary.State.LevelName,
		CurrentStreak: summary.State.CurrentStreak,
		LongestStreak: summary.State.LongestStreak,
		Badges:        badges,
		TotalErrors:   summary.TotalErrors,
		StageCounts:   summary.StageCounts,
		DueToday:      summary.DueToday,
	})
}
