package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/errata-app/errata-api/internal/api/shared"
	"github.com/errata-app/errata-api/internal/generation"
	"github.com/errata-app/errata-api/internal/platform/logger"
)

// Fixed system prompts for the tutor endpoints. The server never
// interprets the generated content; it passes text through.
const (
	explainSystemPrompt = "You are a patient tutor. A student describes a mistake " +
		"they made while studying. Explain the underlying concept they got wrong, " +
		"why the mistake is common, and how to avoid it next time. Be concise and " +
		"encouraging."

	planSystemPrompt = "You are a study coach. A student describes the mistakes " +
		"they have been making. Propose a short, concrete revision plan that " +
		"prioritizes their weakest areas. Use plain language and numbered steps."
)

// AssistantRequest represents the request body for the tutor endpoints.
type AssistantRequest struct {
	Prompt string `json:"prompt" validate:"required,max=8000"`
}

// AssistantResponse represents the generated text.
type AssistantResponse struct {
	Text string `json:"text"`
}

// AssistantHandler handles the AI tutor HTTP requests.
type AssistantHandler struct {
	generator generation.Generator
	logger    *slog.Logger
}

// NewAssistantHandler creates a new AssistantHandler. A nil generator is
// allowed; the endpoints then report the integration as unavailable.
func NewAssistantHandler(generator generation.Generator, logger *slog.Logger) *AssistantHandler {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &AssistantHandler{
		generator: generator,
		logger:    logger.With(slog.String("component", "assistant_handler")),
	}
}

// Explain handles POST /ai/explain requests.
func (h *AssistantHandler) Explain(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, explainSystemPrompt)
}

// Plan handles POST /ai/plan requests.
func (h *AssistantHandler) Plan(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, planSystemPrompt)
}

func (h *AssistantHandler) generate(w http.ResponseWriter, r *http.Request, systemPrompt string) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	if h.generator == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Text generation is not configured")
		return
	}

	var req AssistantRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Prompt is required")
		return
	}

	text, err := h.generator.Generate(r.Context(), systemPrompt, req.Prompt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("generated assistant response",
		slog.String("user_id", userID.String()),
		slog.Int("prompt_len", len(req.Prompt)))
	shared.RespondWithJSON(w, r, http.StatusOK, AssistantResponse{Text: text})
}
