package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/errata-app/errata-api/internal/generation"
)

// fakeGenerator returns a canned completion.
type fakeGenerator struct {
	gotSystemPrompt string
	text            string
	err             error
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystemPrompt = systemPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestAssistantHandler(t *testing.T) {
	t.Parallel()

	t.Run("explain returns generated text", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{text: "you added denominators; add numerators instead"}
		handler := NewAssistantHandler(gen, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/ai/explain", `{"prompt":"I added denominators"}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Explain(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got AssistantResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, gen.text, got.Text)
		assert.Equal(t, explainSystemPrompt, gen.gotSystemPrompt)
	})

	t.Run("plan uses the coach prompt", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{text: "1. review fractions"}
		handler := NewAssistantHandler(gen, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/ai/plan", `{"prompt":"I keep mixing up signs"}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Plan(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, planSystemPrompt, gen.gotSystemPrompt)
	})

	t.Run("generation failure maps to bad gateway", func(t *testing.T) {
		t.Parallel()
		gen := &fakeGenerator{err: generation.ErrGenerationFailed}
		handler := NewAssistantHandler(gen, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/ai/explain", `{"prompt":"help"}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Explain(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("missing prompt rejected", func(t *testing.T) {
		t.Parallel()
		handler := NewAssistantHandler(&fakeGenerator{}, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/ai/explain", `{}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Explain(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unconfigured generator reports unavailable", func(t *testing.T) {
		t.Parallel()
		handler := NewAssistantHandler(nil, slog.Default())

		req := authedRequest(t, http.MethodPost, "/api/ai/explain", `{"prompt":"help"}`, uuid.New())
		rec := httptest.NewRecorder()
		handler.Explain(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
