// Package generation defines the boundary between the application core and
// external text-generation services. The core never interprets generated
// content; it passes prompts through and returns text.
package generation

import "context"

// Generator defines the interface for external text generation.
// Implementations wrap a specific LLM provider; callers only see a system
// prompt, a user prompt and the generated text.
type Generator interface {
	// Generate produces text for the given prompts. It honors the
	// context's deadline and returns an error wrapping
	// ErrGenerationFailed if the provider call fails for any reason.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
