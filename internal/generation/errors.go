package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is the single failure category surfaced to
	// callers when the provider call does not produce text.
	ErrGenerationFailed = errors.New("text generation failed")

	// ErrEmptyPrompt is returned when the user prompt is empty.
	ErrEmptyPrompt = errors.New("user prompt cannot be empty")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
