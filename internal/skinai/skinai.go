// Package skinai holds the provider-neutral side of skin analysis: prompt
// construction, result normalization, retries and the voice helpers shared by
// the Gemini and OpenAI adapters.
package skinai

import (
	"context"
	"errors"

	"skincare-backend/internal/analyses"
)

var (
	// ErrNotConfigured is returned when no provider API key is set.
	ErrNotConfigured = errors.New("ai provider not configured")
	// ErrSchemaMismatch is returned when the model output is not a valid analysis.
	ErrSchemaMismatch = errors.New("analysis output does not match schema")
	// ErrEmptyResponse is returned when the provider produced no content.
	ErrEmptyResponse = errors.New("empty provider response")
)

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error)
}

// Speaker renders text as WAV audio.
type Speaker interface {
	Speak(ctx context.Context, text, language string) ([]byte, error)
}

var _ analyses.Analyzer = Placeholder{}
