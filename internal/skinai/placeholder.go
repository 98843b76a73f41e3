package skinai

import (
	"context"

	"skincare-backend/internal/analyses"
)

// Placeholder is used when no provider key is configured.
type Placeholder struct{}

// Analyze returns ErrNotConfigured.
func (Placeholder) Analyze(context.Context, analyses.AnalyzeInput) (analyses.Metrics, error) {
	return analyses.Metrics{}, ErrNotConfigured
}

// Transcribe returns ErrNotConfigured.
func (Placeholder) Transcribe(context.Context, []byte, string, string) (string, error) {
	return "", ErrNotConfigured
}

// SilentSpeaker returns empty audio. Clients treat an empty payload as
// "speech unavailable" and fall back to on-screen text.
type SilentSpeaker struct{}

// Speak returns no audio and no error.
func (SilentSpeaker) Speak(context.Context, string, string) ([]byte, error) {
	return []byte{}, nil
}
