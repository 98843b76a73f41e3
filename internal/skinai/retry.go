package skinai

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"skincare-backend/internal/analyses"
	"skincare-backend/internal/shared/metrics"
	"skincare-backend/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

// Resilient wraps provider calls with a per-call timeout and a single retry
// on transient failures.
type Resilient struct {
	Analyzer    analyses.Analyzer
	Transcriber Transcriber
	Speaker     Speaker
	Timeout     time.Duration

	delay time.Duration
}

// NewResilient constructs a Resilient wrapper.
func NewResilient(analyzer analyses.Analyzer, transcriber Transcriber, speaker Speaker, timeout time.Duration) *Resilient {
	return &Resilient{
		Analyzer:    analyzer,
		Transcriber: transcriber,
		Speaker:     speaker,
		Timeout:     timeout,
		delay:       retryBaseDelay,
	}
}

// Analyze calls the wrapped analyzer and records its duration.
func (r *Resilient) Analyze(ctx context.Context, input analyses.AnalyzeInput) (analyses.Metrics, error) {
	start := time.Now()
	out, err := withRetry(ctx, r, "analyze", func(ctx context.Context) (analyses.Metrics, error) {
		return r.Analyzer.Analyze(ctx, input)
	})
	metrics.ObserveAnalyzeDurationMs(float64(time.Since(start).Milliseconds()))
	return out, err
}

// Transcribe calls the wrapped transcriber.
func (r *Resilient) Transcribe(ctx context.Context, audio []byte, mimeType, language string) (string, error) {
	return withRetry(ctx, r, "transcribe", func(ctx context.Context) (string, error) {
		return r.Transcriber.Transcribe(ctx, audio, mimeType, language)
	})
}

// Speak calls the wrapped speaker.
func (r *Resilient) Speak(ctx context.Context, text, language string) ([]byte, error) {
	return withRetry(ctx, r, "speak", func(ctx context.Context) ([]byte, error) {
		return r.Speaker.Speak(ctx, text, language)
	})
}

func withRetry[T any](ctx context.Context, r *Resilient, op string, call func(context.Context) (T, error)) (T, error) {
	out, err := attempt(ctx, r.Timeout, call)
	if err == nil || !shouldRetry(err) || ctx.Err() != nil {
		if err != nil {
			r.fail(op, err)
		}
		return out, err
	}

	telemetry.Warn("ai.retry", map[string]any{
		"op":      op,
		"attempt": 1,
		"error":   err.Error(),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		var zero T
		r.fail(op, ctx.Err())
		return zero, ctx.Err()
	}

	out, err = attempt(ctx, r.Timeout, call)
	if err != nil {
		r.fail(op, err)
	}
	return out, err
}

func attemptTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

func attempt[T any](ctx context.Context, timeout time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := attemptTimeout(ctx, timeout)
	defer cancel()
	return call(callCtx)
}

func (r *Resilient) fail(op string, err error) {
	if errors.Is(err, ErrNotConfigured) {
		return
	}
	metrics.IncAIRequestFailed()
	telemetry.Error("ai.request_failed", map[string]any{
		"op":    op,
		"error": err.Error(),
	})
}

func shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrSchemaMismatch) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "status code: 5") || strings.Contains(msg, "error 5") || strings.Contains(msg, "server_error") || strings.Contains(msg, "unavailable") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "unexpected eof") {
		return true
	}
	return false
}
