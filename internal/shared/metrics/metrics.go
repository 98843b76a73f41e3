package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysisSavedTotal   atomic.Uint64
	analysisEvictedTotal atomic.Uint64
	analysisDeletedTotal atomic.Uint64
	aiRequestsFailed     atomic.Uint64
	rateLimitedTotal     atomic.Uint64
	panicsRecovered      atomic.Uint64

	analyzeDuration = newHistogram([]float64{1000, 2500, 5000, 10000, 20000, 30000, 60000, 90000})
)

// IncAnalysisSaved increments the saved counter.
func IncAnalysisSaved() {
	analysisSavedTotal.Add(1)
}

// AddAnalysisEvicted adds n records removed by the retention cap.
func AddAnalysisEvicted(n int) {
	if n > 0 {
		analysisEvictedTotal.Add(uint64(n))
	}
}

// IncAnalysisDeleted increments the owner-initiated delete counter.
func IncAnalysisDeleted() {
	analysisDeletedTotal.Add(1)
}

// IncAIRequestFailed counts provider calls that failed after retries.
func IncAIRequestFailed() {
	aiRequestsFailed.Add(1)
}

// IncRateLimited counts requests rejected with 429.
func IncRateLimited() {
	rateLimitedTotal.Add(1)
}

// IncPanicRecovered counts handler panics turned into 500 responses.
func IncPanicRecovered() {
	panicsRecovered.Add(1)
}

// PanicsRecovered reports the recovered panic count.
func PanicsRecovered() uint64 {
	return panicsRecovered.Load()
}

// RateLimited reports the rate-limited request count.
func RateLimited() uint64 {
	return rateLimitedTotal.Load()
}

// ObserveAnalyzeDurationMs records a provider analyze call duration in milliseconds.
func ObserveAnalyzeDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analyzeDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "analysis_saved_total", "Analyses persisted", analysisSavedTotal.Load())
	writeCounter(&buf, "analysis_evicted_total", "Analyses removed by the per-user retention cap", analysisEvictedTotal.Load())
	writeCounter(&buf, "analysis_deleted_total", "Analyses deleted by their owner", analysisDeletedTotal.Load())
	writeCounter(&buf, "ai_requests_failed_total", "Provider calls that failed", aiRequestsFailed.Load())
	writeCounter(&buf, "http_rate_limited_total", "Requests rejected by the per-user rate limiter", rateLimitedTotal.Load())
	writeCounter(&buf, "http_panics_recovered_total", "Handler panics recovered into 500 responses", panicsRecovered.Load())
	writeHistogram(&buf, "ai_analyze_duration_ms", "Provider analyze duration in milliseconds", analyzeDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in the first bucket whose bound it does not exceed;
// Render accumulates buckets.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
