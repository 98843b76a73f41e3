package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	IncAnalysisSaved()
	AddAnalysisEvicted(2)
	AddAnalysisEvicted(-1)
	IncAnalysisDeleted()
	IncAIRequestFailed()
	ObserveAnalyzeDurationMs(1500)
	ObserveAnalyzeDurationMs(120000)

	out := Render()
	for _, want := range []string{
		"# TYPE analysis_saved_total counter",
		"# TYPE analysis_evicted_total counter",
		"# TYPE analysis_deleted_total counter",
		"# TYPE ai_requests_failed_total counter",
		"# TYPE ai_analyze_duration_ms histogram",
		`ai_analyze_duration_ms_bucket{le="+Inf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	var sb strings.Builder
	snap := h.Snapshot()
	var cumulative uint64
	for i := range snap.buckets {
		cumulative += snap.counts[i]
		sb.WriteString(formatFloat(snap.buckets[i]))
	}
	if cumulative != 2 || snap.count != 3 {
		t.Fatalf("expected 2 bounded and 3 total observations, got %d/%d", cumulative, snap.count)
	}
	if snap.sum != 555 {
		t.Fatalf("expected sum 555, got %v", snap.sum)
	}
	if sb.String() != "10100" {
		t.Fatalf("unexpected bucket labels %q", sb.String())
	}
}
