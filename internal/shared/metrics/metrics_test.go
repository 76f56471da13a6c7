package metrics

import (
	"strings"
	"testing"
)

func TestRenderIncludesFlashSeries(t *testing.T) {
	IncFlashStarted()
	IncFlashCompleted()
	ObserveFlashDurationMs(120)
	ObserveFlashDurationMs(-5)

	out := Render()
	for _, want := range []string{
		"# TYPE flash_started_total counter",
		"flash_failed_total ",
		"flash_upload_abandoned_total ",
		"flash_duration_ms_bucket{le=\"250\"}",
		"flash_duration_ms_bucket{le=\"+Inf\"}",
		"flash_duration_ms_count ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramCumulativeBuckets(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}
}

func TestFormatFloat(t *testing.T) {
	if got := formatFloat(250); got != "250" {
		t.Fatalf("formatFloat(250) = %q", got)
	}
	if got := formatFloat(0.5); got != "0.5" {
		t.Fatalf("formatFloat(0.5) = %q", got)
	}
}
