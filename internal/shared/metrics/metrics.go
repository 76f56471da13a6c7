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
	flashStartedTotal         atomic.Uint64
	flashCompletedTotal       atomic.Uint64
	flashFailedTotal          atomic.Uint64
	flashLiveDeliveredTotal   atomic.Uint64
	flashUploadAbandonedTotal atomic.Uint64

	flashDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000})
)

// IncFlashStarted counts a flash run entering validation.
func IncFlashStarted() {
	flashStartedTotal.Add(1)
}

// IncFlashCompleted counts a run that reached Done.
func IncFlashCompleted() {
	flashCompletedTotal.Add(1)
}

// IncFlashFailed counts a run that ended in the fatal error state.
func IncFlashFailed() {
	flashFailedTotal.Add(1)
}

// IncFlashLiveDelivered counts handoffs the local agent accepted.
func IncFlashLiveDelivered() {
	flashLiveDeliveredTotal.Add(1)
}

// IncFlashUploadAbandoned counts fallback uploads that outlived their deadline.
func IncFlashUploadAbandoned() {
	flashUploadAbandonedTotal.Add(1)
}

// ObserveFlashDurationMs records a run duration in milliseconds.
func ObserveFlashDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	flashDuration.Observe(value)
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
	writeCounter(&buf, "flash_started_total", "Total flash runs started", flashStartedTotal.Load())
	writeCounter(&buf, "flash_completed_total", "Total flash runs completed", flashCompletedTotal.Load())
	writeCounter(&buf, "flash_failed_total", "Total flash runs failed", flashFailedTotal.Load())
	writeCounter(&buf, "flash_live_delivered_total", "Total handoffs accepted by the local agent", flashLiveDeliveredTotal.Load())
	writeCounter(&buf, "flash_upload_abandoned_total", "Total fallback uploads abandoned at the deadline", flashUploadAbandonedTotal.Load())
	writeHistogram(&buf, "flash_duration_ms", "Flash run duration in milliseconds", flashDuration.Snapshot())
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	// counts are per bucket; writeHistogram accumulates them.
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
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
