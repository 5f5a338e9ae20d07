package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	jobsSubmittedTotal    atomic.Uint64
	messagesReceivedTotal atomic.Uint64
	jobsProcessedTotal    atomic.Uint64
	jobsFailedTotal       atomic.Uint64
	messagesDroppedTotal  atomic.Uint64
	fieldsSuppressedTotal atomic.Uint64

	processDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncJobsSubmitted increments the submitted-jobs counter.
func IncJobsSubmitted() {
	jobsSubmittedTotal.Add(1)
}

// IncMessagesReceived increments the received-notifications counter.
func IncMessagesReceived() {
	messagesReceivedTotal.Add(1)
}

// IncJobsProcessed increments the processed-jobs counter.
func IncJobsProcessed() {
	jobsProcessedTotal.Add(1)
}

// IncJobsFailed increments the failed-jobs counter.
func IncJobsFailed() {
	jobsFailedTotal.Add(1)
}

// IncMessagesDropped increments the dropped-malformed-messages counter.
func IncMessagesDropped() {
	messagesDroppedTotal.Add(1)
}

// IncFieldsSuppressed increments the below-threshold-answers counter.
func IncFieldsSuppressed() {
	fieldsSuppressedTotal.Add(1)
}

// ObserveProcessDurationMs records one message's processing time in milliseconds.
func ObserveProcessDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	processDuration.Observe(value)
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
	writeCounter(&buf, "pipeline_jobs_submitted_total", "Total analysis jobs submitted", jobsSubmittedTotal.Load())
	writeCounter(&buf, "pipeline_messages_received_total", "Total completion notifications received", messagesReceivedTotal.Load())
	writeCounter(&buf, "pipeline_jobs_processed_total", "Total jobs processed to completion", jobsProcessedTotal.Load())
	writeCounter(&buf, "pipeline_jobs_failed_total", "Total jobs that ended in the error location", jobsFailedTotal.Load())
	writeCounter(&buf, "pipeline_messages_dropped_total", "Total malformed messages dropped", messagesDroppedTotal.Load())
	writeCounter(&buf, "pipeline_fields_suppressed_total", "Total answers suppressed by the confidence threshold", fieldsSuppressedTotal.Load())
	writeHistogram(&buf, "pipeline_process_duration_ms", "Message processing duration in milliseconds", processDuration.Snapshot())
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
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
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

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
