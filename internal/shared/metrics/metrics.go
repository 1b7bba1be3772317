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
	analysisTotal         atomic.Uint64
	analysisAIPathTotal   atomic.Uint64
	analysisFallbackTotal atomic.Uint64
	analysisFailedTotal   atomic.Uint64
	cacheHitTotal         atomic.Uint64
	inferenceCallTotal    atomic.Uint64
	inferenceErrorTotal   atomic.Uint64

	analysisDuration = newHistogram([]float64{5, 25, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncAnalysis increments the total analysis counter.
func IncAnalysis() {
	analysisTotal.Add(1)
}

// IncAnalysisAIPath increments the AI-path counter.
func IncAnalysisAIPath() {
	analysisAIPathTotal.Add(1)
}

// IncAnalysisFallback increments the fallback-path counter.
func IncAnalysisFallback() {
	analysisFallbackTotal.Add(1)
}

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() {
	analysisFailedTotal.Add(1)
}

// IncCacheHit increments the response-cache hit counter.
func IncCacheHit() {
	cacheHitTotal.Add(1)
}

// IncInferenceCall increments the inference request counter.
func IncInferenceCall() {
	inferenceCallTotal.Add(1)
}

// IncInferenceError increments the inference error counter.
func IncInferenceError() {
	inferenceErrorTotal.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Counters is a point-in-time view of all counters, used by tests and
// the orchestrator's stats endpoint.
type Counters struct {
	Analyses       uint64
	AIPath         uint64
	Fallback       uint64
	Failed         uint64
	CacheHits      uint64
	InferenceCalls uint64
	InferenceErrs  uint64
}

// SnapshotCounters returns current counter values.
func SnapshotCounters() Counters {
	return Counters{
		Analyses:       analysisTotal.Load(),
		AIPath:         analysisAIPathTotal.Load(),
		Fallback:       analysisFallbackTotal.Load(),
		Failed:         analysisFailedTotal.Load(),
		CacheHits:      cacheHitTotal.Load(),
		InferenceCalls: inferenceCallTotal.Load(),
		InferenceErrs:  inferenceErrorTotal.Load(),
	}
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
	writeCounter(&buf, "analysis_total", "Total analyses performed", analysisTotal.Load())
	writeCounter(&buf, "analysis_ai_path_total", "Analyses served by the AI path", analysisAIPathTotal.Load())
	writeCounter(&buf, "analysis_fallback_total", "Analyses served by the fallback path", analysisFallbackTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Analyses that failed entirely", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_cache_hit_total", "Analysis cache hits", cacheHitTotal.Load())
	writeCounter(&buf, "inference_call_total", "Requests dispatched to the inference server", inferenceCallTotal.Load())
	writeCounter(&buf, "inference_error_total", "Failed inference server requests", inferenceErrorTotal.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
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
			break
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
