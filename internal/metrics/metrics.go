// Package metrics exposes Prometheus collectors for the crawl engine and
// the tool transport.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page outcome labels for crawler_pages_total.
const (
	PageFetched      = "fetched"
	PageFailed       = "failed"
	PageRobotsDenied = "robots_denied"
	PageDepthSkipped = "skipped_depth"
)

// Session outcome labels for crawler_sessions_total.
const (
	SessionFresh  = "fresh"
	SessionCached = "cached"
	SessionEmpty  = "empty"
)

// Snapshot outcome labels for index_snapshot_writes_total.
const (
	SnapshotOK       = "ok"
	SnapshotDegraded = "degraded"
)

var (
	crawlerPagesTotal        *prometheus.CounterVec
	crawlerSessionsTotal     *prometheus.CounterVec
	crawlerIndexPages        prometheus.Gauge
	indexSnapshotWritesTotal *prometheus.CounterVec
	toolCallsTotal           *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		crawlerPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total pages processed by the frontier, labeled by outcome.",
			},
			[]string{"status"},
		)

		crawlerSessionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_sessions_total",
				Help: "Total crawl sessions, labeled by response source.",
			},
			[]string{"result"},
		)

		crawlerIndexPages = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_index_pages",
				Help: "Number of pages in the current index.",
			},
		)

		indexSnapshotWritesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_snapshot_writes_total",
				Help: "Durable snapshot write attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		toolCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_calls_total",
				Help: "Total MCP tool invocations, labeled by tool name.",
			},
			[]string{"tool"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// PageProcessed increments the page counter for the given outcome.
func PageProcessed(status string) {
	if crawlerPagesTotal != nil {
		crawlerPagesTotal.WithLabelValues(status).Inc()
	}
}

// SessionFinished increments the session counter for the given result.
func SessionFinished(result string) {
	if crawlerSessionsTotal != nil {
		crawlerSessionsTotal.WithLabelValues(result).Inc()
	}
}

// SetIndexPages records the size of the current index.
func SetIndexPages(n int) {
	if crawlerIndexPages != nil {
		crawlerIndexPages.Set(float64(n))
	}
}

// SnapshotWritten increments the snapshot write counter.
func SnapshotWritten(outcome string) {
	if indexSnapshotWritesTotal != nil {
		indexSnapshotWritesTotal.WithLabelValues(outcome).Inc()
	}
}

// ToolCalled increments the tool invocation counter.
func ToolCalled(tool string) {
	if toolCallsTotal != nil {
		toolCallsTotal.WithLabelValues(tool).Inc()
	}
}
