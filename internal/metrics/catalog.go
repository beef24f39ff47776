package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Catalog Prometheus metrics.
var (
	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srcdex",
			Name:      "ingest_total",
			Help:      "Files offered to the table, by outcome",
		},
		[]string{"outcome"}, // "newfile" / "update" / "unchanged" / "error"
	)

	RemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "srcdex",
			Name:      "removed_total",
			Help:      "Documents removed from the table, by reason",
		},
		[]string{"reason"}, // "remove" / "match_path" / "all" / "cleanup"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "srcdex",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "srcdex",
			Name:      "scan_duration_seconds",
			Help:      "Package scan duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"package"},
	)
)

var registerOnce sync.Once

// Register registers catalog and HTTP metrics with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			IngestTotal, RemovedTotal, SearchDuration, ScanDuration,
			httpRequestDuration, httpRequestsTotal, httpResponseBytes,
		)
	})
}

// ObserveIngest counts one ingest outcome.
func ObserveIngest(outcome string) {
	IngestTotal.WithLabelValues(outcome).Inc()
}

// ObserveRemoved counts n removals for reason.
func ObserveRemoved(reason string, n int) {
	if n > 0 {
		RemovedTotal.WithLabelValues(reason).Add(float64(n))
	}
}

// ObserveSearch records the duration of a search started at start.
func ObserveSearch(start time.Time) {
	SearchDuration.Observe(time.Since(start).Seconds())
}

// ObserveScan records the duration of a scan of pkg started at start.
func ObserveScan(pkg string, start time.Time) {
	ScanDuration.WithLabelValues(pkg).Observe(time.Since(start).Seconds())
}
