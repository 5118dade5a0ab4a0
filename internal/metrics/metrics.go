package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsl_dataset_loads_total",
		Help: "Total number of prediction table loads by source and result.",
	}, []string{"source", "result"})
	datasetLoadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smartsl_dataset_load_duration_seconds",
		Help:    "Duration of a prediction table load.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0},
	}, []string{"source"})
	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsl_dataset_rows_skipped_total",
		Help: "Total number of prediction rows dropped because they could not be read.",
	}, []string{"source"})
	degradedResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smartsl_degraded_responses_total",
		Help: "Total number of queries answered with an empty result because the dataset was unavailable.",
	}, []string{"query"})
	snapshotPlaces = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "smartsl_snapshot_places",
		Help: "Number of places per busyness label in the last captured snapshot.",
	}, []string{"region", "level"})
)

// ObserveLoad records one dataset load.
func ObserveLoad(source string, err error, took time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	datasetLoads.WithLabelValues(source, result).Inc()
	datasetLoadDuration.WithLabelValues(source).Observe(took.Seconds())
}

// RowsSkipped counts n unreadable rows from source.
func RowsSkipped(source string, n int) {
	if n > 0 {
		rowsSkipped.WithLabelValues(source).Add(float64(n))
	}
}

// Degraded counts a query answered with an empty result.
func Degraded(query string) {
	degradedResponses.WithLabelValues(query).Inc()
}

// SetSnapshotLevels replaces the per-label place counts for region.
func SetSnapshotLevels(region string, counts map[string]int, labels []string) {
	for _, l := range labels {
		snapshotPlaces.WithLabelValues(region, l).Set(float64(counts[l]))
	}
}
