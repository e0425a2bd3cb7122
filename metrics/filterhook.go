package metrics

// https://github.com/yuwf/wordtrie

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// filter
	filterOnce        sync.Once
	filterScanCount   *prometheus.CounterVec
	filterMatchCount  *prometheus.CounterVec
	filterScanLatency *prometheus.HistogramVec
)

func filterHook(ctx context.Context, group string, text string, matches int, elapsed time.Duration) {
	filterOnce.Do(func() {
		filterScanCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("filter_scan_count")}, []string{"group"})
		filterMatchCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("filter_match_count")}, []string{"group"})
		filterScanLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name("filter_scan_latency"), Buckets: latencyBuckets}, []string{"group"})
	})
	filterScanCount.WithLabelValues(group).Inc()
	if matches > 0 {
		filterMatchCount.WithLabelValues(group).Add(float64(matches))
	}
	filterScanLatency.WithLabelValues(group).Observe(float64(elapsed.Microseconds()))
}
