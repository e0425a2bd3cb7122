package metrics

// https://github.com/yuwf/wordtrie

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/yuwf/wordtrie/httprequest"
)

var (
	// http
	httpOnce       sync.Once
	httpCount      *prometheus.CounterVec
	httpErrorCount *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
)

func httpHook(ctx context.Context, call *httprequest.HttpRequest) {
	httpOnce.Do(func() {
		httpCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("http_count")}, []string{"host", "path"})
		httpErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("http_error_count")}, []string{"host", "path"})
		httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name("http_latency"), Buckets: latencyBuckets}, []string{"host", "path"})
	})
	var host, path string
	if call.URL != nil {
		host = call.URL.Host
		path = ginPath(call.URL.Path) // 和gin一样的折叠规则
	}
	httpCount.WithLabelValues(host, path).Inc()
	if call.Err != nil {
		httpErrorCount.WithLabelValues(host, path).Inc()
	}
	httpLatency.WithLabelValues(host, path).Observe(float64(call.Elapsed.Microseconds()))
}
