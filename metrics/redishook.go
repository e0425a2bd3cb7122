package metrics

// https://github.com/yuwf/wordtrie

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	// redis
	redisOnce       sync.Once
	redisCount      *prometheus.CounterVec
	redisErrorCount *prometheus.CounterVec
	redisLatency    *prometheus.HistogramVec
)

func redisHook(ctx context.Context, cmd redis.Cmder, elapsed time.Duration) {
	redisOnce.Do(func() {
		redisCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("redis_count")}, []string{"cmd"})
		redisErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("redis_error_count")}, []string{"cmd"})
		redisLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name("redis_latency"), Buckets: latencyBuckets}, []string{"cmd"})
	})
	cmdName := strings.ToLower(cmd.Name())
	redisCount.WithLabelValues(cmdName).Inc()
	// redis.Nil不算错误
	if err := cmd.Err(); err != nil && err != redis.Nil {
		redisErrorCount.WithLabelValues(cmdName).Inc()
	}
	redisLatency.WithLabelValues(cmdName).Observe(float64(elapsed.Microseconds()))
}
