package metrics

// https://github.com/yuwf/wordtrie

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// gin
	ginOnce       sync.Once
	ginCount      *prometheus.CounterVec
	ginErrorCount *prometheus.CounterVec
	ginLatency    *prometheus.HistogramVec

	ginPathRegexp *regexp2.Regexp
)

func init() {
	var err error
	// 分割 / 数字或者超长的段替换成*
	ginPathRegexp, err = regexp2.Compile(`(?<=[/])(\d+|[^/]{17,})(?=[/]|$)`, regexp2.None)
	if err != nil {
		panic(err.Error())
	}
}

// 路径中的变化部分折叠，防止标签过多
func ginPath(path string) string {
	k, err := ginPathRegexp.Replace(path, "*", 0, -1)
	if err != nil {
		return path
	}
	return k
}

func ginHook(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	ginOnce.Do(func() {
		ginCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("gin_count")}, []string{"method", "path"})
		ginErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{Name: name("gin_error_count")}, []string{"method", "path", "error"})
		ginLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: name("gin_latency"), Buckets: latencyBuckets}, []string{"method", "path"})
	})
	if c.Writer.Status() == http.StatusNotFound {
		return
	}
	method := strings.ToUpper(c.Request.Method)
	path := ginPath(c.Request.URL.Path)

	ginCount.WithLabelValues(method, path).Inc()
	if len(c.Errors) > 0 {
		ginErrorCount.WithLabelValues(method, path, c.Errors[0].Error()).Inc()
	} else if c.Writer.Status() != http.StatusOK {
		ginErrorCount.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
	ginLatency.WithLabelValues(method, path).Observe(float64(elapsed.Microseconds()))
}
