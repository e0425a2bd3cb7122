package metrics

// https://github.com/yuwf/wordtrie

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yuwf/wordtrie/filter"
	"github.com/yuwf/wordtrie/ginserver"
	"github.com/yuwf/wordtrie/httprequest"
)

// 注册各种组件的hook，实现统计

// 指标名前缀，需要Reg之前设置
var MetricsNamePrefix = ""

// 延迟的分桶 单位微秒
var latencyBuckets = []float64{1, 2, 4, 8, 16, 64, 128, 256, 512, 1024, 2048, 4096, 8192, 16384, 65536}

// Filter统计
func RegFilter(f *filter.Filter) {
	if f != nil {
		f.RegHook(filterHook)
	}
}

// Redis词源统计
func RegRedisSource(src *filter.RedisSource) {
	if src != nil {
		src.RegHook(redisHook)
	}
}

// Http调用统计
func RegHttp() {
	httprequest.RegHook(httpHook)
}

// GinServer统计
func RegGinServer(gs *ginserver.GinServer) {
	if gs != nil {
		gs.RegHook(ginHook)
	}
}

// Handler 输出默认注册器中的所有指标
func Handler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
}

func name(n string) string {
	return MetricsNamePrefix + n
}
