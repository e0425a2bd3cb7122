package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuwf/wordtrie/filter"
	"github.com/yuwf/wordtrie/ginserver"
	"github.com/yuwf/wordtrie/httprequest"
	"github.com/yuwf/wordtrie/loader"
)

func TestGinPath(t *testing.T) {
	assert.Equal(t, "/scan", ginPath("/scan"))
	assert.Equal(t, "/group/*/stats", ginPath("/group/12345/stats"))
	assert.Equal(t, "/group/*", ginPath("/group/45a6-5dfkdfj-sdfj45df5df"))
	assert.Equal(t, "/group/animals", ginPath("/group/animals"))
}

func TestRegFilter(t *testing.T) {
	conf := &loader.JsonLoader[filter.ParamConfig]{}
	require.NoError(t, conf.Load([]byte(`{"groups":[{"name":"metrics","words":["fox","dog"]}]}`), "test"))
	f := filter.New(conf)
	RegFilter(f)
	RegFilter(nil)

	f.Check(context.Background(), "fox and dog")
	f.Check(context.Background(), "cat")

	assert.Equal(t, float64(2), testutil.ToFloat64(filterScanCount.WithLabelValues("metrics")))
	assert.Equal(t, float64(2), testutil.ToFloat64(filterMatchCount.WithLabelValues("metrics")))
	assert.Equal(t, 1, testutil.CollectAndCount(filterScanLatency, "filter_scan_latency"))
}

func TestRegGinServer(t *testing.T) {
	gs := ginserver.NewGinServer(0)
	RegGinServer(gs)
	gs.RegHandler("GET", "/item/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})
	gs.RegHandler("GET", "/fail", func(c *gin.Context) {
		c.String(http.StatusBadRequest, "fail")
	})
	gs.RegHandler("GET", "/metrics", func(c *gin.Context) {
		Handler().ServeHTTP(c.Writer, c.Request)
	})

	for _, path := range []string{"/item/1", "/item/2", "/fail", "/none"} {
		gs.Engine().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(ginCount.WithLabelValues("GET", "/item/*")))
	assert.Equal(t, float64(1), testutil.ToFloat64(ginErrorCount.WithLabelValues("GET", "/fail", "400")))

	rec := httptest.NewRecorder()
	gs.Engine().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gin_count{method="GET",path="/item/*"} 2`)
}

func TestRegHttp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()
	RegHttp()

	host := strings.TrimPrefix(server.URL, "http://")
	httprequest.Request(context.Background(), "GET", server.URL+"/alert/123", nil, nil)
	httprequest.Request(context.Background(), "GET", "http://127.0.0.1:1/alert", nil, nil)

	assert.Equal(t, float64(1), testutil.ToFloat64(httpCount.WithLabelValues(host, "/alert/*")))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpErrorCount.WithLabelValues(host, "/alert/*")))
	assert.Equal(t, float64(1), testutil.ToFloat64(httpErrorCount.WithLabelValues("127.0.0.1:1", "/alert")))
}

func TestRegRedisSource(t *testing.T) {
	s := miniredis.RunT(t)
	s.SAdd("words:metrics", "fox")
	s.Set("words:bad", "x")

	src, err := filter.NewRedisSource(&filter.RedisConfig{Addrs: []string{s.Addr()}})
	require.NoError(t, err)
	defer src.Close()
	RegRedisSource(src)
	RegRedisSource(nil)

	src.Words(context.Background(), "words:metrics")
	src.Words(context.Background(), "words:bad")

	assert.Equal(t, float64(2), testutil.ToFloat64(redisCount.WithLabelValues("smembers")))
	assert.Equal(t, float64(1), testutil.ToFloat64(redisErrorCount.WithLabelValues("smembers")))
}
