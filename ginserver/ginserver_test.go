package ginserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuwf/wordtrie/utils"
)

type getNameReq struct {
	Name string `json:"name" binding:"required"`
}

type getNameResp struct {
	Name  string `json:"name"`
	Trace int64  `json:"trace"`
}

func getName1(ctx context.Context, c *gin.Context, resp *getNameResp) {
	resp.Name = "hello"
	resp.Trace = utils.CtxTraceID(ctx)
}

func getName2(ctx context.Context, c *gin.Context, req *getNameReq, resp *getNameResp) {
	resp.Name = "hello " + req.Name
}

func serve(gs *GinServer, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	gs.Engine().ServeHTTP(rec, req)
	return rec
}

func TestRegJsonHandler(t *testing.T) {
	gs := NewGinServer(0)
	require.NoError(t, gs.RegJsonHandler("GET", "/getname1", getName1))
	require.NoError(t, gs.RegJsonHandler("POST", "/getname2", getName2))

	rec := serve(gs, "GET", "/getname1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp getNameResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Name)
	assert.NotZero(t, resp.Trace)

	rec = serve(gs, "POST", "/getname2", `{"name":"fox"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello fox", resp.Name)

	// 参数错误
	rec = serve(gs, "POST", "/getname2", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Param Error")
}

func TestRegHandlerCheck(t *testing.T) {
	gs := NewGinServer(0)
	assert.Error(t, gs.RegHandler("GET", "/a", nil))
	assert.Error(t, gs.RegHandler("GET", "/a", 1))
	assert.Error(t, gs.RegHandler("GET", "/a", func(s string) {}))
	assert.Error(t, gs.RegJsonHandler("GET", "/a", func(ctx context.Context, c *gin.Context) {}))
	assert.Error(t, gs.RegJsonHandler("GET", "/a", func(ctx context.Context, c *gin.Context, s string) {}))

	require.NoError(t, gs.RegHandler("", "/raw", func(c *gin.Context) {
		c.String(http.StatusOK, "raw")
	}))
	require.NoError(t, gs.RegHandler("GET", "/rawctx", func(ctx context.Context, c *gin.Context) {
		c.String(http.StatusOK, fmt.Sprint(utils.CtxTraceID(ctx) != 0))
	}))
	assert.Equal(t, "raw", serve(gs, "POST", "/raw", "").Body.String())
	assert.Equal(t, "true", serve(gs, "GET", "/rawctx", "").Body.String())
}

func TestPanicAndHook(t *testing.T) {
	gs := NewGinServer(0)
	gs.RegHandler("GET", "/panic", func(c *gin.Context) {
		panic("handler panic")
	})

	var mutex sync.Mutex
	var status []int
	gs.RegHook(func(ctx context.Context, c *gin.Context, elapsed time.Duration) {
		mutex.Lock()
		defer mutex.Unlock()
		status = append(status, c.Writer.Status())
	})

	rec := serve(gs, "GET", "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server Error")

	serve(gs, "GET", "/none", "")
	assert.Equal(t, []int{http.StatusInternalServerError, http.StatusNotFound}, status)
}

func TestCors(t *testing.T) {
	gs := NewGinServer(0)
	gs.RegHandler("GET", "/cors", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	gs.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "HEAD,GET,POST", rec.Header().Get("Access-Control-Allow-Methods"))

	assert.Equal(t, http.StatusMethodNotAllowed, serve(gs, http.MethodDelete, "/cors", "").Code)

	c := defaultCorsOptions()
	c.AllowOrigin = []string{"http://*.example.com"}
	assert.Equal(t, "http://www.example.com", c.allowOrigin("http://www.example.com"))
	assert.Equal(t, "", c.allowOrigin("http://www.other.com"))
}

func TestHystrix(t *testing.T) {
	conf := `{"hystrix":{"/Slow":{"timeout":5000,"max_concurrent_requests":1}}}`
	require.NoError(t, ParamConf.Load([]byte(conf), "test"))
	defer ParamConf.Load(nil, "test")

	name, ok := ParamConf.Get().IsHystrixPath("/slow")
	assert.True(t, ok)
	assert.Equal(t, "gin_/slow", name)
	_, ok = ParamConf.Get().IsHystrixPath("/fast")
	assert.False(t, ok)

	gs := NewGinServer(0)
	entered := make(chan struct{})
	release := make(chan struct{})
	gs.RegHandler("GET", "/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.String(http.StatusOK, "slow")
	})

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- serve(gs, "GET", "/slow", "")
	}()
	<-entered

	// 超过最大并发
	rec := serve(gs, "GET", "/slow", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	close(release)
	rec = <-done
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "slow", rec.Body.String())
}

func TestStartStop(t *testing.T) {
	gs := NewGinServer(0)
	gs.RegHandler("GET", "/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	require.NoError(t, gs.Start())
	defer gs.Stop()

	resp, err := http.Get("http://127.0.0.1" + gs.Addr() + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))
}

func TestTraceHeader(t *testing.T) {
	gs := NewGinServer(0)
	require.NoError(t, gs.RegJsonHandler("GET", "/trace", getName1))

	req := httptest.NewRequest("GET", "/trace", nil)
	req.Header.Set(utils.HttpTraceIdHeader, "12345")
	rec := httptest.NewRecorder()
	gs.Engine().ServeHTTP(rec, req)

	var resp getNameResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(12345), resp.Trace)
}
