package httprequest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuwf/wordtrie/utils"
)

type echoResp struct {
	Method string `json:"method"`
	Body   string `json:"body"`
	Trace  string `json:"trace"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("bad gateway"))
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&echoResp{
			Method: r.Method,
			Body:   string(body),
			Trace:  r.Header.Get(utils.HttpTraceIdHeader),
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestJsonRequest(t *testing.T) {
	server := newEchoServer(t)

	var calls []*HttpRequest
	RegHook(func(ctx context.Context, call *HttpRequest) {
		calls = append(calls, call)
	})
	defer func() { httpHook = nil }()

	ctx := utils.CtxSetTrace(context.Background(), 77)
	status, resp, err := JsonRequest[echoResp](ctx, "POST", server.URL+"/echo", map[string]string{"text": "fox"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "POST", resp.Method)
	assert.Equal(t, `{"text":"fox"}`, resp.Body)
	assert.Equal(t, "77", resp.Trace)

	status, _, err = JsonRequest[echoResp](ctx, "GET", server.URL+"/bad", nil, nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, status)

	require.Len(t, calls, 2)
	assert.Equal(t, "/echo", calls[0].URL.Path)
	assert.Nil(t, calls[0].Err)
	assert.NotNil(t, calls[1].Err)
}

func TestRequest(t *testing.T) {
	server := newEchoServer(t)

	status, data, err := Request(context.Background(), "PUT", server.URL, []byte("raw"), map[string]string{"X-Test": "1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"body":"raw"`)

	_, _, err = Request(context.Background(), "GET", "http://127.0.0.1:1/none", nil, nil)
	assert.Error(t, err)

	_, _, err = Request(context.Background(), "GET", "://bad", nil, nil)
	assert.Error(t, err)
}

func TestPool(t *testing.T) {
	server := newEchoServer(t)
	require.NoError(t, ParamConf.Load([]byte(`{"pool":true}`), "test"))
	defer ParamConf.Load(nil, "test")

	for i := 0; i < 3; i++ {
		status, _, err := Request(context.Background(), "GET", server.URL, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status)
	}
	lock.RLock()
	assert.Len(t, httpPool, 1)
	lock.RUnlock()
}

func TestHystrixURL(t *testing.T) {
	require.NoError(t, ParamConf.Load([]byte(`{"hystrix":{"HTTP://127.0.0.1:1/*":{"timeout":1000}}}`), "test"))
	defer ParamConf.Load(nil, "test")

	name, ok := ParamConf.Get().IsHystrixURL("http://127.0.0.1:1/alert")
	assert.True(t, ok)
	assert.Equal(t, "http_http://127.0.0.1:1/*", name)

	_, _, err := Request(context.Background(), "GET", "http://127.0.0.1:1/alert", nil, nil)
	assert.Error(t, err)
}
