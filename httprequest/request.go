package httprequest

// https://github.com/yuwf/wordtrie

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

type HttpRequest struct {
	Method string // 请求方法 GET POST ..
	Addr   string // 请求地址
	URL    *url.URL
	Header http.Header //请求头
	Data   []byte      // 请求数据

	Err    error  // 内部错误
	errPos string // 错误的地方 引起错误的点太多，记录详情位置，内部日志使用

	Resp     *http.Response // 请求返回对象 Err==nil时有效
	RespData []byte         // 请求返回数据 Err==nil时有效

	entry   time.Time
	Elapsed time.Duration // 请求耗时

	Body     interface{} // 根据请求接口来填充原始对象
	RespBody interface{} // 根据请求接口来填充原始对象
}

// 请求处理完后回调 不使用锁，默认要求提前注册好
var httpHook []func(ctx context.Context, call *HttpRequest)

func RegHook(f func(ctx context.Context, call *HttpRequest)) {
	httpHook = append(httpHook, f)
}

// Request http请求 返回值StatusCode 内容 错误码
func Request(ctx context.Context, method, addr string, body []byte, headers map[string]string) (int, []byte, error) {
	call := newRequest(method, addr, headers)
	call.Data = body
	defer call.done(ctx)

	if call.parse(); call.Err != nil {
		return 0, nil, call.Err
	}
	call.call(ctx)
	if call.Err != nil {
		return 0, nil, call.Err
	}
	return call.Resp.StatusCode, call.RespData, nil
}

// body和返回值都是可以转Json的对象
func JsonRequest[T any](ctx context.Context, method, addr string, body interface{}, headers map[string]string) (int, *T, error) {
	call := newRequest(method, addr, headers)
	defer call.done(ctx)

	if call.parse(); call.Err != nil {
		return 0, nil, call.Err
	}

	// 数据格式化
	switch data := body.(type) {
	case nil:
	case []byte:
		call.Data = data
	case string:
		call.Data = []byte(data)
	default:
		call.Body = body
		call.Data, call.Err = json.Marshal(body)
		if call.Err != nil {
			call.errPos = "Marshal error"
			return 0, nil, call.Err
		}
	}

	// 添加上json格式头
	call.Header.Set("Content-Type", "application/json")
	call.Header.Set("Accept", "application/json")

	call.call(ctx)
	if call.Err != nil {
		return 0, nil, call.Err
	}

	// 解析返回值
	t := new(T)
	if err := json.Unmarshal(call.RespData, t); err != nil {
		if call.Resp.StatusCode != http.StatusOK {
			call.Err = errors.New(call.Resp.Status)
		} else {
			call.Err = err
			call.errPos = "Unmarshal error"
		}
		return call.Resp.StatusCode, nil, call.Err
	}
	call.RespBody = t
	return call.Resp.StatusCode, t, nil
}

func newRequest(method, addr string, headers map[string]string) *HttpRequest {
	call := &HttpRequest{
		entry:  time.Now(),
		Method: method,
		Addr:   addr,
		Header: make(http.Header),
	}
	for k, v := range headers {
		call.Header.Set(k, v)
	}
	return call
}

func (h *HttpRequest) parse() {
	h.URL, h.Err = url.Parse(h.Addr)
	if h.Err != nil {
		h.errPos = "Parse Addr error"
	}
}

func (h *HttpRequest) call(ctx context.Context) {
	// 熔断检查
	if name, ok := ParamConf.Get().IsHystrixURL(h.Addr); ok {
		hystrix.DoC(ctx, name, func(ctx context.Context) error {
			h.do(ctx)
			return h.Err
		}, func(ctx context.Context, err error) error {
			// 出现了熔断
			if h.Err == nil {
				h.Err = err
				h.errPos = "Hystrix"
			}
			return err
		})
	} else {
		h.do(ctx)
	}
}

func (h *HttpRequest) do(ctx context.Context) {
	var request *http.Request
	request, h.Err = http.NewRequestWithContext(ctx, h.Method, h.Addr, bytes.NewReader(h.Data))
	if h.Err != nil {
		h.errPos = "NewRequest fail"
		return
	}
	request.Header = h.Header
	// traceId透传
	if traceId := utils.CtxTraceID(ctx); traceId != 0 {
		request.Header.Set(utils.HttpTraceIdHeader, strconv.FormatInt(traceId, 10))
	}

	// 请求
	var client *http.Client
	if ParamConf.Get().Pool {
		client = getHttpClient(h.URL.Host)
	} else {
		client = &http.Client{
			Timeout: time.Duration(ParamConf.Get().Timeout) * time.Second,
		}
	}

	h.Resp, h.Err = client.Do(request)
	if h.Err != nil {
		h.errPos = "Request Do error"
		return
	}
	defer h.Resp.Body.Close()

	// 读取返回值
	h.RespData, h.Err = io.ReadAll(h.Resp.Body)
	if h.Err != nil {
		h.errPos = "Response ReadAll error"
	}
}

// 连接池
var lock sync.RWMutex
var httpPool = make(map[string]*http.Client)

func getHttpClient(host string) *http.Client {
	lock.RLock()
	if client, ok := httpPool[host]; ok {
		lock.RUnlock()
		return client
	}
	lock.RUnlock()

	lock.Lock()
	defer lock.Unlock()
	//double check
	if client, ok := httpPool[host]; ok {
		return client
	}
	client := &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: time.Second * 3,
			}).DialContext,
			MaxIdleConnsPerHost: 128,
			MaxIdleConns:        2048,
			IdleConnTimeout:     time.Second * 90,
		},
		Timeout: time.Duration(ParamConf.Get().Timeout) * time.Second,
	}
	httpPool[host] = client
	return client
}

func (h *HttpRequest) done(ctx context.Context) {
	h.Elapsed = time.Since(h.entry)

	// 日志
	if h.Err != nil {
		h.log(ctx, zerolog.ErrorLevel, "HttpRequest Err")
	} else if !utils.CtxHasNolog(ctx) {
		h.log(ctx, zerolog.Level(ParamConf.Get().LogLevel), "HttpRequest")
	}

	// 回调
	h.callhook(ctx)
}

func (h *HttpRequest) callhook(ctx context.Context) {
	defer utils.HandlePanic()
	// 回调
	for _, f := range httpHook {
		f(ctx, h)
	}
}

func (h *HttpRequest) log(ctx context.Context, level zerolog.Level, msg string) {
	l := log.WithLevel(level)
	if l == nil {
		return
	}
	limit := ParamConf.Get().BodyLogLimit
	l = utils.LogCtx(l, ctx)

	if h.Err != nil {
		l = l.Err(h.Err)
	}
	if len(h.errPos) > 0 {
		l = l.Str("errPos", h.errPos)
	}
	l = l.Int32("elapsed", int32(h.Elapsed/time.Millisecond)).Str("method", h.Method).Str("addr", h.Addr)
	if h.Body != nil {
		l = utils.LogFmtHttpInterface(l, "req", h.Body, limit)
	} else if len(h.Data) > 0 {
		l = utils.LogFmtHttpBody(l, "req", h.Header, h.Data, limit)
	}
	if h.Resp != nil {
		l = l.Int("status", h.Resp.StatusCode)
		if h.RespBody != nil {
			l = utils.LogFmtHttpInterface(l, "resp", h.RespBody, limit)
		} else if len(h.RespData) > 0 {
			l = utils.LogFmtHttpBody(l, "resp", h.Resp.Header, h.RespData, limit)
		}
	}
	l.Msg(msg)
}
