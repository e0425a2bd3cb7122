package ginserver

// https://github.com/yuwf/wordtrie

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

// 外部可赋值重定义
var (
	// 请求参数绑定错误 回复状态：http.StatusBadRequest
	JsonParamBindError = map[string]interface{}{"errCode": 1, "errDesc": "Param Error"}
	// 处理逻辑Panic了 回复状态：http.StatusInternalServerError
	PanicError = map[string]interface{}{"errCode": 500, "errDesc": "Server Error"}
)

var (
	ctxType     = reflect.TypeOf((*context.Context)(nil)).Elem()
	ginCtxType  = reflect.TypeOf((*gin.Context)(nil))
	errNotFunc  = errors.New("param must be function")
	errFunParam = errors.New("fun param error")
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

type GinServer struct {
	engine *gin.Engine
	server *http.Server
	state  int32 // 运行状态 0:未运行 1：开启监听

	// 请求处理完后回调 不使用锁，默认要求提前注册好
	hook []func(ctx context.Context, c *gin.Context, elapsed time.Duration)
}

func NewGinServer(port int) *GinServer {
	engine := gin.New()
	gs := &GinServer{
		engine: engine,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
	}

	gs.engine.Use(
		gs.context,
		cors,
		gs.hystrix,
		gs.handle,
	)
	return gs
}

// Engine 暴露原始对象
func (gs *GinServer) Engine() *gin.Engine {
	return gs.engine
}

// Addr 监听地址，Start之后有效
func (gs *GinServer) Addr() string {
	return gs.server.Addr
}

func (gs *GinServer) Start() error {
	if !atomic.CompareAndSwapInt32(&gs.state, 0, 1) {
		log.Error().Str("Addr", gs.server.Addr).Msg("GinServer already Start")
		return nil
	}

	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		atomic.StoreInt32(&gs.state, 0)
		log.Error().Err(err).Str("Addr", gs.server.Addr).Msg("GinServer Start err")
		return err
	}
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		gs.server.Addr = fmt.Sprintf(":%d", addr.Port) // 端口为0时取实际端口
	}
	// 开启监听 Serve会阻塞
	go func() {
		err := gs.server.Serve(ln)
		if err == nil || err == http.ErrServerClosed {
			log.Info().Str("Addr", gs.server.Addr).Msg("GinServer Exit")
		} else {
			atomic.StoreInt32(&gs.state, 0)
			log.Error().Err(err).Str("Addr", gs.server.Addr).Msg("GinServer Serve Error")
		}
	}()

	log.Info().Str("Addr", gs.server.Addr).Msg("GinServer Start")
	return nil
}

func (gs *GinServer) Stop() error {
	if !atomic.CompareAndSwapInt32(&gs.state, 1, 0) {
		log.Error().Str("Addr", gs.server.Addr).Msg("GinServer already Close")
		return nil
	}
	log.Info().Str("Addr", gs.server.Addr).Msg("GinServer Closeing")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := gs.server.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Str("Addr", gs.server.Addr).Msg("GinServer Close error")
	}
	return err
}

// 注册回调，需要fun调用回复
// method为空表示注册所有方法
// fun的参数支持以下写法
// (c *gin.Context)
// (ctx context.Context, c *gin.Context)
// optionsHandlers会先执行 再执行fun调用
func (gs *GinServer) RegHandler(method, path string, fun interface{}, optionsHandlers ...gin.HandlerFunc) error {
	funType := reflect.TypeOf(fun)
	funValue := reflect.ValueOf(fun)
	if fun == nil || funType.Kind() != reflect.Func {
		log.Error().Str("path", path).Msg("GinServer RegHandler, param must be function")
		return errNotFunc
	}
	switch {
	case funType.NumIn() == 1 && funType.In(0) == ginCtxType:
	case funType.NumIn() == 2 && funType.In(0) == ctxType && funType.In(1) == ginCtxType:
	default:
		log.Error().Str("path", path).Str("type", funType.String()).Msg("GinServer RegHandler, fun param must be (*gin.Context) or (context.Context, *gin.Context)")
		return errFunParam
	}

	ginFun := func(c *gin.Context) {
		if funType.NumIn() == 1 {
			funValue.Call([]reflect.Value{reflect.ValueOf(c)})
		} else {
			funValue.Call([]reflect.Value{reflect.ValueOf(ginCtx(c)), reflect.ValueOf(c)})
		}
	}
	gs.reg(method, path, ginFun, optionsHandlers)
	return nil
}

// 注册Json数据结构的回调，不需要fun调用回复
// method为空表示注册所有方法
// fun的参数支持以下写法
// (ctx context.Context, c *gin.Context, resp *RespStruct)
// (ctx context.Context, c *gin.Context, req *ReqStruct, resp *RespStruct)
// ReqStruct结构的格式可以是gin支持绑定的任意格式，需要在请求头中Content-Type指定具体格式，然后ReqStruct对应的写tag即可
// RespStruct必须是支持json格式化的结构
// optionsHandlers会先执行 再执行fun调用
func (gs *GinServer) RegJsonHandler(method, path string, fun interface{}, optionsHandlers ...gin.HandlerFunc) error {
	funType := reflect.TypeOf(fun)
	funValue := reflect.ValueOf(fun)
	if fun == nil || funType.Kind() != reflect.Func {
		log.Error().Str("path", path).Msg("GinServer RegJsonHandler, param must be function")
		return errNotFunc
	}
	isStructPtr := func(t reflect.Type) bool {
		return t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Struct
	}
	numIn := funType.NumIn()
	if (numIn != 3 && numIn != 4) || funType.In(0) != ctxType || funType.In(1) != ginCtxType ||
		!isStructPtr(funType.In(2)) || (numIn == 4 && !isStructPtr(funType.In(3))) {
		log.Error().Str("path", path).Str("type", funType.String()).Msg("GinServer RegJsonHandler, fun param error")
		return errFunParam
	}

	ginFun := func(c *gin.Context) {
		ctx := ginCtx(c)
		if numIn == 4 {
			// 先解析传入的参数
			reqVal := reflect.New(funType.In(2).Elem())
			respVal := reflect.New(funType.In(3).Elem())
			c.Set("req", reqVal.Interface()) // 日志使用
			if funType.In(2).Elem().NumField() > 0 {
				if err := c.ShouldBind(reqVal.Interface()); err != nil {
					c.Set("err", err)
					c.Set("resp", JsonParamBindError) // 日志使用
					c.JSON(http.StatusBadRequest, JsonParamBindError)
					return
				}
			}
			c.Set("resp", respVal.Interface()) // 日志使用
			funValue.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(c), reqVal, respVal})
			if !c.IsAborted() {
				c.JSON(http.StatusOK, respVal.Interface())
			}
		} else {
			respVal := reflect.New(funType.In(2).Elem())
			c.Set("resp", respVal.Interface()) // 日志使用
			funValue.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(c), respVal})
			if !c.IsAborted() {
				c.JSON(http.StatusOK, respVal.Interface())
			}
		}
	}
	gs.reg(method, path, ginFun, optionsHandlers)
	return nil
}

func (gs *GinServer) RegHook(f func(ctx context.Context, c *gin.Context, elapsed time.Duration)) {
	gs.hook = append(gs.hook, f)
}

func (gs *GinServer) reg(method, path string, fun gin.HandlerFunc, optionsHandlers []gin.HandlerFunc) {
	// 将函数加到最后
	handlers := append(optionsHandlers, fun)
	if len(method) == 0 {
		gs.engine.Any(path, handlers...)
	} else {
		gs.engine.Handle(method, path, handlers...)
	}
}

func ginCtx(c *gin.Context) context.Context {
	ctxv, _ := c.Get("ctx")
	ctx, _ := ctxv.(context.Context)
	if ctx == nil {
		ctx = c.Request.Context()
	}
	return ctx
}

// 回复体桥接下，便于获取回复的内容
type responseWriterWrapper struct {
	gin.ResponseWriter
	Body *bytes.Buffer // 缓存
}

func (w responseWriterWrapper) Write(b []byte) (int, error) {
	w.Body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w responseWriterWrapper) WriteString(s string) (int, error) {
	w.Body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// 生成请求的追踪ID，请求头中有就沿用
func (gs *GinServer) context(c *gin.Context) {
	traceId, _ := strconv.ParseInt(c.GetHeader(utils.HttpTraceIdHeader), 10, 64)
	c.Set("ctx", utils.CtxSetTrace(c.Request.Context(), traceId))
}

func (gs *GinServer) hystrix(c *gin.Context) {
	ctx := ginCtx(c)

	// 熔断
	if name, ok := ParamConf.Get().IsHystrixPath(c.Request.URL.Path); ok {
		hystrix.DoC(ctx, name, func(ctx context.Context) error {
			c.Next()
			return nil
		}, func(ctx context.Context, err error) error {
			// 出现了熔断
			utils.LogCtx(log.Error(), ctx).Err(err).Str("name", name).Str("path", c.Request.URL.Path).Msg("GinServer Hystrix")
			c.String(http.StatusServiceUnavailable, err.Error())
			c.Error(err)
			c.Abort()
			// 熔断也会调用回调
			gs.callhook(ctx, c, 0)
			return err
		})
	}
}

func (gs *GinServer) handle(c *gin.Context) {
	ctx := ginCtx(c)
	param := ParamConf.Get()

	// 忽略的路径
	logOut := !utils.CtxHasNolog(ctx) && !param.IsIgnorePath(c.Request.URL.Path)
	var blw *responseWriterWrapper
	if logOut {
		blw = &responseWriterWrapper{ResponseWriter: c.Writer, Body: bytes.NewBufferString("")}
		c.Writer = blw
	}

	entry := time.Now()
	// 调用外部的逻辑
	gs.handleNext(c)
	elapsed := time.Since(entry)

	if logOut {
		l := utils.LogCtx(log.Info(), ctx).Str("clientIP", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path)
		if err, ok := c.Get("err"); ok {
			l = l.Interface("err", err)
		}
		if req, ok := c.Get("req"); ok {
			l = utils.LogFmtHttpInterface(l, "req", req, param.BodyLogLimit)
		} else if len(c.Request.URL.RawQuery) > 0 {
			l = l.Str("req", c.Request.URL.RawQuery)
		}
		l = l.Int("status", c.Writer.Status()).Int("elapsed", int(elapsed/time.Millisecond))
		if resp, ok := c.Get("resp"); ok {
			l = utils.LogFmtHttpInterface(l, "resp", resp, param.BodyLogLimit)
		} else if blw.Body.Len() > 0 {
			l = utils.LogFmtHttpBody(l, "resp", c.Writer.Header(), blw.Body.Bytes(), param.BodyLogLimit)
		}
		l.Msg("GinServer handle")
	}

	gs.callhook(ctx, c, elapsed)
}

func (gs *GinServer) handleNext(c *gin.Context) {
	// 外层部分的panic
	defer utils.HandlePanic2(func() {
		c.Set("resp", PanicError) // 日志使用
		c.AbortWithStatusJSON(http.StatusInternalServerError, PanicError)
	})

	c.Next()
}

func (gs *GinServer) callhook(ctx context.Context, c *gin.Context, elapsed time.Duration) {
	defer utils.HandlePanic()
	// 回调
	for _, f := range gs.hook {
		f(ctx, c, elapsed)
	}
}
