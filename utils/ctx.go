package utils

// https://github.com/yuwf/wordtrie

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type CtxKey string

var genTraceId int64 // 内部使用的全局traceid

const CtxKey_traceId = CtxKey("_traceId_") // context产生时设置的唯一ID，用来链路追踪，int64
const CtxKey_nolog = CtxKey("_nolog_")     // 不打印日志，错误日志还会打印

const HttpTraceIdHeader = "X-Trace-Id" // http请求透传追踪ID的头

// 设置追踪ID，traceId为0时内部生成，已经设置过的不再设置
func CtxSetTrace(parent context.Context, traceId int64) context.Context {
	if parent == nil {
		parent = context.TODO()
	} else if parent.Value(CtxKey_traceId) != nil {
		return parent
	}
	if traceId == 0 {
		traceId = atomic.AddInt64(&genTraceId, 1)
	}
	return context.WithValue(parent, CtxKey_traceId, traceId)
}

func CtxTraceID(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(CtxKey_traceId).(int64)
	return id
}

func CtxSetNolog(parent context.Context) context.Context {
	if parent == nil {
		parent = context.TODO()
	} else if parent.Value(CtxKey_nolog) != nil {
		return parent
	}
	return context.WithValue(parent, CtxKey_nolog, 1)
}

func CtxHasNolog(ctx context.Context) bool {
	if ctx != nil {
		return ctx.Value(CtxKey_nolog) != nil
	}
	return false
}

// LogCtx 把ctx中的追踪ID加到日志中
func LogCtx(l *zerolog.Event, ctx context.Context) *zerolog.Event {
	if id := CtxTraceID(ctx); id != 0 {
		l = l.Int64("traceId", id)
	}
	return l
}
