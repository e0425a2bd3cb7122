package utils

// https://github.com/yuwf/wordtrie

import (
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
)

// 通用的panic处理函数，需要defer调用
func HandlePanic() {
	if r := recover(); r != nil {
		log.Error().Err(panicError(r)).Msg("Panic")
	}
}

// paniccall 在记录完日志后调用
func HandlePanic2(paniccall func()) {
	if r := recover(); r != nil {
		log.Error().Err(panicError(r)).Msg("Panic")
		if paniccall != nil {
			paniccall()
		}
	}
}

func HandlePanicWithCaller(caller *CallerDesc) {
	if r := recover(); r != nil {
		log.Error().Str("callPos", caller.Pos()).Err(panicError(r)).Msg("Panic")
	}
}

func panicError(r interface{}) error {
	buf := make([]byte, 2048)
	l := runtime.Stack(buf, false)
	return fmt.Errorf("%v: %s", r, buf[:l])
}
