package utils

// https://github.com/yuwf/wordtrie

import (
	"runtime"
	"strconv"
	"strings"
)

type CallerDesc struct {
	filename string
	funname  string
	line     int
}

// 返回 文件名:函数名:行号  用作日志
func (c *CallerDesc) Pos() string {
	return c.filename + ":" + c.funname + ":" + strconv.Itoa(c.line)
}

// 返回 文件名:函数名
func (c *CallerDesc) Name() string {
	return c.filename + ":" + c.funname
}

// skip=0 表示调用GetCallerDesc的函数
func GetCallerDesc(skip int) *CallerDesc {
	caller := &CallerDesc{}
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return caller
	}
	// 文件名只取到go文件的目录层
	slice := strings.Split(file, "/")
	if len(slice) >= 2 {
		caller.filename = slice[len(slice)-2] + "/" + slice[len(slice)-1]
	} else {
		caller.filename = slice[len(slice)-1]
	}

	if fun := runtime.FuncForPC(pc); fun != nil {
		// 只取函数名
		slice := strings.Split(fun.Name(), ".")
		caller.funname = slice[len(slice)-1]
	}

	caller.line = line
	return caller
}
