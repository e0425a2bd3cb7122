package log

// https://github.com/yuwf/wordtrie

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	asyncWriteLog diode.Writer
	async         bool
)

func init() {
	zerolog.MessageFieldName = "msg"
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05.000"
	// pkg/errors 的堆栈，调用.Stack()时输出
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	// 文件路径变短
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		slice := strings.Split(file, "/")
		if len(slice) >= 2 {
			return slice[len(slice)-2] + "/" + slice[len(slice)-1] + ":" + strconv.Itoa(line)
		}
		return file + ":" + strconv.Itoa(line)
	}

	// 不初始化默认只有控制台输出
	console := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false, TimeFormat: zerolog.TimeFieldFormat}
	log.Logger = zerolog.New(console).With().Timestamp().Caller().Logger()
}

// InitLog 初始化日志 同时输出到控制台和文件
// 文件名：LOG_PATH + 日期_prefix.log，每天一个文件
// 环境变量LOG_ASYNC=1 时异步写
func InitLog(prefix string) error {
	SetLevel(0)
	EnableStdout()

	async = os.Getenv("LOG_ASYNC") == "1"
	if async {
		logwrite.locker = new(nulllock)
		asyncWriteLog = diode.NewWriter(logwrite, 32*1024, 0, func(missed int) {})
		log.Logger = zerolog.New(asyncWriteLog).With().Timestamp().Caller().Logger()
	} else {
		logwrite.locker = new(sync.Mutex)
		log.Logger = zerolog.New(logwrite).With().Timestamp().Caller().Logger()
	}
	logwrite.prefix = prefix
	if err := logwrite.createFile(); err != nil {
		log.Error().Err(err).Str("path", logwrite.path).Msg("Log createFile error")
		return err
	}
	log.Info().Str("file", logwrite.fileName()).Msg("Log init success")
	return nil
}

// Stop 关闭日志文件
func Stop() {
	if async {
		asyncWriteLog.Close()
	}
	logwrite.close()
}

// SetLevel 和zerolog.Level一致 -1:trace 0:debug 1:info ...
func SetLevel(l int) {
	log.Logger = log.Level(zerolog.Level(l))
}

// SetPath 日志目录，需要在InitLog之前调用
func SetPath(path string) {
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	logwrite.path = path
}

// 打开标准控制台输出，可以在日志初始化前调用
func EnableStdout() {
	if logwrite.console == nil {
		logwrite.console = &zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false, TimeFormat: zerolog.TimeFieldFormat}
	}
}

// 关闭标准控制台输出
func DisableStdout() {
	logwrite.console = nil
}
