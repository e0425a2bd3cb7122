package log

// https://github.com/yuwf/wordtrie

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type filewrite struct {
	locker      sync.Locker            // 文件锁
	file        *os.File               // 日志文件
	console     *zerolog.ConsoleWriter // 控制台输出
	prefix      string                 // 日志名后缀
	path        string                 // 文件目录
	morningTime time.Time              // 日志文件创建当天的0点
}

var logwrite = &filewrite{locker: new(sync.Mutex)}

func init() {
	SetPath(os.Getenv("LOG_PATH"))
	if logwrite.path == "" {
		logwrite.path = "./"
	}
}

// 空锁 异步写时diode保证单协程写
type nulllock struct {
}

func (l *nulllock) Lock() {
}
func (l *nulllock) Unlock() {
}

func (f *filewrite) Write(p []byte) (n int, err error) {
	f.locker.Lock()
	defer f.locker.Unlock()

	if f.console != nil {
		f.console.Write(p)
	}

	// 跨天换文件
	if f.file == nil || time.Since(f.morningTime) >= time.Hour*24 {
		f.createFile()
	}
	if f.file != nil {
		f.file.Write(p)
	}
	return len(p), nil
}

// 先停止Write 再close
func (f *filewrite) close() {
	f.locker.Lock()
	defer f.locker.Unlock()
	if f.file != nil {
		f.file.Sync()
		f.file.Close()
		f.file = nil
	}
}

func (f *filewrite) createFile() error {
	file, err := os.OpenFile(f.fileName(), os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return err
	}
	if f.file != nil {
		f.file.Sync()
		f.file.Close()
	}
	f.file = file
	now := time.Now()
	f.morningTime = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return nil
}

func (f *filewrite) fileName() string {
	return fmt.Sprintf("%s%s_%s.log", f.path, time.Now().Format("2006-01-02"), f.prefix)
}
