package utils

// https://github.com/yuwf/wordtrie

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog/log"
)

var (
	processWG       sync.WaitGroup
	processQuit     = make(chan struct{})
	processQuitOnce sync.Once
	processExitCall []func(os.Signal)
	exiting         bool
)

// 注册退出函数，ExitWait收到信号后按注册顺序调用
func RegExit(fn func(os.Signal)) {
	processExitCall = append(processExitCall, fn)
}

// Exit 主动退出
func Exit(code int) {
	processQuitOnce.Do(func() { close(processQuit) })
	processWG.Wait()
	os.Exit(code)
}

// 等待退出，一般放到main函数的最下面调用
func ExitWait() {
	processWG.Add(1)
	go func() {
		defer processWG.Done()
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigchan)

		var sig os.Signal
	loop:
		for {
			select {
			case sig = <-sigchan:
				switch sig {
				case syscall.SIGHUP:
					log.Warn().Msg("Process Caught SIGHUP. Ignoring") // 终端关闭
					continue
				case os.Interrupt:
					log.Warn().Msg("Process Caught SIGINT. Exiting")
				case syscall.SIGTERM:
					log.Warn().Msg("Process Caught SIGTERM. Exiting")
				}
				break loop
			case <-processQuit:
				log.Info().Msg("Process Exiting")
				break loop
			}
		}
		exiting = true
		for _, fn := range processExitCall {
			if fn != nil {
				func() {
					defer HandlePanic()
					fn(sig)
				}()
			}
		}
	}()

	processWG.Wait()
	log.Info().Msg("Process Exited")
}

func Exiting() bool {
	return exiting
}
