package utils

// https://github.com/yuwf/wordtrie

import (
	"sync"
	"time"

	"github.com/panjf2000/ants"
	"github.com/rs/zerolog/log"
)

// ants包的一个简单过渡

var (
	defaultAntsPool *ants.Pool
	antWG           sync.WaitGroup
)

func init() {
	defaultAntsPool, _ = ants.NewPool(ants.DEFAULT_ANTS_POOL_SIZE,
		ants.WithPanicHandler(func(r interface{}) {
			log.Error().Err(panicError(r)).Msg("Panic")
		}))
}

// 暴露出原始对象
func DefaultAntsPool() *ants.Pool {
	return defaultAntsPool
}

// 提交一个任务
func Submit(task func()) error {
	return defaultAntsPool.Submit(task)
}

// 提交一组任务并等待全部完成
// 提交失败的任务在当前协程直接执行
func SubmitWait(tasks []func()) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for _, task := range tasks {
		task := task
		fn := func() {
			defer wg.Done()
			task()
		}
		if err := defaultAntsPool.Submit(fn); err != nil {
			log.Warn().Err(err).Msg("Ants Submit fail, run inline")
			fn()
		}
	}
	wg.Wait()
}

// 提交一个可以等待的任务，WaitProcess等待
func SubmitProcess(task func()) error {
	antWG.Add(1)
	err := defaultAntsPool.Submit(func() {
		defer antWG.Done()
		task()
	})
	if err != nil {
		antWG.Done()
	}
	return err
}

// 等待SubmitProcess提交的任务，最多等待timeout
func WaitProcess(timeout time.Duration) {
	ch := make(chan int)
	go func() {
		antWG.Wait()
		close(ch)
	}()
	timer := time.NewTimer(timeout)
	select {
	case <-ch:
		if !timer.Stop() {
			select {
			case <-timer.C: // try to drain the channel
			default:
			}
		}
	case <-timer.C:
		log.Warn().Dur("timeout", timeout).Msg("Ants WaitProcess timeout")
	}
}
