package alert

// https://github.com/yuwf/wordtrie

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

var (
	// 日志钩子
	hook logHook

	// 同一个报警的汇总间隔
	SamplingSpec = "@every 1m"
)

// InitAlert 需要在日志初始化完毕之后调用
// 错误日志的msg匹配到配置的前缀就报警，同一个msg第一次立即报警，之后按SamplingSpec汇总报警
// 返回的fun需要外层defer调用
func InitAlert() (func(), error) {
	// 设置日志钩子
	log.Logger = log.Logger.Hook(&hook)

	id, err := utils.CronAddFunc(SamplingSpec, hook.flush)
	if err != nil {
		return nil, err
	}
	return func() {
		utils.CronRemoveFunc(id)
		hook.flush()
	}, nil
}

// 日志采样
type logSampling struct {
	addr       *AlertAddr
	msg        string
	count      int // 上次报警到本次报警，出现的次数
	totalCount int // 累计次数
}

type logHook struct {
	// 要报警的日志采样 key表示msg
	samplingLock sync.Mutex
	samplingLogs map[string]*logSampling
}

func (h *logHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	switch level {
	case zerolog.FatalLevel, zerolog.PanicLevel:
		// 进程要退出了 同步发送
		SendFeiShuAlert2(ParamConf.Get().defaultAddr, "%s %s", level.String(), msg)
	case zerolog.ErrorLevel:
		if addr := ParamConf.Get().alertAddr(msg); addr != nil {
			h.addAlertLog(addr, msg)
		}
	}
}

func (h *logHook) addAlertLog(addr *AlertAddr, msg string) {
	h.samplingLock.Lock()
	if h.samplingLogs == nil {
		h.samplingLogs = map[string]*logSampling{}
	}
	if a, ok := h.samplingLogs[msg]; ok {
		a.count++
		h.samplingLock.Unlock()
		return
	}
	h.samplingLogs[msg] = &logSampling{addr: addr, msg: msg, totalCount: 1}
	h.samplingLock.Unlock()

	// 先报警一次
	SendFeiShuAlert(addr, "Error %s", msg)
}

// 汇总发送，一个周期内没有再出现的删除
func (h *logHook) flush() {
	h.samplingLock.Lock()
	var sends []logSampling
	for msg, a := range h.samplingLogs {
		if a.count == 0 {
			delete(h.samplingLogs, msg)
			continue
		}
		a.totalCount += a.count
		sends = append(sends, *a)
		a.count = 0
	}
	h.samplingLock.Unlock()

	for _, a := range sends {
		SendFeiShuAlert(a.addr, "Error %s\n\nCount:%d\nTotalCount:%d", a.msg, a.count, a.totalCount)
	}
}
