package main

// https://github.com/yuwf/wordtrie

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/afex/hystrix-go/hystrix"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/alert"
	"github.com/yuwf/wordtrie/filter"
	"github.com/yuwf/wordtrie/ginserver"
	_log "github.com/yuwf/wordtrie/log"
	"github.com/yuwf/wordtrie/loader"
	"github.com/yuwf/wordtrie/metrics"
	"github.com/yuwf/wordtrie/service"
	"github.com/yuwf/wordtrie/utils"
)

// AppConfig 进程配置
type AppConfig struct {
	Port          int                               `json:"port,omitempty"`
	LogPrefix     string                            `json:"logprefix,omitempty"`
	LogLevel      int                               `json:"loglevel,omitempty"`      // 和zerolog.Level一致
	FilterFile    string                            `json:"filterfile,omitempty"`    // 词组配置文件，修改后自动加载
	AlertFile     string                            `json:"alertfile,omitempty"`     // 报警配置文件，不配置不报警
	Redis         *filter.RedisConfig               `json:"redis,omitempty"`         // 不配置不从Redis同步词
	RedisSyncSpec string                            `json:"redissyncspec,omitempty"` // cron表达式 带秒
	Hystrix       map[string]*hystrix.CommandConfig `json:"hystrix,omitempty"`       // 路径熔断配置
}

func (c *AppConfig) Create() {
	c.Port = 8080
	c.LogPrefix = "wordtrie"
	c.LogLevel = 1
	c.FilterFile = "filter.json"
	c.RedisSyncSpec = "@every 60s"
}

var AppConf loader.JsonLoader[AppConfig]

func main() {
	confFile := flag.String("c", "app.json", "config file")
	scanText := flag.String("scan", "", "scan the text once and print the matches")
	flag.Parse()

	if *scanText != "" {
		os.Exit(scanOnce(*confFile, *scanText))
	}

	if err := AppConf.LoadFile(*confFile); err != nil {
		log.Error().Err(err).Str("file", *confFile).Msg("Load AppConfig error")
		return
	}
	conf := AppConf.Get()

	if err := _log.InitLog(conf.LogPrefix); err != nil {
		return
	}
	_log.SetLevel(conf.LogLevel)
	defer _log.Stop()

	watch, err := loader.NewLocalWatch()
	if err != nil {
		return
	}
	defer watch.Close()

	// 报警
	if conf.AlertFile != "" {
		if err := watch.ListenFile(conf.AlertFile, &alert.ParamConf, true); err != nil {
			return
		}
		stopAlert, err := alert.InitAlert()
		if err != nil {
			return
		}
		defer stopAlert()
	}
	metrics.RegHttp()

	// 词组配置
	if err := watch.ListenFile(conf.FilterFile, &filter.ParamConf, true); err != nil {
		return
	}

	f := filter.New(&filter.ParamConf)
	defer f.Close()
	metrics.RegFilter(f)

	// Redis同步
	if conf.Redis != nil {
		src, err := filter.NewRedisSource(conf.Redis)
		if err != nil {
			return
		}
		defer src.Close()
		metrics.RegRedisSource(src)
		id, err := f.ScheduleRedisSync(conf.RedisSyncSpec, src)
		if err != nil {
			return
		}
		defer utils.CronRemoveFunc(id)
		if conf.Redis.Channel != "" {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if err := f.WatchRedis(ctx, src, conf.Redis.Channel); err != nil {
				return
			}
		}
	}

	// http服务
	if err := ginserver.ParamConf.LoadBy(&ginserver.ParamConfig{Hystrix: conf.Hystrix}); err != nil {
		return
	}
	server := ginserver.NewGinServer(conf.Port)
	metrics.RegGinServer(server)
	if err := service.New(f).Register(server); err != nil {
		return
	}
	if err := server.Start(); err != nil {
		return
	}

	utils.RegExit(func(s os.Signal) {
		server.Stop() // 退出服务监听
		log.Info().Interface("signal", s).Msg("wordtrie exit")
	})

	utils.ExitWait()
}

// 只加载词组配置，检查一次后退出
func scanOnce(confFile, text string) int {
	if err := AppConf.LoadFile(confFile); err != nil {
		return 1
	}
	if err := filter.ParamConf.LoadFile(AppConf.Get().FilterFile); err != nil {
		return 1
	}
	f := filter.New(&filter.ParamConf)
	defer f.Close()
	results := f.Check(context.Background(), text)
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Marshal results error")
		return 1
	}
	fmt.Println(string(data))
	return 0
}
