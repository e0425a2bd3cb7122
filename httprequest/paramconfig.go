package httprequest

// https://github.com/yuwf/wordtrie

import (
	"strings"

	"github.com/afex/hystrix-go/hystrix"

	"github.com/yuwf/wordtrie/loader"
	"github.com/yuwf/wordtrie/utils"
)

// 参数配置
type ParamConfig struct {
	LogLevel     int  `json:"loglevel,omitempty"`     // 成功请求的日志级别和zerolog.Level一致，不配置就是info级别，错误都用error级别
	Pool         bool `json:"pool,omitempty"`         // 是否使用连接池，有些网址处理完请求就执行关闭，会导致连接池有问题，默认不使用
	Timeout      int  `json:"timeout,omitempty"`      // 请求超时 单位秒
	BodyLogLimit int  `json:"bodyloglimit,omitempty"` // body日志限制 <=0 表示不限制
	// 参数含义和ginserver一致
	Hystrix map[string]*hystrix.CommandConfig `json:"hystrix,omitempty"` // 熔断器 [url:Config]，url 支持?*通配符 不区分大小写 目前不支持动态删除
}

var ParamConf loader.JsonLoader[ParamConfig]

func (c *ParamConfig) Create() {
	c.LogLevel = 1
	c.Timeout = 8
	c.BodyLogLimit = 1024
}

func (c *ParamConfig) Normalize() {
	if c.Timeout <= 0 {
		c.Timeout = 8
	}
	hystrixs := make(map[string]*hystrix.CommandConfig, len(c.Hystrix))
	for url, config := range c.Hystrix {
		if config == nil {
			continue
		}
		url = strings.ToLower(url)
		hystrixs[url] = config
		hystrix.ConfigureCommand("http_"+url, *config) // 加个http_前缀，区别其他模块使用
	}
	c.Hystrix = hystrixs
}

func (c *ParamConfig) IsHystrixURL(url string) (string, bool) {
	v := strings.ToLower(url)
	for path := range c.Hystrix {
		if utils.IsMatch(path, v) {
			return "http_" + path, true
		}
	}
	return "", false
}
