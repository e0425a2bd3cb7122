package ginserver

// https://github.com/yuwf/wordtrie

import (
	"strings"

	"github.com/afex/hystrix-go/hystrix"

	"github.com/yuwf/wordtrie/loader"
	"github.com/yuwf/wordtrie/utils"
)

// 参数配置
type ParamConfig struct {
	LogIgnorePath []string    `json:"logignorepath,omitempty"` // 不打印日志的路径 支持?*通配符 不区分大小写
	BodyLogLimit  int         `json:"bodyloglimit,omitempty"`  // body日志限制 <=0 表示不限制
	Cors          *CorsConfig `json:"cors,omitempty"`
	// Timeout: 执行 command 的超时时间 单位为毫秒
	// MaxConcurrentRequests: 最大并发量
	// RequestVolumeThreshold: 一个统计窗口 10 秒内请求数量 达到这个请求数量后才去判断是否要开启熔断
	// SleepWindow: 熔断器被打开后 SleepWindow的时间就是控制过多久后去尝试服务是否可用了 单位为毫秒
	// ErrorPercentThreshold: 错误百分比 请求数量大于等于 RequestVolumeThreshold 并且错误率到达这个百分比后就会启动熔断
	Hystrix map[string]*hystrix.CommandConfig `json:"hystrix,omitempty"` // 熔断器 [path:Config]，path 支持?*通配符 不区分大小写 目前不支持动态删除
}

var ParamConf loader.JsonLoader[ParamConfig]

func (c *ParamConfig) Create() {
	c.BodyLogLimit = 1024
	c.Cors = defaultCorsOptions()
}

func (c *ParamConfig) Normalize() {
	for i, path := range c.LogIgnorePath {
		c.LogIgnorePath[i] = strings.ToLower(path)
	}
	hystrixs := make(map[string]*hystrix.CommandConfig, len(c.Hystrix))
	for path, config := range c.Hystrix {
		if config == nil {
			continue
		}
		path = strings.ToLower(path)
		hystrixs[path] = config
		hystrix.ConfigureCommand("gin_"+path, *config) // 加个gin_前缀，区别其他模块使用
	}
	c.Hystrix = hystrixs
	if c.Cors == nil {
		c.Cors = defaultCorsOptions()
	}
	c.Cors.Normalize()
}

func (c *ParamConfig) IsIgnorePath(path string) bool {
	path = strings.ToLower(path)
	for _, v := range c.LogIgnorePath {
		if utils.IsMatch(v, path) {
			return true
		}
	}
	return false
}

// IsHystrixPath 返回熔断器名
func (c *ParamConfig) IsHystrixPath(path string) (string, bool) {
	v := strings.ToLower(path)
	for path := range c.Hystrix {
		if utils.IsMatch(path, v) {
			return "gin_" + path, true
		}
	}
	return "", false
}
