package alert

// https://github.com/yuwf/wordtrie

import (
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/loader"
	"github.com/yuwf/wordtrie/trie"
	"github.com/yuwf/wordtrie/utils"
)

type AlertAddr struct {
	Addr   string `json:"addr,omitempty"`   // 报警地址
	Secret string `json:"secret,omitempty"` // 秘钥
}

type AlertConfig struct {
	*AlertAddr
	Only        []string `json:"only,omitempty"`   // 只向指定的hostname发送报警， 支持?*通配符 不区分大小写
	Ignore      []string `json:"ignore,omitempty"` // 忽略的hostname， 支持?*通配符 不区分大小写
	ErrorPrefix []string `json:"errorprefix,omitempty"`
	Default     bool     `json:"default,omitempty"` // 是否为默认的内置的错误报警，不设置就用第1个

	prefix   *trie.Trie[rune]
	isIgnore bool // 是否忽略本机的报警
}

type ParamConfig struct {
	ServerName  string         `json:"servername,omitempty"`
	Configs     []*AlertConfig `json:"configs,omitempty"`
	defaultAddr *AlertAddr     // 默认报警地址
}

var ParamConf loader.JsonLoader[ParamConfig]

// 内置的错误报警
var innerErrorPrefix = []string{
	"Panic",
	"Filter",
	"RedisSource",
	"JsonLoader",
	"LocalWatch",
	"GinServer Hystrix",
}

func (c *ParamConfig) Normalize() {
	hostname, _ := os.Hostname()
	hostname = strings.ToLower(hostname)

	defut := -1
	for i, v := range c.Configs {
		if v.AlertAddr == nil {
			v.AlertAddr = &AlertAddr{}
		}
		v.prefix = trie.New[rune]()
		v.isIgnore = v.ignored(hostname)
		if v.isIgnore {
			continue // 忽略了本机的报警，不用构建下面的数据
		}

		for _, s := range v.ErrorPrefix {
			if _, err := v.prefix.Insert([]rune(s)); err != nil {
				log.Warn().Err(err).Str("prefix", s).Msg("Alert ParamConfig skip prefix")
			}
		}
		if v.Default && c.defaultAddr == nil {
			c.defaultAddr = v.AlertAddr
			defut = i
		}
		if defut == -1 {
			defut = i
		}
	}

	// 内置的报警 加入到默认的报警器中
	if defut != -1 {
		if c.defaultAddr == nil {
			c.defaultAddr = c.Configs[defut].AlertAddr
		}
		for _, s := range innerErrorPrefix {
			if _, err := c.Configs[defut].prefix.Insert([]rune(s)); err != nil {
				log.Warn().Err(err).Str("prefix", s).Msg("Alert ParamConfig skip prefix")
			}
		}
	}
	for _, v := range c.Configs {
		v.prefix.Compact()
	}
}

func (v *AlertConfig) ignored(hostname string) bool {
	if len(v.Only) > 0 {
		for _, o := range v.Only {
			if utils.IsMatch(strings.ToLower(o), hostname) {
				return false
			}
		}
		return true
	}
	for _, o := range v.Ignore {
		if utils.IsMatch(strings.ToLower(o), hostname) {
			return true
		}
	}
	return false
}

// HasPrefix msg是否以配置的某个前缀开头
func (v *AlertConfig) HasPrefix(msg string) bool {
	if v.isIgnore {
		return false
	}
	return len(v.prefix.ScanAt([]rune(msg), 0, true, nil)) > 0
}

// 找到msg对应的报警地址
func (c *ParamConfig) alertAddr(msg string) *AlertAddr {
	for _, conf := range c.Configs {
		if conf.HasPrefix(msg) {
			return conf.AlertAddr
		}
	}
	return nil
}
