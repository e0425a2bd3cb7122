package filter

// https://github.com/yuwf/wordtrie

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/dictionary"
	"github.com/yuwf/wordtrie/loader"
)

// GroupConfig 一组词
type GroupConfig struct {
	Name        string   `json:"name,omitempty"`        // 组名 不区分大小写
	Words       []string `json:"words,omitempty"`       // 词列表
	StopAtFirst bool     `json:"stopatfirst,omitempty"` // 每个起始位置只匹配最短的词
	RedisKey    string   `json:"rediskey,omitempty"`    // 不为空时从Redis的set中同步额外的词

	dict *dictionary.Dictionary
}

// Dict 组的词典，Normalize之后一定不为nil
func (g *GroupConfig) Dict() *dictionary.Dictionary {
	return g.dict
}

type ParamConfig struct {
	Groups []*GroupConfig `json:"groups,omitempty"`

	groups map[string]*GroupConfig
}

var ParamConf loader.JsonLoader[ParamConfig]

func (c *ParamConfig) Normalize() {
	c.groups = map[string]*GroupConfig{}

	groups := c.Groups[:0]
	for _, g := range c.Groups {
		if g == nil {
			continue
		}
		g.Name = strings.ToLower(strings.TrimSpace(g.Name))
		if _, ok := c.groups[g.Name]; ok {
			log.Error().Str("group", g.Name).Msg("Filter ParamConfig duplicate group")
			continue
		}

		// 构建词典，空词跳过
		g.dict = dictionary.New()
		for _, w := range g.Words {
			if _, err := g.dict.Add(w); err != nil {
				log.Warn().Err(err).Str("group", g.Name).Str("word", w).Msg("Filter ParamConfig skip word")
			}
		}
		g.dict.Compact()

		c.groups[g.Name] = g
		groups = append(groups, g)
	}
	c.Groups = groups
}

// Group 根据组名获取，不区分大小写
func (c *ParamConfig) Group(name string) *GroupConfig {
	return c.groups[strings.ToLower(name)]
}
