package filter

// https://github.com/yuwf/wordtrie

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/dictionary"
	"github.com/yuwf/wordtrie/loader"
	"github.com/yuwf/wordtrie/utils"
)

var ErrUnknownGroup = errors.New("unknown group")

// GroupMatch 一个组的匹配结果
type GroupMatch struct {
	Group   string             `json:"group"`
	Matches []dictionary.Match `json:"matches"`
}

// Filter 按配置的词组检查文本
// 配置热更新时直接使用新的词组，检查过程中不加锁
type Filter struct {
	conf *loader.JsonLoader[ParamConfig]

	// 每次检查完一个组后回调 不使用锁，默认要求提前注册好
	hook []func(ctx context.Context, group string, text string, matches int, elapsed time.Duration)

	redisMutex sync.Mutex
	redis      *RedisSource
	redisWords map[string][]string // RedisKey -> 最近一次同步到的词

	hookIds []int // 注册到conf上的hook
}

// New conf为nil时使用全局的ParamConf
// 会在conf上注册hook，不再使用时调用Close
func New(conf *loader.JsonLoader[ParamConfig]) *Filter {
	if conf == nil {
		conf = &ParamConf
	}
	f := &Filter{conf: conf, redisWords: map[string][]string{}}
	// 新配置生效前先合并上次同步的Redis词，生效后再异步同步一次
	f.hookIds = append(f.hookIds, conf.RegPrepareHook(func(old, new *ParamConfig) {
		f.mergeRedisWords(new)
	}))
	f.hookIds = append(f.hookIds, conf.RegHook(func(old, new *ParamConfig) {
		src := f.redisSource()
		if src == nil {
			return
		}
		utils.Submit(func() {
			f.syncRedis(context.Background(), src, new)
		})
	}))
	return f
}

// Close 从conf上删除hook
func (f *Filter) Close() {
	for _, id := range f.hookIds {
		f.conf.UnregHook(id)
	}
	f.hookIds = nil
}

func (f *Filter) RegHook(hook func(ctx context.Context, group string, text string, matches int, elapsed time.Duration)) {
	f.hook = append(f.hook, hook)
}

// Check 检查所有的组，只返回有匹配的组
func (f *Filter) Check(ctx context.Context, text string) []*GroupMatch {
	var results []*GroupMatch
	for _, g := range f.conf.Get().Groups {
		if gm := f.check(ctx, g, text); len(gm.Matches) > 0 {
			results = append(results, gm)
		}
	}
	return results
}

// CheckGroup 检查指定的组
func (f *Filter) CheckGroup(ctx context.Context, group string, text string) (*GroupMatch, error) {
	g := f.conf.Get().Group(group)
	if g == nil {
		err := errors.Wrapf(ErrUnknownGroup, "group %q", group)
		utils.LogCtx(log.Error(), ctx).Err(err).Str("group", group).Msg("Filter CheckGroup error")
		return nil, err
	}
	return f.check(ctx, g, text), nil
}

// Contains 任意一个组命中
func (f *Filter) Contains(ctx context.Context, text string) bool {
	for _, g := range f.conf.Get().Groups {
		entry := time.Now()
		hit := g.dict.Contains(text)
		matches := 0
		if hit {
			matches = 1
		}
		f.callhook(ctx, g.Name, text, matches, time.Since(entry))
		if hit {
			return true
		}
	}
	return false
}

// Stats 每个组的词典统计
func (f *Filter) Stats() map[string]dictionary.Stats {
	stats := map[string]dictionary.Stats{}
	for _, g := range f.conf.Get().Groups {
		stats[g.Name] = g.dict.Stats()
	}
	return stats
}

func (f *Filter) check(ctx context.Context, g *GroupConfig, text string) *GroupMatch {
	entry := time.Now()
	matches := g.dict.Search(text, g.StopAtFirst)
	elapsed := time.Since(entry)

	if !utils.CtxHasNolog(ctx) && len(matches) > 0 {
		utils.LogCtx(log.Debug(), ctx).Str("group", g.Name).Int("matches", len(matches)).Dur("elapsed", elapsed).Msg("Filter Check")
	}
	f.callhook(ctx, g.Name, text, len(matches), elapsed)
	return &GroupMatch{Group: g.Name, Matches: matches}
}

func (f *Filter) callhook(ctx context.Context, group string, text string, matches int, elapsed time.Duration) {
	defer utils.HandlePanic()
	for _, fn := range f.hook {
		fn(ctx, group, text, matches, elapsed)
	}
}
