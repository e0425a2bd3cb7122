package filter

// https://github.com/yuwf/wordtrie

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

type RedisConfig struct {
	Master  string   `json:"master,omitempty"` // 不为空就创建哨兵模式的连接
	Addrs   []string `json:"addrs,omitempty"`  // host:port 地址数<=1 创建单节点连接 否则创建集群连接
	Passwd  string   `json:"passwd,omitempty"`
	DB      int      `json:"db,omitempty"` // 只有单节点模式使用
	TLS     bool     `json:"tls,omitempty"`
	Channel string   `json:"channel,omitempty"` // 不为空时订阅该频道，收到消息立即同步
}

// RedisSource 从Redis的set中读取词
type RedisSource struct {
	client redis.UniversalClient

	// 执行命令后回调 不使用锁，默认要求提前注册好
	hook []func(ctx context.Context, cmd redis.Cmder, elapsed time.Duration)
}

func NewRedisSource(cfg *RedisConfig) (*RedisSource, error) {
	options := &redis.UniversalOptions{
		MasterName:   cfg.Master,
		Addrs:        cfg.Addrs,
		Password:     cfg.Passwd,
		DB:           cfg.DB,
		MaxRetries:   -1, // 不重试 下次定时同步再来
		DialTimeout:  4 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	if cfg.TLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewUniversalClient(options)

	// 测试连接
	if err := client.Ping(context.TODO()).Err(); err != nil {
		client.Close()
		log.Error().Err(err).Str("addr", strings.Join(cfg.Addrs, ",")).Int("db", cfg.DB).Msg("RedisSource Conn Fail")
		return nil, err
	}
	log.Info().Str("addr", strings.Join(cfg.Addrs, ",")).Int("db", cfg.DB).Msg("RedisSource Conn Success")
	return NewRedisSourceWithClient(client), nil
}

// NewRedisSourceWithClient 使用外部已创建好的连接
func NewRedisSourceWithClient(client redis.UniversalClient) *RedisSource {
	s := &RedisSource{client: client}
	client.AddHook(&redisHook{source: s})
	return s
}

func (s *RedisSource) RegHook(f func(ctx context.Context, cmd redis.Cmder, elapsed time.Duration)) {
	s.hook = append(s.hook, f)
}

// Client 暴露原始对象
func (s *RedisSource) Client() redis.UniversalClient {
	return s.client
}

// Words 读取key对应set的所有成员
func (s *RedisSource) Words(ctx context.Context, key string) ([]string, error) {
	words, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		utils.LogCtx(log.Error(), ctx).Err(err).Str("key", key).Msg("RedisSource Words error")
		return nil, err
	}
	return words, nil
}

func (s *RedisSource) Close() error {
	return s.client.Close()
}

// redisHook 统计命令耗时
type redisHook struct {
	source *RedisSource
}

func (h *redisHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		entry := time.Now()
		err := next(ctx, cmd)
		h.callhook(ctx, cmd, time.Since(entry))
		return err
	}
}

func (h *redisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		entry := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(entry)
		for _, cmd := range cmds {
			h.callhook(ctx, cmd, elapsed)
		}
		return err
	}
}

func (h *redisHook) callhook(ctx context.Context, cmd redis.Cmder, elapsed time.Duration) {
	defer utils.HandlePanic()
	for _, f := range h.source.hook {
		f(ctx, cmd, elapsed)
	}
}

// SyncRedis 把Redis中的词合并到配置了RedisKey的组中
// 返回第一个错误，其他组继续同步
func (f *Filter) SyncRedis(ctx context.Context, src *RedisSource) error {
	return f.syncRedis(ctx, src, f.conf.Get())
}

func (f *Filter) syncRedis(ctx context.Context, src *RedisSource, conf *ParamConfig) error {
	var first error
	for _, g := range conf.Groups {
		if g.RedisKey == "" {
			continue
		}
		words, err := src.Words(ctx, g.RedisKey)
		if err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		f.redisMutex.Lock()
		f.redisWords[g.RedisKey] = words
		f.redisMutex.Unlock()

		before := g.dict.Len()
		g.dict.AddWords(words)
		if added := g.dict.Len() - before; added > 0 {
			utils.LogCtx(log.Info(), ctx).Str("group", g.Name).Str("key", g.RedisKey).Int("added", added).Msg("Filter SyncRedis")
		}
	}
	return first
}

// ScheduleRedisSync 立即同步一次，再按cron表达式定时同步
// 配置文件重新加载后也会同步
func (f *Filter) ScheduleRedisSync(spec string, src *RedisSource) (int, error) {
	f.redisMutex.Lock()
	f.redis = src
	f.redisMutex.Unlock()

	f.SyncRedis(context.Background(), src)
	return utils.CronAddFunc(spec, func() {
		f.SyncRedis(context.Background(), src)
	})
}

// WatchRedis 订阅channel，收到任意消息就同步一次，ctx结束后退出
// 订阅断开后间隔一秒重新订阅
func (f *Filter) WatchRedis(ctx context.Context, src *RedisSource, channel string) error {
	sub, err := src.subscribe(ctx, channel)
	if err != nil {
		return err
	}
	go func() {
		defer utils.HandlePanic()
		for {
			msg, err := sub.ReceiveMessage(ctx)
			if err == nil {
				utils.LogCtx(log.Debug(), ctx).Str("channel", channel).Str("payload", msg.Payload).Msg("Filter WatchRedis")
				f.SyncRedis(ctx, src)
				continue
			}
			sub.Close()
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("channel", channel).Msg("RedisSource Subscribe Receive error")
			// 重新订阅
			for sub = nil; sub == nil; {
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
				sub, _ = src.subscribe(ctx, channel)
			}
		}
	}()
	return nil
}

func (s *RedisSource) subscribe(ctx context.Context, channel string) (*redis.PubSub, error) {
	sub := s.client.Subscribe(ctx, channel)
	// 等待订阅成功
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		log.Error().Err(err).Str("channel", channel).Msg("RedisSource Subscribe fail")
		return nil, err
	}
	return sub, nil
}

// 把缓存的Redis词合并到conf中，conf还未生效
func (f *Filter) mergeRedisWords(conf *ParamConfig) {
	f.redisMutex.Lock()
	defer f.redisMutex.Unlock()
	for _, g := range conf.Groups {
		if words, ok := f.redisWords[g.RedisKey]; ok && g.RedisKey != "" {
			g.dict.AddWords(words)
		}
	}
}

func (f *Filter) redisSource() *RedisSource {
	f.redisMutex.Lock()
	defer f.redisMutex.Unlock()
	return f.redis
}
