package loader

// https://github.com/yuwf/wordtrie

import (
	"bytes"
	"encoding/json"
	"os"
	"reflect"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

var ErrNoSrc = errors.New("src is nil")

// JsonLoader json配置加载对象 协程安全
// 如果T实现了Creater 构造后调用，实现了Normalizer 加载完后调用
type JsonLoader[T any] struct {
	sync.RWMutex
	conf        *T              // 配置对象
	src         []byte          // 原始值
	hookId      int             // 最后分配的hook id
	prepareHook []loaderHook[T] // 新配置生效前的回调
	updateHook  []loaderHook[T] // 配置更新后的回调
}

type loaderHook[T any] struct {
	id int
	f  func(old, new *T)
}

func newConf[T any]() *T {
	conf := new(T)
	if creater, ok := any(conf).(Creater); ok {
		creater.Create()
	}
	return conf
}

func normalize[T any](conf *T) {
	if normalizer, ok := any(conf).(Normalizer); ok {
		normalizer.Normalize()
	}
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}

// Get 获取配置 返回的指针一定不为nil 外层不需要再判断
func (l *JsonLoader[T]) Get() *T {
	l.RLock()
	conf := l.conf
	l.RUnlock()
	if conf != nil {
		return conf
	}

	l.Lock()
	defer l.Unlock()
	if l.conf == nil {
		conf := newConf[T]()
		normalize(conf)
		l.conf = conf
	}
	return l.conf
}

// RegHook 注册配置修改Hook，返回的id用来UnregHook
func (l *JsonLoader[T]) RegHook(hook func(old, new *T)) int {
	l.Lock()
	defer l.Unlock()
	l.hookId++
	l.updateHook = append(l.updateHook, loaderHook[T]{id: l.hookId, f: hook})
	return l.hookId
}

// RegPrepareHook 注册新配置生效前的Hook，new已经Normalize过，可以在这里补充数据
// Get在所有PrepareHook返回后才能拿到new
func (l *JsonLoader[T]) RegPrepareHook(hook func(old, new *T)) int {
	l.Lock()
	defer l.Unlock()
	l.hookId++
	l.prepareHook = append(l.prepareHook, loaderHook[T]{id: l.hookId, f: hook})
	return l.hookId
}

// UnregHook 删除RegHook或者RegPrepareHook注册的Hook
func (l *JsonLoader[T]) UnregHook(id int) {
	l.Lock()
	defer l.Unlock()
	l.prepareHook = removeHook(l.prepareHook, id)
	l.updateHook = removeHook(l.updateHook, id)
}

// 不在原slice上修改，apply中可能正在遍历
func removeHook[T any](hooks []loaderHook[T], id int) []loaderHook[T] {
	var out []loaderHook[T]
	for _, h := range hooks {
		if h.id != id {
			out = append(out, h)
		}
	}
	return out
}

func (l *JsonLoader[T]) GetSrc() []byte {
	l.RLock()
	defer l.RUnlock()
	return l.src
}

// Load 从原始数据加载，src为nil时加载默认配置
func (l *JsonLoader[T]) Load(src []byte, path string) error {
	defer utils.HandlePanic()

	if l.GetSrc() != nil && bytes.Equal(l.GetSrc(), src) {
		return nil
	}

	conf := newConf[T]()
	if src != nil {
		if err := json.Unmarshal(src, conf); err != nil {
			log.Error().Err(err).Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader Load Unmarshal error")
			return err
		}
		src = append([]byte(nil), src...) // 深拷贝 防止外部修改
	}
	log.Info().Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader Load Success")

	l.apply(conf, src)
	return nil
}

// LoadFile 从本地文件加载
func (l *JsonLoader[T]) LoadFile(path string) error {
	defer utils.HandlePanic()

	src, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader LoadFile ReadFile error")
		return err
	}
	if bytes.Equal(l.GetSrc(), src) {
		return nil
	}

	conf := newConf[T]()
	if err := json.Unmarshal(src, conf); err != nil {
		log.Error().Err(err).Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader LoadFile Unmarshal error")
		return err
	}
	log.Info().Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader LoadFile Success")

	l.apply(conf, src)
	return nil
}

// LoadBy 直接用对象加载，会经过一次json序列化
func (l *JsonLoader[T]) LoadBy(t *T) error {
	if t == nil {
		err := errors.New("t is nil")
		log.Error().Err(err).Str("T", typeName[T]()).Msg("JsonLoader LoadBy error")
		return err
	}
	src, err := json.Marshal(t)
	if err != nil {
		log.Error().Err(err).Str("T", typeName[T]()).Msg("JsonLoader LoadBy Marshal error")
		return err
	}
	return l.Load(src, "")
}

func (l *JsonLoader[T]) SaveFile(path string) error {
	src := l.GetSrc()
	if src == nil {
		log.Error().Err(ErrNoSrc).Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader SaveFile error")
		return ErrNoSrc
	}
	err := os.WriteFile(path, src, 0644)
	if err != nil {
		log.Error().Err(err).Str("path", path).Str("T", typeName[T]()).Msg("JsonLoader SaveFile error")
	}
	return err
}

// 替换配置并回调
func (l *JsonLoader[T]) apply(conf *T, src []byte) {
	normalize(conf)

	old := l.Get()
	l.RLock()
	prepare := l.prepareHook
	l.RUnlock()
	for _, h := range prepare {
		callHook(h.f, old, conf)
	}

	l.Lock()
	l.conf = conf
	l.src = src
	hook := l.updateHook // 拷贝出一份来
	l.Unlock()

	for _, h := range hook {
		callHook(h.f, old, conf)
	}
}

func callHook[T any](f func(old, new *T), old, new *T) {
	defer utils.HandlePanic()
	f(old, new)
}
