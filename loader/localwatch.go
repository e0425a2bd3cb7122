package loader

// https://github.com/yuwf/wordtrie

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/utils"
)

const defaultDebounceDelay = 100 * time.Millisecond

// LocalWatch 本地文件监控，文件修改后重新加载到Loader
type LocalWatch struct {
	sync.RWMutex
	watchers map[string]*fileWatcher // 文件绝对路径 -> 监控器
	watcher  *fsnotify.Watcher

	quit  chan int
	state int32 // 运行状态 0:未运行 1：loop中
}

type fileWatcher struct {
	path          string // 文件绝对路径
	watchDir      string // 实际监控的目录
	loader        Loader
	debounceTimer *time.Timer
	debounceDelay time.Duration
}

// NewLocalWatch 创建本地文件监控器
func NewLocalWatch() (*LocalWatch, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error().Err(err).Msg("LocalWatch NewWatcher error")
		return nil, err
	}

	w := &LocalWatch{
		watchers: make(map[string]*fileWatcher),
		watcher:  watcher,
		quit:     make(chan int),
		state:    1,
	}
	go w.loop()
	return w, nil
}

// ListenFile 监听本地文件变化
// immediately: 是否立即加载一次，加载失败不监控
func (w *LocalWatch) ListenFile(path string, loader Loader, immediately bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("LocalWatch ListenFile Abs error")
		return err
	}
	// 很多编辑器保存文件是先删除再rename，监控文件本身收不到Write，所以监控目录
	watchDir := filepath.Dir(absPath)

	if immediately {
		if err := loader.LoadFile(absPath); err != nil {
			return err
		}
	}

	w.Lock()
	defer w.Unlock()

	if _, ok := w.watchers[absPath]; ok {
		log.Warn().Str("path", absPath).Msg("LocalWatch ListenFile already watching")
		return nil
	}

	if !w.dirWatched(watchDir) {
		if err := w.watcher.Add(watchDir); err != nil {
			log.Error().Err(err).Str("path", absPath).Msg("LocalWatch ListenFile Add error")
			return err
		}
	}

	fw := &fileWatcher{
		path:          absPath,
		watchDir:      watchDir,
		loader:        loader,
		debounceDelay: defaultDebounceDelay,
	}
	w.watchers[absPath] = fw

	// 没有立即加载 文件存在就延迟读取下
	if !immediately {
		if _, err := os.Stat(absPath); err == nil {
			fw.reload()
		}
	}

	log.Info().Str("path", absPath).Msg("LocalWatch ListenFile")
	return nil
}

// CancelListenFile 取消监听本地文件
func (w *LocalWatch) CancelListenFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("LocalWatch CancelListenFile Abs error")
		return err
	}

	w.Lock()
	defer w.Unlock()
	fw, ok := w.watchers[absPath]
	if !ok {
		log.Warn().Str("path", absPath).Msg("LocalWatch CancelListenFile not watching")
		return nil
	}
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	delete(w.watchers, absPath)

	// 目录下没有其他监控的文件了
	if !w.dirWatched(fw.watchDir) {
		w.watcher.Remove(fw.watchDir)
	}

	log.Info().Str("path", absPath).Msg("LocalWatch CancelListenFile")
	return nil
}

// IsWatching 是否正在监控指定文件
func (w *LocalWatch) IsWatching(path string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	w.RLock()
	defer w.RUnlock()
	_, ok := w.watchers[absPath]
	return ok
}

func (w *LocalWatch) Close() {
	if !atomic.CompareAndSwapInt32(&w.state, 1, 0) {
		return
	}
	w.quit <- 1
	<-w.quit
	log.Info().Msg("LocalWatch Quit")
}

// 需要外层加锁
func (w *LocalWatch) dirWatched(dir string) bool {
	for _, v := range w.watchers {
		if v.watchDir == dir {
			return true
		}
	}
	return false
}

func (w *LocalWatch) loop() {
	defer utils.HandlePanic()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				log.Error().Msg("LocalWatch events channel closed")
				w.exit()
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Create) == 0 {
				continue
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				log.Error().Msg("LocalWatch errors channel closed")
				w.exit()
				return
			}
			log.Error().Err(err).Msg("LocalWatch error")

		case <-w.quit:
			w.exit()
			w.quit <- 1
			return
		}
	}
}

func (w *LocalWatch) exit() {
	atomic.StoreInt32(&w.state, 0)
	defer utils.HandlePanic()

	w.Lock()
	defer w.Unlock()
	for _, fw := range w.watchers {
		if fw.debounceTimer != nil {
			fw.debounceTimer.Stop()
		}
	}
	w.watcher.Close()
	w.watchers = make(map[string]*fileWatcher)
}

func (w *LocalWatch) handle(event fsnotify.Event) {
	absPath, err := filepath.Abs(event.Name)
	if err != nil {
		absPath = event.Name
	}

	w.RLock()
	defer w.RUnlock()
	if fw, ok := w.watchers[absPath]; ok {
		fw.reload()
	}
}

// 防抖 短时间内多次修改只加载一次
func (fw *fileWatcher) reload() {
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		defer utils.HandlePanic()
		fw.loader.LoadFile(fw.path)
	})
}
