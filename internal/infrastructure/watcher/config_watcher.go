package watcher

import (
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// DefaultDebounceDelay 默认防抖延迟
const DefaultDebounceDelay = 300 * time.Millisecond

// ReloadFunc 配置文件变化后的回调
type ReloadFunc func(cfg *config.Config)

// ConfigWatcher 监听配置文件并在变化后重新加载
// 监听文件所在目录，兼容编辑器的原子替换写法
type ConfigWatcher struct {
	path     string
	delay    time.Duration
	onReload ReloadFunc
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	timerMu sync.Mutex
	timer   *time.Timer

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(path string, delay time.Duration, onReload ReloadFunc) (*ConfigWatcher, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		delay:    delay,
		onReload: onReload,
		watcher:  w,
		logger:   log.NewModuleLogger("watcher", "config"),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start 开始监听
func (cw *ConfigWatcher) Start() error {
	dir := filepath.Dir(cw.path)
	if err := cw.watcher.Add(dir); err != nil {
		return err
	}
	cw.logger.Info("Watching config file", "path", cw.path)

	cw.wg.Add(1)
	go cw.loop()
	return nil
}

// Stop 停止监听，可重复调用
func (cw *ConfigWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		cw.watcher.Close()
		cw.wg.Wait()

		cw.timerMu.Lock()
		if cw.timer != nil {
			cw.timer.Stop()
		}
		cw.timerMu.Unlock()

		cw.logger.Info("Config watcher stopped")
	})
}

func (cw *ConfigWatcher) loop() {
	defer cw.wg.Done()

	for {
		select {
		case <-cw.stopCh:
			return

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				cw.schedule()
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Watcher error", "error", err)
		}
	}
}

// schedule 防抖：连续写入只触发一次重新加载
func (cw *ConfigWatcher) schedule() {
	cw.timerMu.Lock()
	defer cw.timerMu.Unlock()

	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.delay, cw.reload)
}

func (cw *ConfigWatcher) reload() {
	select {
	case <-cw.stopCh:
		return
	default:
	}

	cfg, err := config.LoadFile(cw.path)
	if err != nil {
		cw.logger.Warn("Config reload rejected, keeping previous values", "path", cw.path, "error", err)
		return
	}
	cw.logger.Info("Config reloaded",
		"path", cw.path,
		"document_delete", cfg.Policy.DocumentDelete,
		"feedback_submit", cfg.Policy.FeedbackSubmit,
	)
	if cw.onReload != nil {
		cw.onReload(cfg)
	}
}
