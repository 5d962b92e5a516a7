package watcher

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/infrastructure/config"
)

// ProvidePolicyWatcher 监听配置文件并热更新失败策略
// 配置文件不存在时监听默认路径，文件创建后生效
func ProvidePolicyWatcher(cfg *config.Config, store *config.PolicyStore) (*ConfigWatcher, error) {
	path := cfg.Path()
	if path == "" {
		path = config.ConfigPath()
	}
	return NewConfigWatcher(path, DefaultDebounceDelay, func(next *config.Config) {
		store.Update(next.Policy)
	})
}

// ProviderSet 配置监听 ProviderSet
var ProviderSet = wire.NewSet(
	ProvidePolicyWatcher,
)
