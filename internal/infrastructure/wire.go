package infrastructure

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/notification"
	"github.com/ragtrainer/gateway/internal/infrastructure/storage"
	"github.com/ragtrainer/gateway/internal/infrastructure/tokenizer"
	"github.com/ragtrainer/gateway/internal/infrastructure/watcher"
	"github.com/ragtrainer/gateway/internal/infrastructure/websocket"
)

// ProviderSet Infrastructure 层总 ProviderSet
var ProviderSet = wire.NewSet(
	config.ProviderSet,
	backend.ProviderSet,
	storage.ProviderSet,
	websocket.ProviderSet,
	notification.ProviderSet,
	watcher.ProviderSet,
	tokenizer.ProviderSet,
)
