package wire

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	appTrainer "github.com/ragtrainer/gateway/internal/application/trainer"
	applog "github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/watcher"
	"github.com/ragtrainer/gateway/internal/infrastructure/websocket"
	"github.com/ragtrainer/gateway/internal/interfaces"
)

// App 应用主结构，组合所有服务
type App struct {
	HTTPServer *interfaces.HTTPServer
	MCPServer  *interfaces.MCPServer
	wsHub      *websocket.Hub
	registry   *appTrainer.Registry
	watcher    *watcher.ConfigWatcher
	logger     *slog.Logger
}

// NewApp 创建应用实例
func NewApp(
	httpServer *interfaces.HTTPServer,
	mcpServer *interfaces.MCPServer,
	wsHub *websocket.Hub,
	registry *appTrainer.Registry,
	configWatcher *watcher.ConfigWatcher,
) *App {
	return &App{
		HTTPServer: httpServer,
		MCPServer:  mcpServer,
		wsHub:      wsHub,
		registry:   registry,
		watcher:    configWatcher,
		logger:     applog.NewModuleLogger("app", "main"),
	}
}

// Start 启动所有服务，ln 为 nil 时由 HTTP 服务器自行监听
func (a *App) Start(ln net.Listener) error {
	a.logger.Info("Starting trainer gateway")

	// 启动 WebSocket Hub
	a.wsHub.Start()

	// 空闲工作区回收
	a.registry.Start()

	// 策略热更新失败不影响服务
	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			a.logger.Warn("Config hot reload disabled", "error", err)
		}
	}

	// 启动 HTTP 服务器（goroutine）
	go func() {
		var err error
		if ln != nil {
			err = a.HTTPServer.Serve(ln)
		} else {
			err = a.HTTPServer.Start()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server stopped",
				"error", err,
			)
		}
	}()

	a.logger.Info("Trainer gateway started")
	return nil
}

// Stop 停止所有服务
func (a *App) Stop() error {
	a.logger.Info("Stopping trainer gateway")

	var errs []error
	if err := a.HTTPServer.Stop(); err != nil {
		a.logger.Error("Failed to stop HTTP server", "error", err)
		errs = append(errs, err)
	}

	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.registry.Stop()
	a.wsHub.Stop()

	return errors.Join(errs...)
}
