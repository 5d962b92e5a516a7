// @title Trainer Gateway API
// @version 1.0
// @description RAG 训练网关 API：认证、文档、对话、反馈与检索结果重排
// @host localhost:19980
// @BasePath /api/v1
// @schemes http
package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	applog "github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/singleton"
	"github.com/ragtrainer/gateway/internal/wire"
)

func main() {
	// .env 可选，存在时补充环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	// 初始化日志系统
	applog.Init(nil)
	logger := applog.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 单例检查：端口由当前进程持有，直接交给 HTTP 服务器
	listener, err := singleton.Acquire(cfg.Server.HTTPPort)
	if errors.Is(err, singleton.ErrAlreadyRunning) {
		logger.Info("Gateway already running, exiting", "addr", cfg.Server.HTTPPort)
		return
	}
	if err != nil {
		logger.Error("Failed to acquire listen address", "error", err)
		os.Exit(1)
	}

	app, cleanup, err := wire.InitializeAll()
	if err != nil {
		_ = listener.Close()
		logger.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := app.Start(listener); err != nil {
		logger.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// 优雅关闭
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down application...")
	if err := app.Stop(); err != nil {
		logger.Error("Error during application shutdown", "error", err)
	}
	logger.Info("Application stopped")
}
