package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/interfaces/http/handler"
	"github.com/ragtrainer/gateway/internal/interfaces/http/middleware"
	"github.com/ragtrainer/gateway/internal/interfaces/mcp"

	_ "github.com/ragtrainer/gateway/docs" // Swagger docs
)

// HTTPServer HTTP 服务器
type HTTPServer struct {
	router   *gin.Engine
	httpPort string
	server   *http.Server
	logger   *slog.Logger
}

// NewServer 创建 HTTP 服务器
func NewServer(
	cfg *config.ServerConfig,
	authHandler *handler.AuthHandler,
	documentHandler *handler.DocumentHandler,
	chatHandler *handler.ChatHandler,
	settingsHandler *handler.SettingsHandler,
	workspaceHandler *handler.WorkspaceHandler,
	mcpServer *mcp.MCPServer,
) *HTTPServer {
	if !log.IsDebugMode() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	logger := log.NewModuleLogger("http", "server")

	// 注册路由
	api := router.Group("/api/v1", middleware.EnsureUTF8Body())
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/session", authHandler.CreateSession)

		// 部门、文档与片段
		api.GET("/departments", documentHandler.Departments)
		api.GET("/documents", documentHandler.List)
		api.DELETE("/documents", documentHandler.Delete)
		api.POST("/upload", documentHandler.Upload)
		api.GET("/chunks", documentHandler.Chunks)

		// 问答与评审
		api.POST("/trainer-chat", chatHandler.Ask)
		api.POST("/feedback", chatHandler.Feedback)
		api.POST("/rerank", chatHandler.Rerank)

		api.GET("/settings", settingsHandler.Get)
		api.POST("/settings", settingsHandler.Update)

		// 工作区相关路由
		workspaces := api.Group("/workspaces")
		{
			workspaces.POST("", workspaceHandler.Create)
			workspaces.GET("/:id", workspaceHandler.Get)
			workspaces.DELETE("/:id", workspaceHandler.Close)
			workspaces.PUT("/:id/department", workspaceHandler.SelectDepartment)
			workspaces.POST("/:id/documents/refresh", workspaceHandler.RefreshDocuments)
			workspaces.POST("/:id/documents", workspaceHandler.UploadDocument)
			workspaces.DELETE("/:id/documents/:docId", workspaceHandler.DeleteDocument)
			workspaces.PUT("/:id/document", workspaceHandler.SelectDocument)
			workspaces.GET("/:id/chunks/:docId", workspaceHandler.Chunks)
			workspaces.PUT("/:id/chat-documents", workspaceHandler.SetChatDocuments)
			workspaces.POST("/:id/messages", workspaceHandler.SendMessage)
			workspaces.PATCH("/:id/messages/:msgId", workspaceHandler.Annotate)
			workspaces.POST("/:id/messages/:msgId/feedback", workspaceHandler.SaveFeedback)
			workspaces.PUT("/:id/rerank", workspaceHandler.SetRerank)
			workspaces.GET("/:id/events", workspaceHandler.Events)
		}
	}

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// MCP SSE 端点
	if mcpServer != nil {
		router.Any("/mcp/sse", gin.WrapH(mcpServer.GetHandler()))
	}

	return &HTTPServer{
		router:   router,
		httpPort: cfg.HTTPPort,
		logger:   logger,
	}
}

// Handler 返回路由，用于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 启动服务器
func (s *HTTPServer) Start() error {
	s.server = &http.Server{
		Addr:              s.httpPort,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"port", s.httpPort,
	)

	return s.server.ListenAndServe()
}

// Serve 使用已有的监听器启动服务器
func (s *HTTPServer) Serve(ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("HTTP server starting",
		"addr", ln.Addr().String(),
	)

	return s.server.Serve(ln)
}

// Shutdown 优雅关闭
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Stop 停止服务器
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}
