package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	appTrainer "github.com/ragtrainer/gateway/internal/application/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// Version 对外报告的服务版本
const Version = "0.1.0"

// MCPServer MCP 服务器
type MCPServer struct {
	server   *mcp.Server
	handler  http.Handler
	rerank   *proxy.RerankService
	settings *proxy.SettingsService
	feedback *proxy.FeedbackService
	registry *appTrainer.Registry
	logger   *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(
	rerank *proxy.RerankService,
	settings *proxy.SettingsService,
	feedback *proxy.FeedbackService,
	registry *appTrainer.Registry,
) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "trainer-gateway",
			Version: Version,
		},
		nil, // 使用默认能力
	)

	s := &MCPServer{
		server:   server,
		rerank:   rerank,
		settings: settings,
		feedback: feedback,
		registry: registry,
		logger:   log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name: "rerank_chunks",
		Description: `Re-score and reorder retrieved chunks, then keep the top K.
Parameters:
- method (string, optional): "none", "cosine" or "llm-re-rank", defaults to "none"
- weight (number, optional): boost weight, defaults to 0.5
- top_k (int, optional): number of chunks to keep, defaults to 5
- chunks (array, required): chunks with id, content and score

Returns: reordered chunks with adjusted scores.`,
	}, s.rerankChunksTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_rerank_settings",
		Description: "Get the rerank settings in effect. Parameters: workspace_id (string, optional) - review workspace id; without it the defaults are returned. Returns: method, top_k, weight and the global re-ranking switch.",
	}, s.getRerankSettingsTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_feedback_history",
		Description: "List feedback submissions recorded for a chat message. Parameters: chat_message_id (string, required). Returns: submissions with type, outcome and time.",
	}, s.getFeedbackHistoryTool)

	// 每个请求返回同一个服务器实例
	s.handler = mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	return s
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}
