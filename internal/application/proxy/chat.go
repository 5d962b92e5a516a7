package proxy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// ChatService 问答
type ChatService struct {
	backend Backend
	tokens  TokenCounter
	logger  *slog.Logger
}

// NewChatService 创建问答服务
func NewChatService(b Backend, tokens TokenCounter) *ChatService {
	return &ChatService{
		backend: b,
		tokens:  tokens,
		logger:  log.NewModuleLogger("proxy", "chat"),
	}
}

// Ask 针对选中的文档提问
// sessionID 为空时后端使用占位会话
func (s *ChatService) Ask(ctx context.Context, question string, documentIDs []string, sessionID string) (*trainer.ChatAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, trainer.NewValidationError("question", "Question is required")
	}
	if len(documentIDs) == 0 {
		return nil, trainer.NewValidationError("documentIds", "At least one document must be selected")
	}

	if sessionID != "" {
		ctx = log.WithSessionID(ctx, sessionID)
	}
	log.FromContext(ctx, s.logger).Debug("Asking backend",
		"documents", len(documentIDs),
	)

	ans, err := s.backend.Ask(ctx, backend.ChatRequest{
		Question:    question,
		DocumentIDs: documentIDs,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, err
	}
	s.tokens.Annotate(ans.Sources)
	return ans, nil
}
