package proxy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// ChunkService 文档片段
type ChunkService struct {
	backend Backend
	tokens  TokenCounter
	logger  *slog.Logger
}

// NewChunkService 创建片段服务
func NewChunkService(b Backend, tokens TokenCounter) *ChunkService {
	return &ChunkService{
		backend: b,
		tokens:  tokens,
		logger:  log.NewModuleLogger("proxy", "chunks"),
	}
}

// List 列出文档的片段并计算 token 数
func (s *ChunkService) List(ctx context.Context, documentID string) ([]trainer.Chunk, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, trainer.NewValidationError("documentId", "Document ID is required")
	}

	chunks, err := s.backend.ListChunks(ctx, documentID)
	if err != nil {
		s.logger.Warn("Failed to fetch chunks", "document_id", documentID, "error", err)
		return nil, err
	}
	s.tokens.Annotate(chunks)
	return chunks, nil
}
