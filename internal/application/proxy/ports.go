package proxy

import (
	"context"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
)

// Backend 外部后端能力（由 backend.Client 实现）
type Backend interface {
	Login(ctx context.Context, in backend.LoginRequest) (*backend.LoginResponse, error)
	CreateSession(ctx context.Context, userID any, authorization string) (map[string]any, error)
	ListDepartments(ctx context.Context) ([]trainer.Department, error)
	ListDocuments(ctx context.Context, departmentID string) ([]trainer.Document, error)
	DeleteDocument(ctx context.Context, documentID string) (map[string]any, error)
	UploadDocument(ctx context.Context, departmentID string, file trainer.UploadFile) (*trainer.UploadResult, error)
	ListChunks(ctx context.Context, documentID string) ([]trainer.Chunk, error)
	Ask(ctx context.Context, in backend.ChatRequest) (*trainer.ChatAnswer, error)
	SubmitFeedback(ctx context.Context, rec trainer.FeedbackRecord) (map[string]any, error)
}

// PolicySource 提供当前的失败策略，支持热更新
type PolicySource interface {
	Policies() trainer.Policies
}

// TokenCounter 为片段填充 token 数
type TokenCounter interface {
	Annotate(chunks []trainer.Chunk)
}

// 编译时检查接口实现
var _ Backend = (*backend.Client)(nil)
