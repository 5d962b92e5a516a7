package trainer

import (
	"context"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
)

// DocumentGateway 文档能力
type DocumentGateway interface {
	List(ctx context.Context, departmentID string) ([]domain.Document, error)
	Delete(ctx context.Context, documentID, departmentID string) (*proxy.DeleteResult, error)
	Upload(ctx context.Context, departmentID string, file domain.UploadFile) (*domain.UploadResult, error)
}

// ChunkGateway 片段能力
type ChunkGateway interface {
	List(ctx context.Context, documentID string) ([]domain.Chunk, error)
}

// ChatGateway 问答能力
type ChatGateway interface {
	Ask(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error)
}

// FeedbackGateway 反馈能力
type FeedbackGateway interface {
	Submit(ctx context.Context, rec domain.FeedbackRecord) (*proxy.FeedbackResult, error)
}

// EventPusher 状态变化推送（定义在 application 层，由 websocket 实现）
type EventPusher interface {
	PushEvent(ev domain.StateEvent) error
}

// Deps 工作区依赖
type Deps struct {
	Documents DocumentGateway
	Chunks    ChunkGateway
	Chat      ChatGateway
	Feedback  FeedbackGateway
	Events    EventPusher
}

// ProvideDeps 使用代理服务组装工作区依赖
func ProvideDeps(
	docs *proxy.DocumentService,
	chunks *proxy.ChunkService,
	chat *proxy.ChatService,
	feedback *proxy.FeedbackService,
	events EventPusher,
) Deps {
	return Deps{
		Documents: docs,
		Chunks:    chunks,
		Chat:      chat,
		Feedback:  feedback,
		Events:    events,
	}
}
