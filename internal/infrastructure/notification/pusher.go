package notification

import (
	"github.com/ragtrainer/gateway/internal/application/trainer"
	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/websocket"
)

// WorkspacePusher 通过 WebSocket 推送工作区状态变化
type WorkspacePusher struct {
	hub *websocket.Hub
}

// NewWorkspacePusher 创建推送器
func NewWorkspacePusher(hub *websocket.Hub) *WorkspacePusher {
	return &WorkspacePusher{hub: hub}
}

// PushEvent 推送到订阅该工作区的连接
func (p *WorkspacePusher) PushEvent(ev domain.StateEvent) error {
	return p.hub.BroadcastToWorkspace(ev.WorkspaceID, ev)
}

// 编译时检查接口实现
var _ trainer.EventPusher = (*WorkspacePusher)(nil)
