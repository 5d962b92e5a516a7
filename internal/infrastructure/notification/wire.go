package notification

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/application/trainer"
)

// ProviderSet 通知基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	NewWorkspacePusher,
	// 接口绑定：application.EventPusher -> infrastructure.WorkspacePusher
	wire.Bind(
		new(trainer.EventPusher),
		new(*WorkspacePusher),
	),
)
