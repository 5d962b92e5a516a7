package proxy

import (
	"github.com/google/wire"

	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/tokenizer"
)

// ProviderSet 代理服务 ProviderSet
var ProviderSet = wire.NewSet(
	NewAuthService,
	NewSessionService,
	NewDepartmentService,
	NewDocumentService,
	NewChunkService,
	NewChatService,
	NewFeedbackService,
	NewRerankService,
	NewSettingsService,
	wire.Bind(new(Backend), new(*backend.Client)),
	wire.Bind(new(PolicySource), new(*config.PolicyStore)),
	wire.Bind(new(TokenCounter), new(*tokenizer.Counter)),
)
