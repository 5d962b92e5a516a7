package proxy

import (
	"context"
	"log/slog"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// SessionService 会话创建
type SessionService struct {
	backend Backend
	auth    *AuthService
	logger  *slog.Logger
}

// NewSessionService 创建会话服务
func NewSessionService(b Backend, auth *AuthService) *SessionService {
	return &SessionService{
		backend: b,
		auth:    auth,
		logger:  log.NewModuleLogger("proxy", "session"),
	}
}

// Create 为用户创建会话
// authorization 为空时使用保存的凭据
func (s *SessionService) Create(ctx context.Context, userID any, authorization string) (map[string]any, error) {
	if isBlank(userID) {
		return nil, trainer.NewValidationError("userId", "User ID is required")
	}

	ctx = log.WithUserID(ctx, stringify(userID))
	logger := log.FromContext(ctx, s.logger)

	if authorization == "" {
		cred, err := s.auth.Current(ctx)
		if err != nil {
			logger.Warn("Failed to read stored credentials", "error", err)
		}
		authorization = cred.Bearer()
	}

	logger.Info("Creating chat session")

	data, err := s.backend.CreateSession(ctx, userID, authorization)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}
