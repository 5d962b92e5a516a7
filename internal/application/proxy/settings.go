package proxy

import (
	"context"
	"log/slog"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// NoVersionCheck 不校验版本，后写覆盖
const NoVersionCheck int64 = -1

// SettingsService 训练器设置
type SettingsService struct {
	repo   trainer.SettingsRepository
	logger *slog.Logger
}

// NewSettingsService 创建设置服务
func NewSettingsService(repo trainer.SettingsRepository) *SettingsService {
	return &SettingsService{
		repo:   repo,
		logger: log.NewModuleLogger("proxy", "settings"),
	}
}

// Get 读取设置
func (s *SettingsService) Get(ctx context.Context) (trainer.Settings, error) {
	return s.repo.Get(ctx)
}

// Update 部分更新设置
// expectedVersion 为 NoVersionCheck 时不做冲突检查
func (s *SettingsService) Update(ctx context.Context, patch trainer.SettingsPatch, expectedVersion int64) (trainer.Settings, error) {
	if patch.TopK != nil && *patch.TopK <= 0 {
		return trainer.Settings{}, trainer.NewValidationError("topK", "topK must be a positive integer")
	}

	next, err := s.repo.Update(ctx, patch, expectedVersion)
	if err != nil {
		return next, err
	}
	s.logger.Info("Settings updated",
		"re_ranking", next.ReRanking,
		"top_k", next.TopK,
		"version", next.Version,
	)
	return next, nil
}
