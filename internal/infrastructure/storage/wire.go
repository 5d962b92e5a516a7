package storage

import "github.com/google/wire"

// ProviderSet Storage 基础设施层 ProviderSet
var ProviderSet = wire.NewSet(
	ProvideDB,              // 数据库连接
	NewSettingsRepository,  // 训练器设置
	ProvideCredentialStore, // 登录凭据
	NewFeedbackJournal,     // 反馈提交日志
)
