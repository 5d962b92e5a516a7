package trainer

import (
	"context"
	"time"
)

// Settings 训练器全局设置
type Settings struct {
	ReRanking bool      `json:"reRanking"`
	TopK      int       `json:"topK"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SettingsPatch 部分更新，nil 字段保持不变
type SettingsPatch struct {
	ReRanking *bool `json:"reRanking,omitempty"`
	TopK      *int  `json:"topK,omitempty"`
}

// DefaultSettings 初始设置
func DefaultSettings() Settings {
	return Settings{ReRanking: true, TopK: 6}
}

// Apply 合并部分更新，返回新值
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.ReRanking != nil {
		s.ReRanking = *p.ReRanking
	}
	if p.TopK != nil {
		s.TopK = *p.TopK
	}
	return s
}

// SettingsRepository 设置存储
type SettingsRepository interface {
	// Get 读取当前设置，未保存过时返回默认值
	Get(ctx context.Context) (Settings, error)
	// Update 合并更新；expectedVersion >= 0 时要求与当前版本一致，否则返回 ErrVersionConflict
	Update(ctx context.Context, patch SettingsPatch, expectedVersion int64) (Settings, error)
}

// CredentialStore 凭据存储
type CredentialStore interface {
	Get(ctx context.Context) (*Credential, error)
	Set(ctx context.Context, cred *Credential) error
	Clear(ctx context.Context) error
}
