package config

import (
	"sync/atomic"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// PolicyStore 可热更新的失败策略
type PolicyStore struct {
	v atomic.Pointer[trainer.Policies]
}

// NewPolicyStore 用配置中的策略初始化
func NewPolicyStore(cfg *Config) *PolicyStore {
	s := &PolicyStore{}
	s.Update(cfg.Policy)
	return s
}

// Policies 返回当前策略
func (s *PolicyStore) Policies() trainer.Policies {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return trainer.DefaultPolicies()
}

// Update 替换策略，非法取值回退到默认值
func (s *PolicyStore) Update(pc PolicyConfig) {
	def := trainer.DefaultPolicies()
	p := trainer.Policies{
		DocumentDelete: trainer.ParsePolicy(pc.DocumentDelete, def.DocumentDelete),
		FeedbackSubmit: trainer.ParsePolicy(pc.FeedbackSubmit, def.FeedbackSubmit),
	}
	s.v.Store(&p)
}
