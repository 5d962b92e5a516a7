package proxy

import (
	"context"
	"log/slog"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// DepartmentList 部门列表结果
// Fallback 为 true 时 Departments 来自本地配置，Err 为后端错误
type DepartmentList struct {
	Departments []trainer.Department
	Fallback    bool
	Err         error
}

// DepartmentService 部门列表，后端失败时总是返回备用列表
type DepartmentService struct {
	backend  Backend
	fallback []trainer.Department
	logger   *slog.Logger
}

// NewDepartmentService 创建部门服务
func NewDepartmentService(b Backend, cfg *config.DepartmentsConfig) *DepartmentService {
	fallback := make([]trainer.Department, 0, len(cfg.Fallback))
	for _, d := range cfg.Fallback {
		fallback = append(fallback, trainer.Department{ID: d.ID, Name: d.Name})
	}
	return &DepartmentService{
		backend:  b,
		fallback: fallback,
		logger:   log.NewModuleLogger("proxy", "departments"),
	}
}

// List 获取部门列表
func (s *DepartmentService) List(ctx context.Context) DepartmentList {
	deps, err := s.backend.ListDepartments(ctx)
	if err == nil {
		return DepartmentList{Departments: deps}
	}

	s.logger.Warn("Departments unavailable, serving fallback list", "error", err)
	metrics.RecordFallback("departments")

	out := make([]trainer.Department, len(s.fallback))
	copy(out, s.fallback)
	return DepartmentList{Departments: out, Fallback: true, Err: err}
}
