package trainer

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
	applog "github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// DefaultIdleTimeout 空闲工作区的回收时间
const DefaultIdleTimeout = 2 * time.Hour

// Registry 管理所有打开的工作区
type Registry struct {
	deps        Deps
	logger      *slog.Logger
	now         func() time.Time
	idleTimeout time.Duration

	mu         sync.RWMutex
	workspaces map[string]*Workspace

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRegistry 创建工作区注册表
func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:        deps,
		logger:      applog.NewModuleLogger("trainer", "registry"),
		now:         time.Now,
		idleTimeout: DefaultIdleTimeout,
		workspaces:  make(map[string]*Workspace),
		stopCh:      make(chan struct{}),
	}
}

// Create 打开一个新的工作区
func (r *Registry) Create() *Workspace {
	ws := newWorkspace(uuid.NewString(), r.deps, r.now)

	r.mu.Lock()
	r.workspaces[ws.id] = ws
	count := len(r.workspaces)
	r.mu.Unlock()

	metrics.WorkspaceOpened()
	r.logger.Info("Workspace opened",
		"workspace_id", ws.id,
		"open_workspaces", count,
	)
	return ws
}

// Get 按 id 获取工作区
func (r *Registry) Get(id string) (*Workspace, error) {
	r.mu.RLock()
	ws, ok := r.workspaces[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}
	return ws, nil
}

// Close 关闭工作区并通知订阅者
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	if ok {
		delete(r.workspaces, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, id)
	}

	metrics.WorkspaceClosed()
	ws.publish(domain.EventWorkspaceClosed, id)
	r.logger.Info("Workspace closed", "workspace_id", id)
	return nil
}

// List 返回所有工作区 id，按创建时间排序
func (r *Registry) List() []string {
	r.mu.RLock()
	all := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		all = append(all, ws)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].createdAt.Before(all[j].createdAt)
	})
	ids := make([]string, len(all))
	for i, ws := range all {
		ids[i] = ws.id
	}
	return ids
}

// Count 当前打开的工作区数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}

// Sweep 关闭空闲超过 idle 的工作区，返回关闭数量
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, ws := range r.workspaces {
		if ws.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range stale {
		if err := r.Close(id); err == nil {
			closed++
		}
	}
	if closed > 0 {
		r.logger.Info("Idle workspaces closed", "count", closed)
	}
	return closed
}

// Start 启动空闲回收
func (r *Registry) Start() {
	interval := r.idleTimeout / 4
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep(r.idleTimeout)
			case <-r.stopCh:
				return
			}
		}
	}()
}

// Stop 停止空闲回收，可重复调用
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}
