package config

import (
	"time"
)

// Config 应用配置
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Backend     BackendConfig     `yaml:"backend"`
	Database    DatabaseConfig    `yaml:"database"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Policy      PolicyConfig      `yaml:"policy"`
	Departments DepartmentsConfig `yaml:"departments"`
	Credentials CredentialsConfig `yaml:"credentials"`

	// path 实际加载的配置文件路径，未找到文件时为空
	path string
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"`
}

// BackendConfig 后端服务配置
type BackendConfig struct {
	BaseURL  string         `yaml:"base_url"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// TimeoutsConfig 各后端操作的超时时间
type TimeoutsConfig struct {
	Login       time.Duration `yaml:"login"`
	Session     time.Duration `yaml:"session"`
	Departments time.Duration `yaml:"departments"`
	Documents   time.Duration `yaml:"documents"`
	Chunks      time.Duration `yaml:"chunks"`
	Chat        time.Duration `yaml:"chat"`
	Upload      time.Duration `yaml:"upload"`
	Delete      time.Duration `yaml:"delete"`
	Feedback    time.Duration `yaml:"feedback"`
}

// DatabaseConfig 数据库配置
// Path 为空时使用数据目录下的 trainer.db
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WebSocketConfig WebSocket 配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
}

// PolicyConfig 后端失败处理策略：fail-open 或 fail-closed
type PolicyConfig struct {
	DocumentDelete string `yaml:"document_delete"`
	FeedbackSubmit string `yaml:"feedback_submit"`
}

// DepartmentsConfig 部门列表配置
type DepartmentsConfig struct {
	// Fallback 后端不可用时返回的部门列表
	Fallback []DepartmentEntry `yaml:"fallback"`
}

// DepartmentEntry 部门条目
type DepartmentEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// CredentialsConfig 凭据存储配置
type CredentialsConfig struct {
	// Store 存储方式：sqlite 或 memory
	Store string `yaml:"store"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19980",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000",
			Timeouts: TimeoutsConfig{
				Login:       10 * time.Second,
				Session:     10 * time.Second,
				Departments: 5 * time.Second,
				Documents:   5 * time.Second,
				Chunks:      5 * time.Second,
				Chat:        30 * time.Second,
				Upload:      30 * time.Second,
				Delete:      30 * time.Second,
				Feedback:    30 * time.Second,
			},
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		Policy: PolicyConfig{
			DocumentDelete: "fail-open",
			FeedbackSubmit: "fail-closed",
		},
		Departments: DepartmentsConfig{
			Fallback: []DepartmentEntry{
				{ID: "policy", Name: "Policy"},
				{ID: "hr", Name: "HR"},
				{ID: "finance", Name: "Finance"},
				{ID: "engineering", Name: "Engineering"},
				{ID: "marketing", Name: "Marketing"},
				{ID: "legal", Name: "Legal"},
			},
		},
		Credentials: CredentialsConfig{
			Store: "sqlite",
		},
	}
}

// Path 返回加载的配置文件路径
func (c *Config) Path() string {
	return c.path
}

// NewServerConfig 创建服务器配置
func NewServerConfig(cfg *Config) *ServerConfig {
	return &cfg.Server
}

// NewBackendConfig 创建后端配置
func NewBackendConfig(cfg *Config) *BackendConfig {
	return &cfg.Backend
}

// NewWebSocketConfig 创建 WebSocket 配置
func NewWebSocketConfig(cfg *Config) *WebSocketConfig {
	return &cfg.WebSocket
}

// NewDepartmentsConfig 创建部门配置
func NewDepartmentsConfig(cfg *Config) *DepartmentsConfig {
	return &cfg.Departments
}

// NewCredentialsConfig 创建凭据配置
func NewCredentialsConfig(cfg *Config) *CredentialsConfig {
	return &cfg.Credentials
}
