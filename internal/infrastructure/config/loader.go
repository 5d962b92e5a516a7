package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath 配置文件路径
	EnvConfigPath = "TRAINER_CONFIG"
	// EnvHTTPPort HTTP 监听端口
	EnvHTTPPort = "TRAINER_HTTP_PORT"
	// EnvBackendURL 后端服务地址
	EnvBackendURL = "TRAINER_BACKEND_URL"
	// EnvDBPath 数据库路径
	EnvDBPath = "TRAINER_DB_PATH"
	// EnvDeletePolicy 文档删除失败策略
	EnvDeletePolicy = "TRAINER_DELETE_POLICY"
	// EnvFeedbackPolicy 反馈提交失败策略
	EnvFeedbackPolicy = "TRAINER_FEEDBACK_POLICY"

	defaultConfigFile = "config.yaml"
)

// ConfigPath 返回配置文件路径
// 优先读取 TRAINER_CONFIG，默认 <数据目录>/config.yaml
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DataPath(defaultConfigFile)
}

// Load 从默认路径加载配置
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile 加载配置文件并应用环境变量覆盖
// 文件不存在时使用默认值
func LoadFile(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.path = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvHTTPPort); v != "" {
		cfg.Server.HTTPPort = v
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv(EnvDeletePolicy); v != "" {
		cfg.Policy.DocumentDelete = v
	}
	if v := os.Getenv(EnvFeedbackPolicy); v != "" {
		cfg.Policy.FeedbackSubmit = v
	}
}

// Validate 检查配置合法性
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	for name, p := range map[string]string{
		"policy.document_delete": c.Policy.DocumentDelete,
		"policy.feedback_submit": c.Policy.FeedbackSubmit,
	} {
		if p != "fail-open" && p != "fail-closed" {
			return fmt.Errorf("%s must be fail-open or fail-closed, got %q", name, p)
		}
	}
	switch c.Credentials.Store {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("credentials.store must be sqlite or memory, got %q", c.Credentials.Store)
	}
	return nil
}

// DatabasePath 返回数据库文件路径
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return DataPath("trainer.db")
}
