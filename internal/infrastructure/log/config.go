package log

import (
	"os"
	"strconv"
	"strings"
)

// Config 日志配置
type Config struct {
	// Level 日志级别：debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// Format 日志格式：console, json
	Format string `json:"format" yaml:"format"`

	// Output 输出目标：stdout, stderr, file:/path/to/log
	Output string `json:"output" yaml:"output"`

	// AddSource 是否添加源文件信息
	AddSource bool `json:"add_source" yaml:"add_source"`
}

// NewConfigFromEnv 从环境变量创建配置
// ENV=development 时强制 debug 级别和控制台格式
func NewConfigFromEnv() *Config {
	cfg := &Config{
		Level:     envOr("LOG_LEVEL", "info"),
		Format:    envOr("LOG_FORMAT", "console"),
		Output:    envOr("LOG_OUTPUT", "stdout"),
		AddSource: envBool("LOG_ADD_SOURCE", false),
	}

	if strings.EqualFold(envOr("ENV", "production"), "development") {
		cfg.Level = "debug"
		cfg.Format = "console"
		cfg.AddSource = true
	}

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
