package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// EnvDataDir 数据目录环境变量名
	EnvDataDir = "TRAINER_DATA_DIR"
	// DefaultDataDirName 默认数据目录名
	DefaultDataDirName = ".ragtrainer"
)

var (
	dataDirMu   sync.Mutex
	dataDirPath string
)

// GetDataDir 返回数据根目录，首次调用后缓存
// TRAINER_DATA_DIR 支持 ~ 开头的路径，默认 ~/.ragtrainer
func GetDataDir() string {
	dataDirMu.Lock()
	defer dataDirMu.Unlock()
	if dataDirPath == "" {
		dataDirPath = resolveDataDir(os.Getenv(EnvDataDir))
	}
	return dataDirPath
}

// DataPath 拼接数据目录下的文件路径
func DataPath(elem ...string) string {
	return filepath.Join(append([]string{GetDataDir()}, elem...)...)
}

// ResetDataDir 清除缓存（测试用）
func ResetDataDir() {
	dataDirMu.Lock()
	dataDirPath = ""
	dataDirMu.Unlock()
}

func resolveDataDir(env string) string {
	home, err := os.UserHomeDir()
	switch {
	case env == "":
		if err != nil {
			return DefaultDataDirName
		}
		return filepath.Join(home, DefaultDataDirName)
	case env == "~" && err == nil:
		return home
	case strings.HasPrefix(env, "~/") && err == nil:
		return filepath.Join(home, env[2:])
	default:
		return filepath.Clean(env)
	}
}
