package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	_ "modernc.org/sqlite"
)

// OpenDB 打开数据库连接，必要时创建目录
func OpenDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// 多个 handler 并发读写：WAL、忙等待、写事务立即加锁
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ProvideDB 按配置打开数据库，返回关闭函数
func ProvideDB(cfg *config.Config) (*sql.DB, func(), error) {
	path := cfg.DatabasePath()
	db, err := OpenDB(path)
	if err != nil {
		return nil, nil, err
	}
	log.NewModuleLogger("storage", "db").Info("Database opened", "path", path)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.NewModuleLogger("storage", "db").Warn("Failed to close database", "error", err)
		}
	}
	return db, cleanup, nil
}
