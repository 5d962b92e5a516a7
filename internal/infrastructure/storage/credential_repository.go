package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
)

// credentialRepository 凭据 SQLite 存储，只保存最近一次登录
type credentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository 创建 SQLite 凭据存储
func NewCredentialRepository(db *sql.DB) (trainer.CredentialStore, error) {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		user_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT,
		token_type TEXT,
		expires_at INTEGER,
		user_json TEXT,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create credentials table: %w", err)
	}
	return &credentialRepository{db: db}, nil
}

// Get 读取凭据，不存在时返回 nil
func (r *credentialRepository) Get(ctx context.Context) (*trainer.Credential, error) {
	var (
		c         trainer.Credential
		refresh   sql.NullString
		tokenType sql.NullString
		expiresAt sql.NullInt64
		userJSON  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, access_token, refresh_token, token_type, expires_at, user_json
		FROM credentials WHERE id = 1`,
	).Scan(&c.UserID, &c.AccessToken, &refresh, &tokenType, &expiresAt, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}

	c.RefreshToken = refresh.String
	c.TokenType = tokenType.String
	if expiresAt.Valid && expiresAt.Int64 > 0 {
		c.ExpiresAt = time.UnixMilli(expiresAt.Int64)
	}
	if userJSON.Valid && userJSON.String != "" {
		if err := json.Unmarshal([]byte(userJSON.String), &c.User); err != nil {
			return nil, fmt.Errorf("failed to decode stored user: %w", err)
		}
	}
	return &c, nil
}

// Set 保存凭据，覆盖之前的记录
func (r *credentialRepository) Set(ctx context.Context, c *trainer.Credential) error {
	if c == nil {
		return r.Clear(ctx)
	}
	var userJSON []byte
	if c.User != nil {
		var err error
		if userJSON, err = json.Marshal(c.User); err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
	}
	var expiresAt sql.NullInt64
	if !c.ExpiresAt.IsZero() {
		expiresAt = sql.NullInt64{Int64: c.ExpiresAt.UnixMilli(), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO credentials
			(id, user_id, access_token, refresh_token, token_type, expires_at, user_json, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		c.UserID, c.AccessToken, c.RefreshToken, c.TokenType, expiresAt, string(userJSON), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

// Clear 删除凭据
func (r *credentialRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// MemoryCredentialStore 进程内凭据存储，重启后丢失
type MemoryCredentialStore struct {
	mu   sync.RWMutex
	cred *trainer.Credential
}

// NewMemoryCredentialStore 创建内存凭据存储
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Get 读取凭据副本
func (s *MemoryCredentialStore) Get(ctx context.Context) (*trainer.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

// Set 保存凭据副本
func (s *MemoryCredentialStore) Set(ctx context.Context, c *trainer.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.cred = nil
		return nil
	}
	cp := *c
	s.cred = &cp
	return nil
}

// Clear 删除凭据
func (s *MemoryCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.mu.Unlock()
	return nil
}

var _ trainer.CredentialStore = (*MemoryCredentialStore)(nil)

// ProvideCredentialStore 按配置选择凭据存储
func ProvideCredentialStore(cfg *config.CredentialsConfig, db *sql.DB) (trainer.CredentialStore, error) {
	if cfg.Store == "memory" {
		return NewMemoryCredentialStore(), nil
	}
	return NewCredentialRepository(db)
}
