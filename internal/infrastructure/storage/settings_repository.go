package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// settingsRepository 设置 SQLite 仓储实现
// 单行表，version 每次写入递增
type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository 创建设置仓储
func NewSettingsRepository(db *sql.DB) (trainer.SettingsRepository, error) {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS trainer_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		re_ranking INTEGER NOT NULL,
		top_k INTEGER NOT NULL,
		version INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create trainer_settings table: %w", err)
	}
	return &settingsRepository{db: db}, nil
}

// Get 读取当前设置
func (r *settingsRepository) Get(ctx context.Context) (trainer.Settings, error) {
	return r.get(ctx, r.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *settingsRepository) get(ctx context.Context, q queryer) (trainer.Settings, error) {
	var (
		reRanking int
		s         trainer.Settings
		updatedAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT re_ranking, top_k, version, updated_at FROM trainer_settings WHERE id = 1`,
	).Scan(&reRanking, &s.TopK, &s.Version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return trainer.DefaultSettings(), nil
	}
	if err != nil {
		return trainer.Settings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	s.ReRanking = reRanking != 0
	s.UpdatedAt = time.UnixMilli(updatedAt)
	return s, nil
}

// Update 合并更新
// expectedVersion < 0 表示不做版本检查（后写覆盖）
func (r *settingsRepository) Update(ctx context.Context, patch trainer.SettingsPatch, expectedVersion int64) (trainer.Settings, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return trainer.Settings{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := r.get(ctx, tx)
	if err != nil {
		return trainer.Settings{}, err
	}
	if expectedVersion >= 0 && expectedVersion != current.Version {
		return current, trainer.ErrVersionConflict
	}

	next := current.Apply(patch)
	next.Version = current.Version + 1
	next.UpdatedAt = time.Now()

	reRanking := 0
	if next.ReRanking {
		reRanking = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO trainer_settings (id, re_ranking, top_k, version, updated_at)
		VALUES (1, ?, ?, ?, ?)`,
		reRanking, next.TopK, next.Version, next.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return trainer.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return trainer.Settings{}, fmt.Errorf("failed to commit settings: %w", err)
	}
	next.UpdatedAt = time.UnixMilli(next.UpdatedAt.UnixMilli())
	return next, nil
}
