package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// feedbackJournal 反馈提交日志 SQLite 实现
type feedbackJournal struct {
	db *sql.DB
}

// NewFeedbackJournal 创建反馈提交日志
func NewFeedbackJournal(db *sql.DB) (trainer.FeedbackJournal, error) {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS feedback_submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_message_id TEXT NOT NULL,
		feedback_type TEXT NOT NULL,
		department_id TEXT,
		outcome TEXT NOT NULL,
		payload TEXT NOT NULL,
		submitted_at INTEGER NOT NULL
	);`
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create feedback_submissions table: %w", err)
	}

	createIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_feedback_submissions_message ON feedback_submissions(chat_message_id);`
	if _, err := db.Exec(createIndexSQL); err != nil {
		return nil, fmt.Errorf("failed to create feedback_submissions index: %w", err)
	}

	return &feedbackJournal{db: db}, nil
}

// Count 统计某消息的提交次数
func (j *feedbackJournal) Count(ctx context.Context, chatMessageID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM feedback_submissions WHERE chat_message_id = ?`, chatMessageID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback submissions: %w", err)
	}
	return n, nil
}

// Append 追加提交记录
func (j *feedbackJournal) Append(ctx context.Context, rec trainer.FeedbackRecord, outcome string) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode feedback record: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO feedback_submissions
			(chat_message_id, feedback_type, department_id, outcome, payload, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ChatMessageID, string(rec.FeedbackType), rec.DepartmentID, outcome, string(payload), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to append feedback submission: %w", err)
	}
	return nil
}

// List 返回某消息的提交记录
func (j *feedbackJournal) List(ctx context.Context, chatMessageID string) ([]trainer.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, chat_message_id, feedback_type, department_id, outcome, payload, submitted_at
		FROM feedback_submissions WHERE chat_message_id = ? ORDER BY id ASC`, chatMessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback submissions: %w", err)
	}
	defer rows.Close()

	var entries []trainer.JournalEntry
	for rows.Next() {
		var (
			e           trainer.JournalEntry
			feedbackTyp string
			department  sql.NullString
			payload     string
			submittedAt int64
		)
		if err := rows.Scan(&e.ID, &e.ChatMessageID, &feedbackTyp, &department, &e.Outcome, &payload, &submittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback submission: %w", err)
		}
		e.FeedbackType = trainer.FeedbackType(feedbackTyp)
		e.DepartmentID = department.String
		e.SubmittedAt = time.UnixMilli(submittedAt)
		if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode feedback payload: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
