package trainer

import (
	"context"
	"time"
)

// JournalEntry 一次反馈提交的本地记录
type JournalEntry struct {
	ID            int64
	ChatMessageID string
	FeedbackType  FeedbackType
	DepartmentID  string
	Outcome       string
	Payload       FeedbackRecord
	SubmittedAt   time.Time
}

// 提交结果
const (
	JournalOutcomeSubmitted = "submitted"
	JournalOutcomeFailed    = "failed"
	JournalOutcomeFallback  = "fallback"
)

// FeedbackJournal 反馈提交日志
// 重复提交照常追加，日志只用于让重复可见
type FeedbackJournal interface {
	// Count 返回某消息已记录的提交次数
	Count(ctx context.Context, chatMessageID string) (int, error)
	// Append 追加一条记录
	Append(ctx context.Context, rec FeedbackRecord, outcome string) error
	// List 按时间顺序返回某消息的提交记录
	List(ctx context.Context, chatMessageID string) ([]JournalEntry, error)
}
