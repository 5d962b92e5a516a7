package proxy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// FeedbackResult 反馈提交结果
type FeedbackResult struct {
	Ack map[string]any
	// Fallback 后端失败但按 fail-open 策略视为成功
	Fallback bool
	Err      error
	// PriorSubmissions 本次之前同一消息的提交次数
	PriorSubmissions int
}

// FeedbackService 反馈提交
// 不做去重：重复提交照常发送，只在日志中标记
type FeedbackService struct {
	backend  Backend
	policies PolicySource
	journal  trainer.FeedbackJournal
	logger   *slog.Logger
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(b Backend, policies PolicySource, journal trainer.FeedbackJournal) *FeedbackService {
	return &FeedbackService{
		backend:  b,
		policies: policies,
		journal:  journal,
		logger:   log.NewModuleLogger("proxy", "feedback"),
	}
}

// Submit 提交反馈记录，不重试
func (s *FeedbackService) Submit(ctx context.Context, rec trainer.FeedbackRecord) (*FeedbackResult, error) {
	if strings.TrimSpace(rec.Question) == "" || strings.TrimSpace(rec.OriginalAnswer) == "" {
		return nil, trainer.NewValidationError("", "Question and original answer are required")
	}
	if rec.FeedbackType == "" {
		rec.FeedbackType = trainer.FeedbackImprovement
	}
	if rec.FeedbackStatus == "" {
		rec.FeedbackStatus = trainer.FeedbackStatusCompleted
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}

	logger := log.FromContext(ctx, s.logger)

	prior := 0
	if rec.ChatMessageID != "" {
		n, err := s.journal.Count(ctx, rec.ChatMessageID)
		if err != nil {
			logger.Warn("Failed to read feedback journal", "error", err)
		}
		prior = n
		if prior > 0 {
			logger.Warn("Repeated feedback submission",
				"chat_message_id", rec.ChatMessageID,
				"prior_submissions", prior,
			)
		}
	}

	logger.Info("Saving feedback",
		"chat_message_id", rec.ChatMessageID,
		"feedback_type", rec.FeedbackType,
		"has_preferred_answer", rec.PreferredAnswer != nil && *rec.PreferredAnswer != "",
		"tags", len(rec.Tags),
	)
	metrics.RecordFeedback(string(rec.FeedbackType), prior > 0)

	ack, err := s.backend.SubmitFeedback(ctx, rec)
	if err == nil {
		s.record(ctx, rec, trainer.JournalOutcomeSubmitted)
		return &FeedbackResult{Ack: ack, PriorSubmissions: prior}, nil
	}

	if s.policies.Policies().FeedbackSubmit == trainer.FailOpen {
		logger.Warn("Feedback submit failed upstream, reporting success", "error", err)
		metrics.RecordFallback("feedback_submit")
		s.record(ctx, rec, trainer.JournalOutcomeFallback)
		return &FeedbackResult{Fallback: true, Err: err, PriorSubmissions: prior}, nil
	}

	s.record(ctx, rec, trainer.JournalOutcomeFailed)
	return nil, err
}

// History 返回某消息的提交记录
func (s *FeedbackService) History(ctx context.Context, chatMessageID string) ([]trainer.JournalEntry, error) {
	return s.journal.List(ctx, chatMessageID)
}

func (s *FeedbackService) record(ctx context.Context, rec trainer.FeedbackRecord, outcome string) {
	if err := s.journal.Append(ctx, rec, outcome); err != nil {
		s.logger.Warn("Failed to journal feedback submission", "error", err)
	}
}
