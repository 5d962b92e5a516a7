package trainer

// FeedbackType 反馈类型
type FeedbackType string

const (
	FeedbackCorrection  FeedbackType = "correction"
	FeedbackImprovement FeedbackType = "improvement"
)

// FeedbackStatusCompleted 提交时的固定状态
const FeedbackStatusCompleted = "completed"

// FeedbackRecord 提交给反馈服务的评审记录
type FeedbackRecord struct {
	ChatMessageID   string       `json:"chat_message_id"`
	Question        string       `json:"question"`
	OriginalAnswer  string       `json:"original_answer"`
	PreferredAnswer *string      `json:"preferred_answer"`
	Tags            []string     `json:"tags"`
	FeedbackType    FeedbackType `json:"feedback_type"`
	FeedbackStatus  string       `json:"feedback_status"`
	DepartmentID    string       `json:"department_id,omitempty"`
}

// Reconcile 根据消息列表为指定助手消息生成反馈记录
// 问题取自该消息之前最近的一条用户消息
func Reconcile(messages []Message, messageID string) (*FeedbackRecord, error) {
	idx := -1
	for i := range messages {
		if messages[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMessageNotFound
	}

	msg := messages[idx]
	if msg.Role != RoleAssistant {
		return nil, ErrInvalidRole
	}

	question := ""
	for i := idx - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			question = messages[i].Content
			break
		}
	}
	if question == "" {
		return nil, ErrMissingQuestion
	}

	feedbackType := FeedbackImprovement
	if msg.Quality == QualityBad {
		feedbackType = FeedbackCorrection
	}

	var preferred *string
	if msg.Preferred != nil {
		p := *msg.Preferred
		preferred = &p
	}

	tags := make([]string, len(msg.Tags))
	copy(tags, msg.Tags)

	return &FeedbackRecord{
		ChatMessageID:   msg.ID,
		Question:        question,
		OriginalAnswer:  msg.Content,
		PreferredAnswer: preferred,
		Tags:            tags,
		FeedbackType:    feedbackType,
		FeedbackStatus:  FeedbackStatusCompleted,
	}, nil
}
