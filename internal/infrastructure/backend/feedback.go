package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// feedbackPayload 后端反馈接口的请求体
type feedbackPayload struct {
	ChatMessageID string   `json:"chat_message_id"`
	FeedbackType  string   `json:"feedback_type"`
	NewAnswer     *string  `json:"newAnswer"`
	Tags          []string `json:"tags"`
	Question      string   `json:"question"`
	DepartmentID  string   `json:"department_id,omitempty"`
}

// SubmitFeedback 调用 POST /feedback/update
func (c *Client) SubmitFeedback(ctx context.Context, rec trainer.FeedbackRecord) (map[string]any, error) {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	r, err := jsonRequest(OpFeedback, c.timeouts.Feedback, http.MethodPost, "/feedback/update", feedbackPayload{
		ChatMessageID: rec.ChatMessageID,
		FeedbackType:  string(rec.FeedbackType),
		NewAnswer:     rec.PreferredAnswer,
		Tags:          tags,
		Question:      rec.Question,
		DepartmentID:  rec.DepartmentID,
	})
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}
	ack := map[string]any{}
	_ = json.Unmarshal(raw, &ack)
	return ack, nil
}
