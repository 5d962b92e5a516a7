package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// DefaultSessionID 会话未分配时使用的占位 id
const DefaultSessionID = 1

// ChatRequest 问答请求
type ChatRequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"documentIds"`
	SessionID   string   `json:"sessionId"`
}

type chatPayload struct {
	Question    string `json:"question"`
	DocumentIDs []int  `json:"documentIds"`
	SessionID   any    `json:"sessionId"`
}

type chatResponseDTO struct {
	SessionID any         `json:"session_id"`
	Answer    string      `json:"answer"`
	Sources   []sourceDTO `json:"sources"`
	MessageID any         `json:"messageId"`
	Matched   bool        `json:"matched"`
}

// Ask 调用 POST /chat
// 文档 id 以整数发送，无法解析的 id 会被拒绝
func (c *Client) Ask(ctx context.Context, in ChatRequest) (*trainer.ChatAnswer, error) {
	ids := make([]int, 0, len(in.DocumentIDs))
	for _, s := range in.DocumentIDs {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, trainer.NewValidationError("documentIds", "document id "+strconv.Quote(s)+" is not numeric")
		}
		ids = append(ids, n)
	}

	var session any = DefaultSessionID
	if in.SessionID != "" {
		if n, err := strconv.Atoi(in.SessionID); err == nil {
			session = n
		} else {
			session = in.SessionID
		}
	}

	r, err := jsonRequest(OpChat, c.timeouts.Chat, http.MethodPost, "/chat", chatPayload{
		Question:    in.Question,
		DocumentIDs: ids,
		SessionID:   session,
	})
	if err != nil {
		return nil, err
	}

	var dto chatResponseDTO
	if err := c.do(ctx, r, &dto); err != nil {
		return nil, err
	}

	answer := &trainer.ChatAnswer{
		SessionID: idString(dto.SessionID),
		Answer:    dto.Answer,
		MessageID: idString(dto.MessageID),
		Matched:   dto.Matched,
		Sources:   make([]trainer.Chunk, 0, len(dto.Sources)),
	}
	for _, s := range dto.Sources {
		answer.Sources = append(answer.Sources, s.toDomain())
	}
	return answer, nil
}
