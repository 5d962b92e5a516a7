package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/interfaces/http/response"
)

// ChatHandler 问答、反馈与重排序
type ChatHandler struct {
	chat     *proxy.ChatService
	feedback *proxy.FeedbackService
	rerank   *proxy.RerankService
}

// NewChatHandler 创建问答处理器
func NewChatHandler(chat *proxy.ChatService, feedback *proxy.FeedbackService, rerank *proxy.RerankService) *ChatHandler {
	RegisterValidators()
	return &ChatHandler{
		chat:     chat,
		feedback: feedback,
		rerank:   rerank,
	}
}

// ChatRequest 问答请求
type ChatRequest struct {
	Question    string       `json:"question"`
	DocumentIDs []FlexString `json:"documentIds"`
	SessionID   FlexString   `json:"sessionId"`
}

// Ask 针对选中文档提问
// @Summary 问答
// @Tags 问答
// @Accept json
// @Produce json
// @Param body body ChatRequest true "问题、文档 id 和会话 id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 408 {object} response.Response
// @Router /trainer-chat [post]
func (h *ChatHandler) Ask(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ans, err := h.chat.Ask(c.Request.Context(), req.Question, flexStrings(req.DocumentIDs), string(req.SessionID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, answerFields(ans))
}

func answerFields(ans *trainer.ChatAnswer) gin.H {
	sources := ans.Sources
	if sources == nil {
		sources = []trainer.Chunk{}
	}
	fields := gin.H{
		"sessionId": ans.SessionID,
		"answer":    ans.Answer,
		"sources":   sources,
	}
	if ans.MessageID != "" {
		fields["messageId"] = ans.MessageID
	}
	if ans.Matched {
		fields["matched"] = true
	}
	return fields
}

// FeedbackRequest 反馈请求
type FeedbackRequest struct {
	Question        string     `json:"question"`
	PreferredAnswer *string    `json:"preferred_answer"`
	OriginalAnswer  string     `json:"original_answer"`
	Tags            []string   `json:"tags"`
	FeedbackType    string     `json:"feedback_type" binding:"omitempty,oneof=correction improvement"`
	FeedbackStatus  string     `json:"feedback_status"`
	ChatMessageID   FlexString `json:"chat_message_id"`
	DepartmentID    FlexString `json:"department_id"`
}

func (r FeedbackRequest) record() trainer.FeedbackRecord {
	return trainer.FeedbackRecord{
		ChatMessageID:   string(r.ChatMessageID),
		Question:        r.Question,
		OriginalAnswer:  r.OriginalAnswer,
		PreferredAnswer: r.PreferredAnswer,
		Tags:            r.Tags,
		FeedbackType:    trainer.FeedbackType(r.FeedbackType),
		FeedbackStatus:  r.FeedbackStatus,
		DepartmentID:    string(r.DepartmentID),
	}
}

// Feedback 保存评审反馈
// @Summary 保存反馈
// @Description 不去重，同一消息的重复提交会照常转发
// @Tags 问答
// @Accept json
// @Produce json
// @Param body body FeedbackRequest true "反馈记录"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /feedback [post]
func (h *ChatHandler) Feedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.feedback.Submit(c.Request.Context(), req.record())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, feedbackFields(res))
}

func feedbackFields(res *proxy.FeedbackResult) gin.H {
	fields := gin.H{
		"message":          "Feedback saved successfully",
		"priorSubmissions": res.PriorSubmissions,
	}
	if res.Fallback {
		fields["fallback"] = true
		fields["error"] = res.Err.Error()
		return fields
	}
	fields["data"] = res.Ack
	return fields
}

// RerankRequest 重排序请求
type RerankRequest struct {
	Method string          `json:"method" binding:"rerank_method"`
	Weight *float64        `json:"weight"`
	TopK   *int            `json:"topK"`
	Chunks []trainer.Chunk `json:"chunks"`
}

// Rerank 按方法调整片段分数并截断
// @Summary 片段重排序
// @Tags 问答
// @Accept json
// @Produce json
// @Param body body RerankRequest true "方法、权重、topK 和片段"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /rerank [post]
func (h *ChatHandler) Rerank(c *gin.Context) {
	var req RerankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	chunks, err := h.rerank.Rerank(proxy.RerankInput{
		Method: req.Method,
		Weight: req.Weight,
		TopK:   req.TopK,
		Chunks: req.Chunks,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, gin.H{"chunks": chunks})
}
