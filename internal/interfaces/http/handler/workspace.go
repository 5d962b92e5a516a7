package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appTrainer "github.com/ragtrainer/gateway/internal/application/trainer"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/websocket"
	"github.com/ragtrainer/gateway/internal/interfaces/http/response"
)

// WorkspaceHandler 评审工作区
// 每个工作区对应一个评审页面，状态保存在内存中
type WorkspaceHandler struct {
	registry *appTrainer.Registry
	hub      *websocket.Hub
}

// NewWorkspaceHandler 创建工作区处理器
func NewWorkspaceHandler(registry *appTrainer.Registry, hub *websocket.Hub) *WorkspaceHandler {
	RegisterValidators()
	return &WorkspaceHandler{
		registry: registry,
		hub:      hub,
	}
}

// workspace 取路径中的工作区，不存在时写入 404
func (h *WorkspaceHandler) workspace(c *gin.Context) (*appTrainer.Workspace, bool) {
	ws, err := h.registry.Get(c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	c.Request = c.Request.WithContext(log.WithWorkspaceID(c.Request.Context(), ws.ID()))
	return ws, true
}

// Create 打开工作区
// @Summary 打开评审工作区
// @Tags 工作区
// @Produce json
// @Success 200 {object} response.Response{data=appTrainer.Snapshot}
// @Router /workspaces [post]
func (h *WorkspaceHandler) Create(c *gin.Context) {
	ws := h.registry.Create()
	response.Success(c, ws.Snapshot())
}

// Get 工作区快照
// @Summary 工作区快照
// @Tags 工作区
// @Produce json
// @Param id path string true "工作区 id"
// @Success 200 {object} response.Response{data=appTrainer.Snapshot}
// @Failure 404 {object} response.Response
// @Router /workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	response.Success(c, ws.Snapshot())
}

// Close 关闭工作区
// @Summary 关闭工作区
// @Tags 工作区
// @Param id path string true "工作区 id"
// @Success 200 {object} response.Response
// @Router /workspaces/{id} [delete]
func (h *WorkspaceHandler) Close(c *gin.Context) {
	if err := h.registry.Close(c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// SelectDepartmentRequest 选择部门
type SelectDepartmentRequest struct {
	DepartmentID FlexString `json:"departmentId"`
}

// SelectDepartment 切换部门并加载文档
// PUT /api/v1/workspaces/:id/department
func (h *WorkspaceHandler) SelectDepartment(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req SelectDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ws.SelectDepartment(c.Request.Context(), string(req.DepartmentID)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ws.Snapshot())
}

// RefreshDocuments 重新加载当前部门的文档
// POST /api/v1/workspaces/:id/documents/refresh
func (h *WorkspaceHandler) RefreshDocuments(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := ws.RefreshDocuments(c.Request.Context()); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ws.Snapshot())
}

// UploadDocument 上传到当前部门
// POST /api/v1/workspaces/:id/documents
func (h *WorkspaceHandler) UploadDocument(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	file, err := readUpload(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := ws.UploadDocument(c.Request.Context(), *file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, uploadFields(res))
}

// DeleteDocument 从当前部门删除文档
// DELETE /api/v1/workspaces/:id/documents/:docId
func (h *WorkspaceHandler) DeleteDocument(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	res, err := ws.DeleteDocument(c.Request.Context(), c.Param("docId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, deleteFields(res))
}

// SelectDocumentRequest 选择文档，空 id 表示取消选择
type SelectDocumentRequest struct {
	DocumentID FlexString `json:"documentId"`
}

// SelectDocument 选中文档并加载片段
// PUT /api/v1/workspaces/:id/document
func (h *WorkspaceHandler) SelectDocument(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req SelectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := ws.SelectDocument(c.Request.Context(), string(req.DocumentID)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ws.Snapshot())
}

// Chunks 已加载的文档片段
// GET /api/v1/workspaces/:id/chunks/:docId
func (h *WorkspaceHandler) Chunks(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	chunks := ws.ChunksFor(c.Param("docId"))
	if chunks == nil {
		chunks = []trainer.Chunk{}
	}
	response.Success(c, chunks)
}

// ChatDocumentsRequest 参与问答的文档
type ChatDocumentsRequest struct {
	DocumentIDs []FlexString `json:"documentIds"`
}

// SetChatDocuments 设置参与问答的文档
// PUT /api/v1/workspaces/:id/chat-documents
func (h *WorkspaceHandler) SetChatDocuments(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req ChatDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	ws.SetChatDocuments(flexStrings(req.DocumentIDs))
	response.Success(c, ws.Snapshot())
}

// SendMessageRequest 提问
type SendMessageRequest struct {
	Question string `json:"question"`
}

// SendMessage 提问，回答会被追加并选中
// POST /api/v1/workspaces/:id/messages
func (h *WorkspaceHandler) SendMessage(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	msg, err := ws.SendMessage(c.Request.Context(), req.Question)
	if err != nil {
		// 错误说明已追加到对话，客户端重新拉取快照即可看到
		response.FromError(c, err)
		return
	}
	response.Success(c, msg)
}

// AnnotateRequest 消息标注，只处理出现的字段
type AnnotateRequest struct {
	Quality    *string  `json:"quality" binding:"omitempty,oneof=good bad"`
	Preferred  *string  `json:"preferred"`
	AddTags    []string `json:"addTags"`
	RemoveTags []string `json:"removeTags"`
	Selected   bool     `json:"selected"`
}

// Annotate 标注消息
// PATCH /api/v1/workspaces/:id/messages/:msgId
func (h *WorkspaceHandler) Annotate(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := c.Param("msgId")
	if err := ws.Annotate(id, req.annotation()); err != nil {
		response.FromError(c, err)
		return
	}

	snap := ws.Snapshot()
	msg, _ := snap.Message(id)
	response.Success(c, msg)
}

// annotation 转换为工作区标注
func (r AnnotateRequest) annotation() appTrainer.Annotation {
	a := appTrainer.Annotation{
		Preferred:  r.Preferred,
		AddTags:    r.AddTags,
		RemoveTags: r.RemoveTags,
		Select:     r.Selected,
	}
	if r.Quality != nil {
		q := trainer.Quality(*r.Quality)
		a.Quality = &q
	}
	return a
}

// SaveFeedback 提交消息的评审结果
// POST /api/v1/workspaces/:id/messages/:msgId/feedback
func (h *WorkspaceHandler) SaveFeedback(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	res, err := ws.SaveFeedback(c.Request.Context(), c.Param("msgId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, feedbackFields(res))
}

// RerankSettingsRequest 工作区重排序设置
type RerankSettingsRequest struct {
	Method string   `json:"method" binding:"rerank_method"`
	TopK   *int     `json:"topK"`
	Weight *float64 `json:"weight"`
}

// SetRerank 更新工作区重排序设置，缺省字段保持原值
// PUT /api/v1/workspaces/:id/rerank
func (h *WorkspaceHandler) SetRerank(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req RerankSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	next := ws.Rerank()
	if req.Method != "" {
		next.Method = trainer.RerankMethod(req.Method)
	}
	if req.TopK != nil {
		next.TopK = *req.TopK
	}
	if req.Weight != nil {
		next.Weight = *req.Weight
	}
	if err := ws.SetRerank(next); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, ws.Rerank())
}

// Events 订阅工作区状态变化（WebSocket）
// GET /api/v1/workspaces/:id/events
func (h *WorkspaceHandler) Events(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := h.hub.Serve(c.Writer, c.Request, ws.ID()); err != nil {
		// Upgrade 失败时 gorilla 已写入错误响应
		log.FromContext(c.Request.Context(), log.NewModuleLogger("http", "workspace")).
			Warn("WebSocket upgrade failed", "error", err)
	}
}
