package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
	applog "github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// CitationsKey 最近一次回答的引用片段在片段表中的键
const CitationsKey = "selected"

// chatErrorPrefix 问答失败时追加的助手消息前缀
const chatErrorPrefix = "Sorry, I encountered an error: "

// DefaultSessionID 后端分配会话之前使用的占位会话 id
const DefaultSessionID = "1"

// Workspace 一个评审会话的全部状态
// 所有读写都经过互斥锁，上游调用在锁外进行
type Workspace struct {
	id     string
	deps   Deps
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
	// generation 每次切换部门递增，用于丢弃过期的文档列表
	generation         uint64
	departmentID       string
	documents          map[string][]domain.Document
	documentsLoading   bool
	documentsError     string
	selectedDocumentID string
	chunks             map[string][]domain.Chunk
	// chunkGen 每个文档的片段版本，删除或重新加载时递增
	chunkGen           map[string]uint64
	chunksLoading      bool
	chunksError        string
	chatDocumentIDs    []string
	sessionID          string
	messages           []domain.Message
	selectedMessageID  string
	rerank             domain.RerankSettings
	createdAt          time.Time
	updatedAt          time.Time
}

func newWorkspace(id string, deps Deps, now func() time.Time) *Workspace {
	if now == nil {
		now = time.Now
	}
	t := now()
	return &Workspace{
		id:        id,
		deps:      deps,
		logger:    applog.NewModuleLogger("trainer", "workspace").With("workspace_id", id),
		now:       now,
		documents: make(map[string][]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		chunkGen:  make(map[string]uint64),
		sessionID: DefaultSessionID,
		rerank:    domain.DefaultRerankSettings(),
		createdAt: t,
		updatedAt: t,
	}
}

// ID 工作区 id
func (w *Workspace) ID() string {
	return w.id
}

// LastActive 最近一次状态变化时间
func (w *Workspace) LastActive() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.updatedAt
}

// touch 需持有锁
func (w *Workspace) touch() {
	w.updatedAt = w.now()
}

func (w *Workspace) publish(kind domain.EventKind, subject string) {
	if w.deps.Events == nil {
		return
	}
	ev := domain.StateEvent{
		WorkspaceID: w.id,
		Kind:        kind,
		Subject:     subject,
		At:          w.now(),
	}
	if err := w.deps.Events.PushEvent(ev); err != nil {
		w.logger.Warn("Failed to push workspace event",
			"kind", kind,
			"error", err,
		)
	}
}

// SelectDepartment 切换部门并加载其文档列表
// 多次快速切换时只有最后一次选择的结果会写入状态
func (w *Workspace) SelectDepartment(ctx context.Context, departmentID string) error {
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		return domain.NewValidationError("departmentId", "Department is required")
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.departmentID = departmentID
	w.documentsLoading = true
	w.documentsError = ""
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventDepartmentSelected, departmentID)
	return w.loadDocuments(ctx, departmentID, gen)
}

// RefreshDocuments 重新加载当前部门的文档列表
func (w *Workspace) RefreshDocuments(ctx context.Context) error {
	w.mu.Lock()
	departmentID := w.departmentID
	gen := w.generation
	if departmentID == "" {
		w.documents = make(map[string][]domain.Document)
		w.touch()
		w.mu.Unlock()
		return nil
	}
	w.documentsLoading = true
	w.mu.Unlock()

	return w.loadDocuments(ctx, departmentID, gen)
}

func (w *Workspace) loadDocuments(ctx context.Context, departmentID string, gen uint64) error {
	docs, err := w.deps.Documents.List(ctx, departmentID)

	w.mu.Lock()
	if w.departmentID != departmentID || w.generation != gen {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale document list",
			"department_id", departmentID,
			"error", err,
		)
		return nil
	}
	w.documentsLoading = false
	w.touch()
	if err != nil {
		w.documents[departmentID] = []domain.Document{}
		w.documentsError = err.Error()
		w.mu.Unlock()

		w.logger.Warn("Failed to load documents",
			"department_id", departmentID,
			"error", err,
		)
		w.publish(domain.EventDocumentsFailed, departmentID)
		return err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	w.documents[departmentID] = docs
	w.documentsError = ""
	w.mu.Unlock()

	w.publish(domain.EventDocumentsLoaded, departmentID)
	return nil
}

// SelectDocument 选中文档并加载其片段，documentID 为空时取消选中
func (w *Workspace) SelectDocument(ctx context.Context, documentID string) error {
	w.mu.Lock()
	w.selectedDocumentID = documentID
	w.chunksError = ""
	w.chunksLoading = documentID != ""
	var gen uint64
	if documentID != "" {
		w.chunkGen[documentID]++
		gen = w.chunkGen[documentID]
	}
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventDocumentSelected, documentID)
	if documentID == "" {
		return nil
	}

	chunks, err := w.deps.Chunks.List(ctx, documentID)

	w.mu.Lock()
	// 加载期间文档被删除或重新加载，结果作废
	if w.chunkGen[documentID] != gen {
		w.mu.Unlock()
		w.logger.Debug("Discarding stale chunks",
			"document_id", documentID,
			"error", err,
		)
		return nil
	}
	current := w.selectedDocumentID == documentID
	if current {
		w.chunksLoading = false
	}
	w.touch()
	if err != nil {
		// 按文档合并，不覆盖其他文档的片段
		w.chunks[documentID] = []domain.Chunk{}
		if current {
			w.chunksError = err.Error()
		}
		w.mu.Unlock()

		w.logger.Warn("Failed to load chunks",
			"document_id", documentID,
			"error", err,
		)
		w.publish(domain.EventChunksFailed, documentID)
		return err
	}
	w.chunks[documentID] = domain.CloneChunks(chunks)
	w.mu.Unlock()

	w.publish(domain.EventChunksLoaded, documentID)
	return nil
}

// ChunksFor 返回某个文档已加载的片段副本
func (w *Workspace) ChunksFor(documentID string) []domain.Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.CloneChunks(w.chunks[documentID])
}

// DeleteDocument 删除当前部门下的文档
// 上游确认（或按策略放行）之后才修改本地状态
func (w *Workspace) DeleteDocument(ctx context.Context, documentID string) (*proxy.DeleteResult, error) {
	w.mu.Lock()
	departmentID := w.departmentID
	w.mu.Unlock()

	if departmentID == "" {
		return nil, domain.NewValidationError("departmentId", "No department selected")
	}

	res, err := w.deps.Documents.Delete(ctx, documentID, departmentID)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if docs, ok := w.documents[departmentID]; ok {
		kept := make([]domain.Document, 0, len(docs))
		for _, d := range docs {
			if d.ID != documentID {
				kept = append(kept, d)
			}
		}
		w.documents[departmentID] = kept
	}
	delete(w.chunks, documentID)
	w.chunkGen[documentID]++
	if w.selectedDocumentID == documentID {
		w.selectedDocumentID = ""
		w.chunksError = ""
		w.chunksLoading = false
	}
	w.chatDocumentIDs = removeString(w.chatDocumentIDs, documentID)
	w.touch()
	w.mu.Unlock()

	w.logger.Info("Document removed from workspace",
		"document_id", documentID,
		"department_id", departmentID,
		"fallback", res.Fallback,
	)
	w.publish(domain.EventDocumentDeleted, documentID)
	return res, nil
}

// UploadDocument 上传文档到当前部门，成功后加入列表并选中
func (w *Workspace) UploadDocument(ctx context.Context, file domain.UploadFile) (*domain.UploadResult, error) {
	w.mu.Lock()
	departmentID := w.departmentID
	w.mu.Unlock()

	target := departmentID
	if target == "" {
		target = proxy.DefaultUploadDepartment
	}

	res, err := w.deps.Documents.Upload(ctx, target, file)
	if err != nil {
		return nil, err
	}

	doc := res.Document
	key := doc.DepartmentID
	if key == "" {
		key = target
	}

	w.mu.Lock()
	if doc.ID != "" {
		docs := w.documents[key]
		replaced := false
		for i := range docs {
			if docs[i].ID == doc.ID {
				docs[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			docs = append(docs, doc)
		}
		w.documents[key] = docs
		w.chunks[doc.ID] = domain.CloneChunks(res.Chunks)
		w.chunkGen[doc.ID]++
		w.selectedDocumentID = doc.ID
		w.chunksError = ""
		w.chunksLoading = false
	}
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventDocumentUploaded, doc.ID)
	return res, nil
}

// SetChatDocuments 设置参与问答的文档
func (w *Workspace) SetChatDocuments(documentIDs []string) {
	ids := make([]string, 0, len(documentIDs))
	for _, id := range documentIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	w.mu.Lock()
	w.chatDocumentIDs = ids
	w.touch()
	w.mu.Unlock()
}

// SendMessage 提问并把问答双方追加到对话
// 上游失败时也会追加一条说明错误的助手消息
func (w *Workspace) SendMessage(ctx context.Context, question string) (*domain.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.NewValidationError("question", "Question is required")
	}

	w.mu.Lock()
	userMsg := domain.Message{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   question,
		CreatedAt: w.now(),
	}
	w.messages = append(w.messages, userMsg)
	sessionID := w.sessionID
	documentIDs := append([]string(nil), w.chatDocumentIDs...)
	if len(documentIDs) == 0 && w.selectedDocumentID != "" {
		documentIDs = []string{w.selectedDocumentID}
	}
	settings := w.rerank
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventMessageAppended, userMsg.ID)

	answer, err := w.deps.Chat.Ask(ctx, question, documentIDs, sessionID)
	if err != nil {
		msg := domain.Message{
			ID:        uuid.NewString(),
			Role:      domain.RoleAssistant,
			Content:   chatErrorPrefix + err.Error(),
			CreatedAt: w.now(),
		}
		w.mu.Lock()
		w.messages = append(w.messages, msg)
		w.touch()
		w.mu.Unlock()

		w.logger.Warn("Chat request failed", "error", err)
		w.publish(domain.EventMessageAppended, msg.ID)
		return &msg, err
	}

	citations := domain.Rerank(settings.Request(answer.Sources))
	metrics.RecordRerank(string(settings.Method), len(citations))

	msg := domain.Message{
		ID:        answer.MessageID,
		Role:      domain.RoleAssistant,
		Content:   answer.Answer,
		CreatedAt: w.now(),
		Citations: citations,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	w.mu.Lock()
	if answer.SessionID != "" {
		w.sessionID = answer.SessionID
	}
	w.messages = append(w.messages, msg.Clone())
	w.selectedMessageID = msg.ID
	w.chunks[CitationsKey] = domain.CloneChunks(citations)
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventMessageAppended, msg.ID)
	w.publish(domain.EventMessageSelected, msg.ID)
	return &msg, nil
}

// annotate 在锁内修改一条消息，按位置替换而不是原地修改共享切片
func (w *Workspace) annotate(messageID string, fn func(m *domain.Message) bool) error {
	w.mu.Lock()
	idx := w.indexOf(messageID)
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, messageID)
	}
	m := w.messages[idx].Clone()
	changed := fn(&m)
	if changed {
		w.messages[idx] = m
		w.touch()
	}
	w.mu.Unlock()

	if changed {
		w.publish(domain.EventMessageAnnotated, messageID)
	}
	return nil
}

// indexOf 需持有锁
func (w *Workspace) indexOf(messageID string) int {
	for i := range w.messages {
		if w.messages[i].ID == messageID {
			return i
		}
	}
	return -1
}

// Annotation 一组消息标注，nil 或空字段不修改
type Annotation struct {
	Quality    *domain.Quality
	Preferred  *string
	AddTags    []string
	RemoveTags []string
	Select     bool
}

// Annotate 一次性应用一组标注
// 校验失败或消息不存在时消息保持不变
func (w *Workspace) Annotate(messageID string, a Annotation) error {
	if a.Quality != nil && !a.Quality.Valid() {
		return invalidQuality(*a.Quality)
	}
	err := w.annotate(messageID, func(m *domain.Message) bool {
		changed := false
		if a.Quality != nil {
			changed = setQuality(m, *a.Quality) || changed
		}
		if a.Preferred != nil {
			changed = setPreferred(m, *a.Preferred) || changed
		}
		for _, tag := range a.AddTags {
			changed = m.AddTag(tag) || changed
		}
		for _, tag := range a.RemoveTags {
			changed = m.RemoveTag(tag) || changed
		}
		return changed
	})
	if err != nil || !a.Select {
		return err
	}
	return w.SelectMessage(messageID)
}

// SetQuality 标记答案质量
func (w *Workspace) SetQuality(messageID string, quality domain.Quality) error {
	if !quality.Valid() {
		return invalidQuality(quality)
	}
	return w.annotate(messageID, func(m *domain.Message) bool {
		return setQuality(m, quality)
	})
}

// AddTag 为消息添加标签
func (w *Workspace) AddTag(messageID, tag string) error {
	return w.annotate(messageID, func(m *domain.Message) bool {
		return m.AddTag(tag)
	})
}

// RemoveTag 移除消息标签
func (w *Workspace) RemoveTag(messageID, tag string) error {
	return w.annotate(messageID, func(m *domain.Message) bool {
		return m.RemoveTag(tag)
	})
}

// SetPreferred 设置期望答案，空文本表示清除
func (w *Workspace) SetPreferred(messageID, text string) error {
	return w.annotate(messageID, func(m *domain.Message) bool {
		return setPreferred(m, text)
	})
}

func invalidQuality(q domain.Quality) error {
	return domain.NewValidationError("quality", fmt.Sprintf("Invalid quality: %s", q))
}

func setQuality(m *domain.Message, quality domain.Quality) bool {
	if m.Quality == quality {
		return false
	}
	m.Quality = quality
	return true
}

func setPreferred(m *domain.Message, text string) bool {
	if strings.TrimSpace(text) == "" {
		if m.Preferred == nil {
			return false
		}
		m.Preferred = nil
		return true
	}
	if m.Preferred != nil && *m.Preferred == text {
		return false
	}
	m.Preferred = &text
	return true
}

// SelectMessage 选中消息，并把它的引用展示到片段表
func (w *Workspace) SelectMessage(messageID string) error {
	w.mu.Lock()
	idx := w.indexOf(messageID)
	if idx < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrMessageNotFound, messageID)
	}
	w.selectedMessageID = messageID
	if citations := w.messages[idx].Citations; citations != nil {
		w.chunks[CitationsKey] = domain.CloneChunks(citations)
	}
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventMessageSelected, messageID)
	return nil
}

// SaveFeedback 把一条助手消息的评审结果整理成反馈记录并提交
func (w *Workspace) SaveFeedback(ctx context.Context, messageID string) (*proxy.FeedbackResult, error) {
	w.mu.Lock()
	messages := copyMessages(w.messages)
	departmentID := w.departmentID
	w.mu.Unlock()

	rec, err := domain.Reconcile(messages, messageID)
	if err != nil {
		return nil, err
	}
	rec.DepartmentID = departmentID

	res, err := w.deps.Feedback.Submit(ctx, *rec)
	if err != nil {
		return nil, err
	}

	w.logger.Info("Feedback saved",
		"message_id", messageID,
		"feedback_type", rec.FeedbackType,
		"fallback", res.Fallback,
	)
	w.publish(domain.EventFeedbackSaved, messageID)
	return res, nil
}

// SetRerank 更新重排序设置
func (w *Workspace) SetRerank(settings domain.RerankSettings) error {
	if settings.Method == "" {
		settings.Method = domain.RerankNone
	}
	if !settings.Method.Valid() {
		return domain.NewValidationError("method", fmt.Sprintf("Unknown rerank method: %s", settings.Method))
	}
	if settings.TopK <= 0 {
		return domain.NewValidationError("topK", "topK must be positive")
	}

	w.mu.Lock()
	w.rerank = settings
	w.touch()
	w.mu.Unlock()

	w.publish(domain.EventRerankChanged, string(settings.Method))
	return nil
}

// Rerank 当前重排序设置
func (w *Workspace) Rerank() domain.RerankSettings {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rerank
}

// Snapshot 返回状态的深拷贝
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Snapshot{
		ID:                 w.id,
		DepartmentID:       w.departmentID,
		Documents:          copyDocuments(w.documents),
		DocumentsLoading:   w.documentsLoading,
		DocumentsError:     w.documentsError,
		SelectedDocumentID: w.selectedDocumentID,
		Chunks:             copyChunks(w.chunks),
		ChunksLoading:      w.chunksLoading,
		ChunksError:        w.chunksError,
		ChatDocumentIDs:    append([]string{}, w.chatDocumentIDs...),
		SessionID:          w.sessionID,
		Messages:           copyMessages(w.messages),
		SelectedMessageID:  w.selectedMessageID,
		Rerank:             w.rerank,
		CreatedAt:          w.createdAt,
		UpdatedAt:          w.updatedAt,
	}
}

func removeString(in []string, s string) []string {
	out := in[:0]
	for _, v := range in {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
