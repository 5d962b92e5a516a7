package trainer

import "time"

// EventKind 工作区状态变化类型
type EventKind string

const (
	EventDepartmentSelected EventKind = "department_selected"
	EventDocumentsLoaded    EventKind = "documents_loaded"
	EventDocumentsFailed    EventKind = "documents_failed"
	EventDocumentSelected   EventKind = "document_selected"
	EventDocumentUploaded   EventKind = "document_uploaded"
	EventDocumentDeleted    EventKind = "document_deleted"
	EventChunksLoaded       EventKind = "chunks_loaded"
	EventChunksFailed       EventKind = "chunks_failed"
	EventMessageAppended    EventKind = "message_appended"
	EventMessageAnnotated   EventKind = "message_annotated"
	EventMessageSelected    EventKind = "message_selected"
	EventFeedbackSaved      EventKind = "feedback_saved"
	EventRerankChanged      EventKind = "rerank_changed"
	EventWorkspaceClosed    EventKind = "workspace_closed"
)

// StateEvent 推送给订阅者的状态变化通知
// 只携带类型和标识，订阅者按需拉取快照
type StateEvent struct {
	WorkspaceID string    `json:"workspaceId"`
	Kind        EventKind `json:"kind"`
	Subject     string    `json:"subject,omitempty"`
	At          time.Time `json:"at"`
}
