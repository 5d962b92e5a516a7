package trainer

import (
	"time"

	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
)

// Snapshot 工作区只读视图，与工作区内部状态不共享内存
type Snapshot struct {
	ID                 string                       `json:"id"`
	DepartmentID       string                       `json:"selectedDepartmentId,omitempty"`
	Documents          map[string][]domain.Document `json:"documents"`
	DocumentsLoading   bool                         `json:"documentsLoading"`
	DocumentsError     string                       `json:"documentsError,omitempty"`
	SelectedDocumentID string                       `json:"selectedDocumentId,omitempty"`
	Chunks             map[string][]domain.Chunk    `json:"chunks"`
	ChunksLoading      bool                         `json:"chunksLoading"`
	ChunksError        string                       `json:"chunksError,omitempty"`
	ChatDocumentIDs    []string                     `json:"chatDocumentIds"`
	SessionID          string                       `json:"sessionId,omitempty"`
	Messages           []domain.Message             `json:"messages"`
	SelectedMessageID  string                       `json:"selectedMessageId,omitempty"`
	Rerank             domain.RerankSettings        `json:"rerank"`
	CreatedAt          time.Time                    `json:"createdAt"`
	UpdatedAt          time.Time                    `json:"updatedAt"`
}

// Message 按 id 查找消息
func (s Snapshot) Message(id string) (domain.Message, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Message{}, false
}

func copyDocuments(in map[string][]domain.Document) map[string][]domain.Document {
	out := make(map[string][]domain.Document, len(in))
	for k, docs := range in {
		cp := make([]domain.Document, len(docs))
		for i, d := range docs {
			if d.Size != nil {
				n := *d.Size
				d.Size = &n
			}
			if d.Department != nil {
				dep := *d.Department
				d.Department = &dep
			}
			cp[i] = d
		}
		out[k] = cp
	}
	return out
}

func copyChunks(in map[string][]domain.Chunk) map[string][]domain.Chunk {
	out := make(map[string][]domain.Chunk, len(in))
	for k, chunks := range in {
		out[k] = domain.CloneChunks(chunks)
	}
	return out
}

func copyMessages(in []domain.Message) []domain.Message {
	out := make([]domain.Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
