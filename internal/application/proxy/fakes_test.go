package proxy

import (
	"context"
	"errors"
	"sync"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/backend"
)

var errBackendDown = errors.New("backend down")

// fakeBackend 可按需替换各方法的后端
type fakeBackend struct {
	login          func(ctx context.Context, in backend.LoginRequest) (*backend.LoginResponse, error)
	createSession  func(ctx context.Context, userID any, authorization string) (map[string]any, error)
	listDeps       func(ctx context.Context) ([]trainer.Department, error)
	listDocs       func(ctx context.Context, departmentID string) ([]trainer.Document, error)
	deleteDoc      func(ctx context.Context, documentID string) (map[string]any, error)
	upload         func(ctx context.Context, departmentID string, file trainer.UploadFile) (*trainer.UploadResult, error)
	listChunks     func(ctx context.Context, documentID string) ([]trainer.Chunk, error)
	ask            func(ctx context.Context, in backend.ChatRequest) (*trainer.ChatAnswer, error)
	submitFeedback func(ctx context.Context, rec trainer.FeedbackRecord) (map[string]any, error)
}

func (f *fakeBackend) Login(ctx context.Context, in backend.LoginRequest) (*backend.LoginResponse, error) {
	return f.login(ctx, in)
}

func (f *fakeBackend) CreateSession(ctx context.Context, userID any, authorization string) (map[string]any, error) {
	return f.createSession(ctx, userID, authorization)
}

func (f *fakeBackend) ListDepartments(ctx context.Context) ([]trainer.Department, error) {
	return f.listDeps(ctx)
}

func (f *fakeBackend) ListDocuments(ctx context.Context, departmentID string) ([]trainer.Document, error) {
	return f.listDocs(ctx, departmentID)
}

func (f *fakeBackend) DeleteDocument(ctx context.Context, documentID string) (map[string]any, error) {
	return f.deleteDoc(ctx, documentID)
}

func (f *fakeBackend) UploadDocument(ctx context.Context, departmentID string, file trainer.UploadFile) (*trainer.UploadResult, error) {
	return f.upload(ctx, departmentID, file)
}

func (f *fakeBackend) ListChunks(ctx context.Context, documentID string) ([]trainer.Chunk, error) {
	return f.listChunks(ctx, documentID)
}

func (f *fakeBackend) Ask(ctx context.Context, in backend.ChatRequest) (*trainer.ChatAnswer, error) {
	return f.ask(ctx, in)
}

func (f *fakeBackend) SubmitFeedback(ctx context.Context, rec trainer.FeedbackRecord) (map[string]any, error) {
	return f.submitFeedback(ctx, rec)
}

type staticPolicies trainer.Policies

func (p staticPolicies) Policies() trainer.Policies { return trainer.Policies(p) }

type lenCounter struct{}

func (lenCounter) Annotate(chunks []trainer.Chunk) {
	for i := range chunks {
		chunks[i].TokenCount = len(chunks[i].Content)
	}
}

// memoryJournal 内存反馈日志
type memoryJournal struct {
	mu      sync.Mutex
	entries []trainer.JournalEntry
}

func (j *memoryJournal) Count(ctx context.Context, id string) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	n := 0
	for _, e := range j.entries {
		if e.ChatMessageID == id {
			n++
		}
	}
	return n, nil
}

func (j *memoryJournal) Append(ctx context.Context, rec trainer.FeedbackRecord, outcome string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, trainer.JournalEntry{
		ID:            int64(len(j.entries) + 1),
		ChatMessageID: rec.ChatMessageID,
		FeedbackType:  rec.FeedbackType,
		Outcome:       outcome,
		Payload:       rec,
	})
	return nil
}

func (j *memoryJournal) List(ctx context.Context, id string) ([]trainer.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []trainer.JournalEntry
	for _, e := range j.entries {
		if e.ChatMessageID == id {
			out = append(out, e)
		}
	}
	return out, nil
}
