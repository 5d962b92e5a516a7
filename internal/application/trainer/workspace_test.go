package trainer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	domain "github.com/ragtrainer/gateway/internal/domain/trainer"
)

var errUpstream = errors.New("upstream failed")

type fakeDocuments struct {
	list   func(ctx context.Context, departmentID string) ([]domain.Document, error)
	delete func(ctx context.Context, documentID, departmentID string) (*proxy.DeleteResult, error)
	upload func(ctx context.Context, departmentID string, file domain.UploadFile) (*domain.UploadResult, error)
}

func (f *fakeDocuments) List(ctx context.Context, departmentID string) ([]domain.Document, error) {
	return f.list(ctx, departmentID)
}

func (f *fakeDocuments) Delete(ctx context.Context, documentID, departmentID string) (*proxy.DeleteResult, error) {
	return f.delete(ctx, documentID, departmentID)
}

func (f *fakeDocuments) Upload(ctx context.Context, departmentID string, file domain.UploadFile) (*domain.UploadResult, error) {
	return f.upload(ctx, departmentID, file)
}

type fakeChunks func(ctx context.Context, documentID string) ([]domain.Chunk, error)

func (f fakeChunks) List(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return f(ctx, documentID)
}

type fakeChat func(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error)

func (f fakeChat) Ask(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error) {
	return f(ctx, question, documentIDs, sessionID)
}

type fakeFeedback func(ctx context.Context, rec domain.FeedbackRecord) (*proxy.FeedbackResult, error)

func (f fakeFeedback) Submit(ctx context.Context, rec domain.FeedbackRecord) (*proxy.FeedbackResult, error) {
	return f(ctx, rec)
}

type recordingPusher struct {
	mu     sync.Mutex
	events []domain.StateEvent
}

func (p *recordingPusher) PushEvent(ev domain.StateEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPusher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

func newTestWorkspace(deps Deps) *Workspace {
	return newWorkspace("ws-test", deps, time.Now)
}

func docsFor(departmentID string, ids ...string) []domain.Document {
	out := make([]domain.Document, len(ids))
	for i, id := range ids {
		out[i] = domain.Document{ID: id, Name: id + ".pdf", DepartmentID: departmentID}
	}
	return out
}

func TestWorkspace_SelectDepartment(t *testing.T) {
	t.Run("最后一次选择的部门胜出", func(t *testing.T) {
		releaseA := make(chan struct{})
		startedA := make(chan struct{})

		docs := &fakeDocuments{
			list: func(ctx context.Context, departmentID string) ([]domain.Document, error) {
				if departmentID == "A" {
					close(startedA)
					<-releaseA
					return docsFor("A", "a1"), nil
				}
				return docsFor("B", "b1", "b2"), nil
			},
		}
		ws := newTestWorkspace(Deps{Documents: docs})

		var wg sync.WaitGroup
		var errA error
		wg.Add(1)
		go func() {
			defer wg.Done()
			errA = ws.SelectDepartment(context.Background(), "A")
		}()

		<-startedA
		require.NoError(t, ws.SelectDepartment(context.Background(), "B"))
		close(releaseA)
		wg.Wait()

		assert.NoError(t, errA)
		snap := ws.Snapshot()
		assert.Equal(t, "B", snap.DepartmentID)
		assert.Len(t, snap.Documents["B"], 2)
		_, hasA := snap.Documents["A"]
		assert.False(t, hasA, "stale department result must be discarded")
		assert.False(t, snap.DocumentsLoading)
	})

	t.Run("加载失败时列表置空并记录错误", func(t *testing.T) {
		docs := &fakeDocuments{
			list: func(ctx context.Context, departmentID string) ([]domain.Document, error) {
				return nil, errUpstream
			},
		}
		ws := newTestWorkspace(Deps{Documents: docs})

		err := ws.SelectDepartment(context.Background(), "hr")
		assert.ErrorIs(t, err, errUpstream)

		snap := ws.Snapshot()
		assert.NotNil(t, snap.Documents["hr"])
		assert.Empty(t, snap.Documents["hr"])
		assert.Equal(t, errUpstream.Error(), snap.DocumentsError)
	})

	t.Run("空部门 id 返回校验错误", func(t *testing.T) {
		ws := newTestWorkspace(Deps{})
		err := ws.SelectDepartment(context.Background(), "  ")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("未选部门时刷新清空文档", func(t *testing.T) {
		ws := newTestWorkspace(Deps{})
		require.NoError(t, ws.RefreshDocuments(context.Background()))
		assert.Empty(t, ws.Snapshot().Documents)
	})
}

func TestWorkspace_DocumentLifecycle(t *testing.T) {
	newDeps := func(deleteErr error) (Deps, *recordingPusher) {
		pusher := &recordingPusher{}
		return Deps{
			Documents: &fakeDocuments{
				list: func(ctx context.Context, departmentID string) ([]domain.Document, error) {
					return docsFor(departmentID, "d1"), nil
				},
				delete: func(ctx context.Context, documentID, departmentID string) (*proxy.DeleteResult, error) {
					if deleteErr != nil {
						return nil, deleteErr
					}
					return &proxy.DeleteResult{DocumentID: documentID}, nil
				},
				upload: func(ctx context.Context, departmentID string, file domain.UploadFile) (*domain.UploadResult, error) {
					return &domain.UploadResult{
						Document: domain.Document{ID: "d2", Name: file.Filename, DepartmentID: departmentID},
						Chunks: []domain.Chunk{
							{ID: "c1", Content: "first"},
							{ID: "c2", Content: "second"},
						},
					}, nil
				},
			},
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				return []domain.Chunk{{ID: documentID + "-c", Content: "x"}}, nil
			}),
			Events: pusher,
		}, pusher
	}

	t.Run("上传后删除，片段随之清空", func(t *testing.T) {
		deps, pusher := newDeps(nil)
		ws := newTestWorkspace(deps)
		ctx := context.Background()

		require.NoError(t, ws.SelectDepartment(ctx, "hr"))
		res, err := ws.UploadDocument(ctx, domain.UploadFile{Filename: "policy.pdf", Data: []byte("%PDF")})
		require.NoError(t, err)
		assert.Equal(t, "d2", res.Document.ID)

		snap := ws.Snapshot()
		assert.Equal(t, "d2", snap.SelectedDocumentID)
		assert.Len(t, snap.Documents["hr"], 2)
		assert.Len(t, ws.ChunksFor("d2"), 2)

		_, err = ws.DeleteDocument(ctx, "d2")
		require.NoError(t, err)

		snap = ws.Snapshot()
		assert.Empty(t, ws.ChunksFor("d2"))
		assert.Empty(t, snap.SelectedDocumentID)
		assert.Len(t, snap.Documents["hr"], 1)
		assert.Contains(t, pusher.kinds(), domain.EventDocumentDeleted)
	})

	t.Run("删除失败时不修改本地状态", func(t *testing.T) {
		deps, _ := newDeps(errUpstream)
		ws := newTestWorkspace(deps)
		ctx := context.Background()

		require.NoError(t, ws.SelectDepartment(ctx, "hr"))
		require.NoError(t, ws.SelectDocument(ctx, "d1"))

		_, err := ws.DeleteDocument(ctx, "d1")
		assert.ErrorIs(t, err, errUpstream)

		snap := ws.Snapshot()
		assert.Equal(t, "d1", snap.SelectedDocumentID)
		assert.Len(t, snap.Documents["hr"], 1)
		assert.Len(t, ws.ChunksFor("d1"), 1)
	})

	t.Run("未选部门时拒绝删除", func(t *testing.T) {
		deps, _ := newDeps(nil)
		ws := newTestWorkspace(deps)
		_, err := ws.DeleteDocument(context.Background(), "d1")
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("未选部门时上传到默认部门", func(t *testing.T) {
		deps, _ := newDeps(nil)
		ws := newTestWorkspace(deps)
		_, err := ws.UploadDocument(context.Background(), domain.UploadFile{Filename: "a.pdf"})
		require.NoError(t, err)
		assert.Len(t, ws.Snapshot().Documents[proxy.DefaultUploadDepartment], 1)
	})
}

func TestWorkspace_SelectDocument(t *testing.T) {
	t.Run("片段按文档合并", func(t *testing.T) {
		ws := newTestWorkspace(Deps{
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				return []domain.Chunk{{ID: documentID + "-c"}}, nil
			}),
		})
		ctx := context.Background()
		require.NoError(t, ws.SelectDocument(ctx, "d1"))
		require.NoError(t, ws.SelectDocument(ctx, "d2"))

		assert.Len(t, ws.ChunksFor("d1"), 1)
		assert.Len(t, ws.ChunksFor("d2"), 1)
		assert.Equal(t, "d2", ws.Snapshot().SelectedDocumentID)
	})

	t.Run("加载失败时片段置空", func(t *testing.T) {
		ws := newTestWorkspace(Deps{
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				return nil, errUpstream
			}),
		})
		err := ws.SelectDocument(context.Background(), "d1")
		assert.ErrorIs(t, err, errUpstream)

		snap := ws.Snapshot()
		assert.NotNil(t, snap.Chunks["d1"])
		assert.Empty(t, snap.Chunks["d1"])
		assert.Equal(t, errUpstream.Error(), snap.ChunksError)
	})

	t.Run("加载期间文档被删除，片段不回填", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		ws := newTestWorkspace(Deps{
			Documents: &fakeDocuments{
				list: func(ctx context.Context, departmentID string) ([]domain.Document, error) {
					return docsFor(departmentID, "7"), nil
				},
				delete: func(ctx context.Context, documentID, departmentID string) (*proxy.DeleteResult, error) {
					return &proxy.DeleteResult{}, nil
				},
			},
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				close(started)
				<-release
				return []domain.Chunk{{ID: "c1", Content: "stale"}}, nil
			}),
		})
		ctx := context.Background()
		require.NoError(t, ws.SelectDepartment(ctx, "hr"))

		done := make(chan error, 1)
		go func() { done <- ws.SelectDocument(ctx, "7") }()

		<-started
		_, err := ws.DeleteDocument(ctx, "7")
		require.NoError(t, err)
		close(release)
		require.NoError(t, <-done)

		snap := ws.Snapshot()
		assert.Empty(t, ws.ChunksFor("7"))
		assert.NotContains(t, snap.Chunks, "7")
		assert.Empty(t, snap.SelectedDocumentID)
		assert.False(t, snap.ChunksLoading)
		assert.Empty(t, snap.Documents["hr"])
	})

	t.Run("返回的片段是副本", func(t *testing.T) {
		ws := newTestWorkspace(Deps{
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				return []domain.Chunk{{ID: "c1", Content: "orig"}}, nil
			}),
		})
		require.NoError(t, ws.SelectDocument(context.Background(), "d1"))
		got := ws.ChunksFor("d1")
		got[0].Content = "mutated"
		assert.Equal(t, "orig", ws.ChunksFor("d1")[0].Content)
	})
}

func TestWorkspace_SendMessage(t *testing.T) {
	t.Run("回答追加并选中，会话 id 被采用", func(t *testing.T) {
		var gotDocs []string
		var gotSession string
		ws := newTestWorkspace(Deps{
			Chat: fakeChat(func(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error) {
				gotDocs = documentIDs
				gotSession = sessionID
				return &domain.ChatAnswer{
					SessionID: "42",
					Answer:    "It is 20 days.",
					MessageID: "m-1",
					Sources: []domain.Chunk{
						{ID: "s1", Score: domain.Float64(0.5)},
						{ID: "s2", Score: domain.Float64(0.9)},
					},
				}, nil
			}),
		})
		ws.SetChatDocuments([]string{"7", " ", "8"})

		msg, err := ws.SendMessage(context.Background(), "  How much leave?  ")
		require.NoError(t, err)
		assert.Equal(t, "m-1", msg.ID)
		assert.Equal(t, []string{"7", "8"}, gotDocs)
		assert.Equal(t, DefaultSessionID, gotSession)

		snap := ws.Snapshot()
		require.Len(t, snap.Messages, 2)
		assert.Equal(t, domain.RoleUser, snap.Messages[0].Role)
		assert.Equal(t, "How much leave?", snap.Messages[0].Content)
		assert.Equal(t, "m-1", snap.SelectedMessageID)
		assert.Equal(t, "42", snap.SessionID)
		// 默认 cosine 重排序，高分在前
		assert.Equal(t, "s2", snap.Messages[1].Citations[0].ID)
		assert.Len(t, snap.Chunks[CitationsKey], 2)

		_, err = ws.SendMessage(context.Background(), "Follow up")
		require.NoError(t, err)
		assert.Equal(t, "42", gotSession)
	})

	t.Run("新工作区使用占位会话", func(t *testing.T) {
		ws := newTestWorkspace(Deps{})
		assert.Equal(t, DefaultSessionID, ws.Snapshot().SessionID)
	})

	t.Run("未设置问答文档时使用选中文档", func(t *testing.T) {
		var gotDocs []string
		ws := newTestWorkspace(Deps{
			Chunks: fakeChunks(func(ctx context.Context, documentID string) ([]domain.Chunk, error) {
				return nil, nil
			}),
			Chat: fakeChat(func(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error) {
				gotDocs = documentIDs
				return &domain.ChatAnswer{Answer: "ok"}, nil
			}),
		})
		require.NoError(t, ws.SelectDocument(context.Background(), "3"))
		msg, err := ws.SendMessage(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, []string{"3"}, gotDocs)
		assert.NotEmpty(t, msg.ID)
	})

	t.Run("失败时追加错误说明", func(t *testing.T) {
		ws := newTestWorkspace(Deps{
			Chat: fakeChat(func(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error) {
				return nil, errUpstream
			}),
		})
		msg, err := ws.SendMessage(context.Background(), "q")
		assert.ErrorIs(t, err, errUpstream)
		require.NotNil(t, msg)
		assert.Equal(t, "Sorry, I encountered an error: upstream failed", msg.Content)
		assert.Len(t, ws.Snapshot().Messages, 2)
	})

	t.Run("空问题不发送", func(t *testing.T) {
		ws := newTestWorkspace(Deps{})
		_, err := ws.SendMessage(context.Background(), "   ")
		assert.True(t, domain.IsValidation(err))
		assert.Empty(t, ws.Snapshot().Messages)
	})
}

func TestWorkspace_Annotations(t *testing.T) {
	newChatted := func(t *testing.T, submit fakeFeedback) *Workspace {
		ws := newTestWorkspace(Deps{
			Chat: fakeChat(func(ctx context.Context, question string, documentIDs []string, sessionID string) (*domain.ChatAnswer, error) {
				return &domain.ChatAnswer{Answer: "A1", MessageID: "m-1"}, nil
			}),
			Feedback: submit,
		})
		_, err := ws.SendMessage(context.Background(), "Q1")
		require.NoError(t, err)
		return ws
	}

	t.Run("标注后保存反馈", func(t *testing.T) {
		var got domain.FeedbackRecord
		ws := newChatted(t, func(ctx context.Context, rec domain.FeedbackRecord) (*proxy.FeedbackResult, error) {
			got = rec
			return &proxy.FeedbackResult{}, nil
		})

		require.NoError(t, ws.SetQuality("m-1", domain.QualityBad))
		require.NoError(t, ws.AddTag("m-1", "outdated"))
		require.NoError(t, ws.AddTag("m-1", "outdated"))
		require.NoError(t, ws.SetPreferred("m-1", "A2"))

		_, err := ws.SaveFeedback(context.Background(), "m-1")
		require.NoError(t, err)
		assert.Equal(t, "Q1", got.Question)
		assert.Equal(t, "A1", got.OriginalAnswer)
		require.NotNil(t, got.PreferredAnswer)
		assert.Equal(t, "A2", *got.PreferredAnswer)
		assert.Equal(t, []string{"outdated"}, got.Tags)
		assert.Equal(t, domain.FeedbackCorrection, got.FeedbackType)
	})

	t.Run("标注不存在的消息", func(t *testing.T) {
		ws := newChatted(t, nil)
		assert.ErrorIs(t, ws.SetQuality("nope", domain.QualityGood), domain.ErrMessageNotFound)
		assert.ErrorIs(t, ws.SelectMessage("nope"), domain.ErrMessageNotFound)
	})

	t.Run("非法质量取值", func(t *testing.T) {
		ws := newChatted(t, nil)
		assert.True(t, domain.IsValidation(ws.SetQuality("m-1", domain.Quality("meh"))))
	})

	t.Run("快照不受后续修改影响", func(t *testing.T) {
		ws := newChatted(t, nil)
		before := ws.Snapshot()
		require.NoError(t, ws.AddTag("m-1", "x"))
		m, ok := before.Message("m-1")
		require.True(t, ok)
		assert.Empty(t, m.Tags)
	})

	t.Run("清除期望答案", func(t *testing.T) {
		ws := newChatted(t, nil)
		require.NoError(t, ws.SetPreferred("m-1", "better"))
		require.NoError(t, ws.SetPreferred("m-1", ""))
		m, _ := ws.Snapshot().Message("m-1")
		assert.Nil(t, m.Preferred)
	})

	t.Run("一组标注一次生效", func(t *testing.T) {
		ws := newChatted(t, nil)
		bad := domain.QualityBad
		preferred := "better"
		require.NoError(t, ws.Annotate("m-1", Annotation{
			Quality:   &bad,
			Preferred: &preferred,
			AddTags:   []string{"tone", "facts"},
			Select:    true,
		}))

		snap := ws.Snapshot()
		m, ok := snap.Message("m-1")
		require.True(t, ok)
		assert.Equal(t, domain.QualityBad, m.Quality)
		require.NotNil(t, m.Preferred)
		assert.Equal(t, "better", *m.Preferred)
		assert.Equal(t, []string{"tone", "facts"}, m.Tags)
		assert.Equal(t, "m-1", snap.SelectedMessageID)
	})

	t.Run("校验失败时消息不变", func(t *testing.T) {
		ws := newChatted(t, nil)
		invalid := domain.Quality("meh")
		preferred := "better"
		err := ws.Annotate("m-1", Annotation{
			Quality:   &invalid,
			Preferred: &preferred,
			AddTags:   []string{"tone"},
		})
		assert.True(t, domain.IsValidation(err))

		m, _ := ws.Snapshot().Message("m-1")
		assert.Empty(t, m.Quality)
		assert.Nil(t, m.Preferred)
		assert.Empty(t, m.Tags)
	})

	t.Run("消息不存在时不选中", func(t *testing.T) {
		ws := newChatted(t, nil)
		good := domain.QualityGood
		err := ws.Annotate("missing", Annotation{Quality: &good, Select: true})
		assert.ErrorIs(t, err, domain.ErrMessageNotFound)
		assert.Equal(t, "m-1", ws.Snapshot().SelectedMessageID)
	})
}

func TestWorkspace_SetRerank(t *testing.T) {
	ws := newTestWorkspace(Deps{})
	assert.Equal(t, domain.DefaultRerankSettings(), ws.Rerank())

	require.NoError(t, ws.SetRerank(domain.RerankSettings{Method: domain.RerankLLM, TopK: 3, Weight: 0.2}))
	assert.Equal(t, domain.RerankLLM, ws.Rerank().Method)

	assert.True(t, domain.IsValidation(ws.SetRerank(domain.RerankSettings{Method: "bm25", TopK: 3})))
	assert.True(t, domain.IsValidation(ws.SetRerank(domain.RerankSettings{Method: domain.RerankNone, TopK: 0})))
}

func TestRegistry(t *testing.T) {
	pusher := &recordingPusher{}
	reg := NewRegistry(Deps{Events: pusher})

	ws := reg.Create()
	got, err := reg.Get(ws.ID())
	require.NoError(t, err)
	assert.Same(t, ws, got)
	assert.Equal(t, []string{ws.ID()}, reg.List())

	require.NoError(t, reg.Close(ws.ID()))
	_, err = reg.Get(ws.ID())
	assert.ErrorIs(t, err, domain.ErrWorkspaceNotFound)
	assert.ErrorIs(t, reg.Close(ws.ID()), domain.ErrWorkspaceNotFound)
	assert.Contains(t, pusher.kinds(), domain.EventWorkspaceClosed)

	t.Run("回收空闲工作区", func(t *testing.T) {
		now := time.Now()
		reg := NewRegistry(Deps{})
		reg.now = func() time.Time { return now }
		reg.Create()

		assert.Equal(t, 0, reg.Sweep(time.Hour))
		now = now.Add(2 * time.Hour)
		assert.Equal(t, 1, reg.Sweep(time.Hour))
		assert.Equal(t, 0, reg.Count())
	})

	reg.Start()
	reg.Stop()
	reg.Stop()
}
