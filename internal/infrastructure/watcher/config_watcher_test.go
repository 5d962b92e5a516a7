package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWatcher_EmptyPath(t *testing.T) {
	_, err := NewConfigWatcher("", 0, nil)
	assert.Error(t, err)
}

func TestConfigWatcher_ReloadsPolicies(t *testing.T) {
	t.Setenv(config.EnvDeletePolicy, "")
	t.Setenv(config.EnvFeedbackPolicy, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  document_delete: fail-open\n"), 0o644))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	store := config.NewPolicyStore(cfg)

	var reloads atomic.Int32
	w, err := NewConfigWatcher(path, 50*time.Millisecond, func(next *config.Config) {
		store.Update(next.Policy)
		reloads.Add(1)
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	// 连续写入只触发一次重新加载
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("policy:\n  document_delete: fail-closed\n"), 0o644))
	}

	assert.Eventually(t, func() bool {
		return store.Policies().DocumentDelete == trainer.FailClosed
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), reloads.Load())
}

func TestConfigWatcher_InvalidFileKeepsPrevious(t *testing.T) {
	t.Setenv(config.EnvDeletePolicy, "")
	t.Setenv(config.EnvFeedbackPolicy, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("policy:\n  feedback_submit: fail-closed\n"), 0o644))

	var reloads atomic.Int32
	w, err := NewConfigWatcher(path, 20*time.Millisecond, func(*config.Config) { reloads.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(path, []byte("policy:\n  feedback_submit: sometimes\n"), 0o644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())

	w.Stop()
	w.Stop()
}
