package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cases := []struct {
		name string
		env  string
		want string
	}{
		{"未设置时使用家目录", "", filepath.Join(home, ".ragtrainer")},
		{"展开波浪线", "~/trainer", filepath.Join(home, "trainer")},
		{"仅波浪线", "~", home},
		{"绝对路径原样返回", "/var/lib/trainer/", "/var/lib/trainer"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolveDataDir(tc.env))
		})
	}
}

func TestGetDataDir_Cached(t *testing.T) {
	ResetDataDir()
	defer ResetDataDir()

	t.Setenv(EnvDataDir, "/first/path")
	assert.Equal(t, "/first/path", GetDataDir())

	t.Setenv(EnvDataDir, "/second/path")
	assert.Equal(t, "/first/path", GetDataDir())

	ResetDataDir()
	assert.Equal(t, "/second/path", GetDataDir())
	assert.Equal(t, filepath.Join("/second/path", "trainer.db"), DataPath("trainer.db"))
}
