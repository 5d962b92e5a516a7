package tokenizer

import (
	"testing"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/stretchr/testify/assert"
)

func TestCounter_CountTokens(t *testing.T) {
	c := Default()

	assert.Equal(t, 0, c.CountTokens(""))
	assert.Equal(t, 2, c.CountTokens("hello world"))
	assert.Greater(t, c.CountTokens("报销流程需要部门经理审批"), 0)
}

func TestCounter_Annotate(t *testing.T) {
	chunks := []trainer.Chunk{
		{ID: "1", Content: "hello world"},
		{ID: "2", Content: ""},
	}

	Default().Annotate(chunks)

	assert.Equal(t, 2, chunks[0].TokenCount)
	assert.Equal(t, 0, chunks[1].TokenCount)
}

func TestEstimateFallback(t *testing.T) {
	var c *Counter
	assert.Equal(t, 3, c.CountTokens("abcdefghij"))
	assert.Equal(t, 1, (&Counter{}).CountTokens("ab"))
}
