package trainer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunksWithScores(scores ...float64) []Chunk {
	out := make([]Chunk, 0, len(scores))
	for i, s := range scores {
		out = append(out, Chunk{
			ID:      string(rune('a' + i)),
			Content: "content",
			Score:   Float64(s),
			Tags:    []string{"t"},
		})
	}
	return out
}

func ids(chunks []Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.ID)
	}
	return out
}

func TestRerank_LengthIsMinOfTopKAndInput(t *testing.T) {
	chunks := chunksWithScores(0.1, 0.9, 0.5, 0.3)

	for _, method := range []RerankMethod{RerankNone, RerankCosine, RerankLLM} {
		t.Run(string(method), func(t *testing.T) {
			assert.Len(t, Rerank(RerankRequest{Method: method, Weight: 0.5, TopK: 2, Chunks: chunks}), 2)
			assert.Len(t, Rerank(RerankRequest{Method: method, Weight: 0.5, TopK: 10, Chunks: chunks}), 4)
		})
	}
}

func TestRerank_SortedDescending(t *testing.T) {
	chunks := chunksWithScores(0.2, 0.8, 0.4, 0.6, 0.1)

	for _, method := range []RerankMethod{RerankNone, RerankCosine, RerankLLM} {
		t.Run(string(method), func(t *testing.T) {
			out := Rerank(RerankRequest{Method: method, Weight: 1, TopK: 5, Chunks: chunks})
			for i := 1; i < len(out); i++ {
				assert.GreaterOrEqual(t, out[i-1].ScoreValue(), out[i].ScoreValue())
			}
		})
	}
}

func TestRerank_DoesNotMutateInput(t *testing.T) {
	chunks := chunksWithScores(0.2, 0.8, 0.4)
	chunks[0].Metadata = map[string]any{"page": 1}

	out := Rerank(RerankRequest{Method: RerankCosine, Weight: 0.5, TopK: 3, Chunks: chunks})

	// 输入顺序和分数不变
	assert.Equal(t, []string{"a", "b", "c"}, ids(chunks))
	assert.Equal(t, 0.2, chunks[0].ScoreValue())
	assert.Equal(t, 0.8, chunks[1].ScoreValue())

	// 修改输出不影响输入
	out[0].Tags[0] = "changed"
	*out[0].Score = 42
	for _, c := range out {
		if c.Metadata != nil {
			c.Metadata["page"] = 99
		}
	}
	assert.Equal(t, "t", chunks[1].Tags[0])
	assert.Equal(t, 0.8, chunks[1].ScoreValue())
	assert.Equal(t, 1, chunks[0].Metadata["page"])
}

func TestRerank_NoneKeepsScores(t *testing.T) {
	chunks := chunksWithScores(0.3, 0.7)

	out := Rerank(RerankRequest{Method: RerankNone, Weight: 1, TopK: 5, Chunks: chunks})

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, 0.7, out[0].ScoreValue())
	assert.Equal(t, 0.3, out[1].ScoreValue())
}

func TestRerank_StableForTies(t *testing.T) {
	chunks := chunksWithScores(0.5, 0.5, 0.5, 0.9)

	out := Rerank(RerankRequest{Method: RerankCosine, Weight: 0.5, TopK: 4, Chunks: chunks})

	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(out))
}

func TestRerank_Formulas(t *testing.T) {
	t.Run("cosine 线性放大", func(t *testing.T) {
		out := Rerank(RerankRequest{Method: RerankCosine, Weight: 0.5, TopK: 1, Chunks: chunksWithScores(0.5)})
		require.Len(t, out, 1)
		assert.InDelta(t, 0.55, out[0].ScoreValue(), 1e-9)
	})

	t.Run("llm-re-rank 按位置放大", func(t *testing.T) {
		chunks := chunksWithScores(1, 1, 1)
		out := Rerank(RerankRequest{Method: RerankLLM, Weight: 0.5, TopK: 3, Chunks: chunks})
		require.Len(t, out, 3)

		// sin(1) > sin(2/3) > sin(1/3)，位置越靠后放大越多
		assert.Equal(t, []string{"c", "b", "a"}, ids(out))
		assert.InDelta(t, 1+0.5*math.Sin(1)*0.1, out[0].ScoreValue(), 1e-9)
		assert.InDelta(t, 1.0420735, out[0].ScoreValue(), 1e-6)
		assert.InDelta(t, 1.0309185, out[1].ScoreValue(), 1e-6)
		assert.InDelta(t, 1.0163597, out[2].ScoreValue(), 1e-6)
	})

	t.Run("缺省分数按 0 处理", func(t *testing.T) {
		chunks := []Chunk{{ID: "x"}, {ID: "y", Score: Float64(0.1)}}
		out := Rerank(RerankRequest{Method: RerankCosine, Weight: 1, TopK: 2, Chunks: chunks})
		require.Len(t, out, 2)
		assert.Equal(t, "y", out[0].ID)
		require.NotNil(t, out[1].Score)
		assert.Equal(t, 0.0, *out[1].Score)
	})

	t.Run("未知方法按 none 处理", func(t *testing.T) {
		out := Rerank(RerankRequest{Method: "bm25", Weight: 1, TopK: 2, Chunks: chunksWithScores(0.4, 0.6)})
		require.Len(t, out, 2)
		assert.Equal(t, 0.6, out[0].ScoreValue())
	})
}

func TestRerank_EdgeCases(t *testing.T) {
	out := Rerank(RerankRequest{Method: RerankCosine, Weight: 0.5, TopK: 5})
	assert.NotNil(t, out)
	assert.Empty(t, out)

	// TopK <= 0 不截断
	out = Rerank(RerankRequest{Method: RerankNone, TopK: 0, Chunks: chunksWithScores(0.1, 0.2, 0.3)})
	assert.Len(t, out, 3)
}

func TestRerankMethod_Valid(t *testing.T) {
	assert.True(t, RerankNone.Valid())
	assert.True(t, RerankCosine.Valid())
	assert.True(t, RerankLLM.Valid())
	assert.False(t, RerankMethod("bm25").Valid())
}
