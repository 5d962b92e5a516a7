package trainer

import (
	"math"
	"sort"
)

// RerankMethod 重排方法
type RerankMethod string

const (
	// RerankNone 不调整分数
	RerankNone RerankMethod = "none"
	// RerankCosine 固定线性放大（名称沿用上游，并未计算向量相似度）
	RerankCosine RerankMethod = "cosine"
	// RerankLLM 按位置的正弦曲线放大，不调用任何模型
	RerankLLM RerankMethod = "llm-re-rank"
)

const (
	// DefaultRerankWeight 默认权重
	DefaultRerankWeight = 0.5
	// DefaultRerankTopK 默认返回数量
	DefaultRerankTopK = 5
)

// Valid 检查方法是否为已知取值
func (m RerankMethod) Valid() bool {
	switch m {
	case RerankNone, RerankCosine, RerankLLM:
		return true
	}
	return false
}

// RerankRequest 一次重排的参数，按调用构造，不持久化
type RerankRequest struct {
	Method RerankMethod `json:"method"`
	Weight float64      `json:"weight"`
	TopK   int          `json:"topK"`
	Chunks []Chunk      `json:"chunks"`
}

// RerankSettings 工作区的重排配置
type RerankSettings struct {
	Method RerankMethod `json:"method"`
	TopK   int          `json:"topK"`
	Weight float64      `json:"weight"`
}

// DefaultRerankSettings 工作区初始重排配置
func DefaultRerankSettings() RerankSettings {
	return RerankSettings{
		Method: RerankCosine,
		TopK:   DefaultRerankTopK,
		Weight: DefaultRerankWeight,
	}
}

// Request 用当前配置构造重排请求
func (s RerankSettings) Request(chunks []Chunk) RerankRequest {
	return RerankRequest{
		Method: s.Method,
		Weight: s.Weight,
		TopK:   s.TopK,
		Chunks: chunks,
	}
}

// Rerank 对片段重新打分、稳定降序排序并截断到 TopK
// 返回新列表，输入列表及其片段不被修改
// TopK <= 0 时不截断
func Rerank(req RerankRequest) []Chunk {
	scored := make([]Chunk, 0, len(req.Chunks))
	for idx, c := range req.Chunks {
		out := c.Clone()
		s := ScoreAt(req.Method, req.Weight, idx, c.ScoreValue())
		out.Score = &s
		scored = append(scored, out)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Score > *scored[j].Score
	})

	if req.TopK > 0 && req.TopK < len(scored) {
		scored = scored[:req.TopK]
	}
	return scored
}

// ScoreAt 计算位于 idx（从 0 开始）的片段在指定方法下的新分数
// 未知方法按 none 处理
func ScoreAt(method RerankMethod, weight float64, idx int, score float64) float64 {
	switch method {
	case RerankCosine:
		return score * (1 + weight*0.2)
	case RerankLLM:
		boost := math.Sin(float64(idx+1)/3) * 0.1
		return score * (1 + weight*boost)
	default:
		return score
	}
}
