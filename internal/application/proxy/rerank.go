package proxy

import (
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// RerankInput 重排参数，nil 字段使用默认值
type RerankInput struct {
	Method string
	Weight *float64
	TopK   *int
	Chunks []trainer.Chunk
}

// RerankService 重排
type RerankService struct{}

// NewRerankService 创建重排服务
func NewRerankService() *RerankService {
	return &RerankService{}
}

// Rerank 补全默认值后重排
// 未指定方法时不调整分数
func (s *RerankService) Rerank(in RerankInput) ([]trainer.Chunk, error) {
	req := trainer.RerankRequest{
		Method: trainer.RerankMethod(in.Method),
		Weight: trainer.DefaultRerankWeight,
		TopK:   trainer.DefaultRerankTopK,
		Chunks: in.Chunks,
	}
	if req.Method == "" {
		req.Method = trainer.RerankNone
	}
	if in.Weight != nil {
		req.Weight = *in.Weight
	}
	if in.TopK != nil {
		if *in.TopK <= 0 {
			return nil, trainer.NewValidationError("topK", "topK must be a positive integer")
		}
		req.TopK = *in.TopK
	}

	out := trainer.Rerank(req)
	metrics.RecordRerank(string(req.Method), len(out))
	return out, nil
}
