package backend

import (
	"context"
	"net/http"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// ListChunks 调用 GET /chunks，按文档过滤
func (c *Client) ListChunks(ctx context.Context, documentID string) ([]trainer.Chunk, error) {
	r := request{
		op:          OpChunks,
		timeout:     c.timeouts.Chunks,
		method:      http.MethodGet,
		path:        "/chunks" + filterQuery("document.id", documentID),
		contentType: "application/json",
	}

	var dtos []chunkDTO
	if err := c.do(ctx, r, &dtos); err != nil {
		return nil, err
	}

	out := make([]trainer.Chunk, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}
