package backend

import (
	"context"
	"net/http"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// ListDepartments 调用 GET /departments
func (c *Client) ListDepartments(ctx context.Context) ([]trainer.Department, error) {
	r := request{
		op:          OpDepartments,
		timeout:     c.timeouts.Departments,
		method:      http.MethodGet,
		path:        "/departments",
		contentType: "application/json",
	}

	var dtos []departmentDTO
	if err := c.do(ctx, r, &dtos); err != nil {
		return nil, err
	}

	out := make([]trainer.Department, 0, len(dtos))
	for i := range dtos {
		out = append(out, *dtos[i].toDomain())
	}
	return out, nil
}
