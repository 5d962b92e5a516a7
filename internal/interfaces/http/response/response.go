package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// Response 统一响应结构
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Field 校验失败的字段
	Field   string `json:"field,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// SuccessWith 成功响应，fields 作为顶层字段输出
// fields 中的 success 会被覆盖
func SuccessWith(c *gin.Context, fields gin.H) {
	body := make(gin.H, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Success: false,
		Error:   message,
	})
}

// FromError 按错误类型选择状态码
// 校验错误只返回提示文本，字段名单独放在 field
func FromError(c *gin.Context, err error) {
	var validation *trainer.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   validation.Message,
			Field:   validation.Field,
		})
		return
	}
	Error(c, StatusOf(err), err.Error())
}

// StatusOf 错误到 HTTP 状态码的映射
func StatusOf(err error) int {
	var (
		validation *trainer.ValidationError
		timeout    *trainer.TimeoutError
		upstream   *trainer.UpstreamError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &timeout):
		return http.StatusRequestTimeout
	case errors.As(err, &upstream):
		return upstream.Status()
	case errors.Is(err, trainer.ErrMessageNotFound),
		errors.Is(err, trainer.ErrWorkspaceNotFound):
		return http.StatusNotFound
	case errors.Is(err, trainer.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, trainer.ErrMissingQuestion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, trainer.ErrVersionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
