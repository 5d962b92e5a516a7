package trainer

import (
	"errors"
	"fmt"
)

var (
	// ErrMessageNotFound 消息不存在
	ErrMessageNotFound = errors.New("message not found")
	// ErrInvalidRole 只有助手消息可以提交反馈
	ErrInvalidRole = errors.New("feedback can only be submitted for assistant messages")
	// ErrMissingQuestion 助手消息之前没有用户提问
	ErrMissingQuestion = errors.New("no preceding user question for message")
	// ErrVersionConflict 设置版本冲突
	ErrVersionConflict = errors.New("settings version conflict")
	// ErrWorkspaceNotFound 工作区不存在
	ErrWorkspaceNotFound = errors.New("workspace not found")
)

// ValidationError 请求参数校验失败，不会调用后端
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 创建校验错误
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TimeoutError 后端调用超时
type TimeoutError struct {
	Operation string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out. Please try again.", e.Operation)
}

// UpstreamError 后端返回非 2xx
type UpstreamError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with status %d", e.Operation, e.StatusCode)
}

// Status 返回应透传给调用方的 HTTP 状态码
// 上游状态码不是错误码时返回 500
func (e *UpstreamError) Status() int {
	if e.StatusCode < 400 {
		return 500
	}
	return e.StatusCode
}

// IsValidation 判断是否为校验错误
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsTimeout 判断是否为超时错误
func IsTimeout(err error) bool {
	var t *TimeoutError
	return errors.As(err, &t)
}
