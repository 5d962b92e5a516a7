package response

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"校验错误", trainer.NewValidationError("question", "Question is required"), http.StatusBadRequest},
		{"超时", &trainer.TimeoutError{Operation: "Chat"}, http.StatusRequestTimeout},
		{"上游状态透传", &trainer.UpstreamError{Operation: "Login", StatusCode: 401}, http.StatusUnauthorized},
		{"上游状态不可用", &trainer.UpstreamError{Operation: "Chat", StatusCode: 200}, http.StatusInternalServerError},
		{"消息不存在", fmt.Errorf("wrap: %w", trainer.ErrMessageNotFound), http.StatusNotFound},
		{"工作区不存在", trainer.ErrWorkspaceNotFound, http.StatusNotFound},
		{"角色错误", trainer.ErrInvalidRole, http.StatusBadRequest},
		{"缺少问题", trainer.ErrMissingQuestion, http.StatusUnprocessableEntity},
		{"版本冲突", trainer.ErrVersionConflict, http.StatusConflict},
		{"其他错误", errors.New("boom"), http.StatusInternalServerError},
		{"取消", context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestSuccessWith(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWith(c, gin.H{"success": false, "sessionId": "7"})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "7", body["sessionId"])
}

func TestFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("超时", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		FromError(c, &trainer.TimeoutError{Operation: "Login"})

		assert.Equal(t, http.StatusRequestTimeout, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Login request timed out. Please try again.", body.Error)
		assert.Empty(t, body.Field)
	})

	t.Run("校验错误不带字段前缀", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		err := fmt.Errorf("delete: %w", trainer.NewValidationError("documentId", "Document ID is required"))
		FromError(c, err)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.False(t, body.Success)
		assert.Equal(t, "Document ID is required", body.Error)
		assert.Equal(t, "documentId", body.Field)
	})
}
