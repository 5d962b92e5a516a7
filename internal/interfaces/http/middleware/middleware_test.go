package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func echoRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), EnsureUTF8Body())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Header("X-Seen-Request-ID", log.RequestIDFromContext(c.Request.Context()))
		c.Data(http.StatusOK, "text/plain; charset=utf-8", body)
	})
	return r
}

func TestEnsureUTF8Body(t *testing.T) {
	t.Run("GBK 请求体转换为 UTF-8", func(t *testing.T) {
		gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(`{"question":"年假几天"}`))
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(gbk))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		echoRouter().ServeHTTP(w, req)

		assert.Equal(t, `{"question":"年假几天"}`, w.Body.String())
	})

	t.Run("UTF-8 请求体保持不变", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader([]byte(`{"q":"中文"}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		echoRouter().ServeHTTP(w, req)

		assert.Equal(t, `{"q":"中文"}`, w.Body.String())
	})

	t.Run("multipart 不处理", func(t *testing.T) {
		raw := []byte{0xff, 0xfe, 0x00}
		req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		w := httptest.NewRecorder()
		echoRouter().ServeHTTP(w, req)

		assert.Equal(t, raw, w.Body.Bytes())
	})
}

func TestRequestID(t *testing.T) {
	t.Run("生成请求 id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		w := httptest.NewRecorder()
		echoRouter().ServeHTTP(w, req)

		id := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, w.Header().Get("X-Seen-Request-ID"))
	})

	t.Run("沿用调用方的请求 id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", nil)
		req.Header.Set(RequestIDHeader, "abc")
		w := httptest.NewRecorder()
		echoRouter().ServeHTTP(w, req)

		assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
	})
}
