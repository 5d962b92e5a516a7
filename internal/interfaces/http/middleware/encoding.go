package middleware

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

// EnsureUTF8Body 把非 UTF-8 的 JSON 请求体按 GBK 解码
// 问题和期望答案经常从 Windows 终端粘贴过来
// multipart 上传保持原样
func EnsureUTF8Body() gin.HandlerFunc {
	logger := log.NewModuleLogger("http", "encoding")
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 ||
			strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		c.Request.Body.Close()
		if err != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		if len(body) > 0 && !utf8.Valid(body) {
			if converted, err := gbkToUTF8(body); err == nil && utf8.Valid(converted) {
				logger.Debug("Request body converted from GBK",
					"path", c.Request.URL.Path,
					"bytes", len(body),
				)
				body = converted
				c.Request.ContentLength = int64(len(body))
			}
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func gbkToUTF8(b []byte) ([]byte, error) {
	reader := transform.NewReader(bytes.NewReader(b), simplifiedchinese.GBK.NewDecoder())
	return io.ReadAll(reader)
}
