package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// 操作名，同时用于超时提示和指标标签
const (
	OpLogin          = "Login"
	OpSession        = "Session creation"
	OpDepartments    = "Departments"
	OpDocuments      = "Documents"
	OpDocumentDelete = "Document delete"
	OpUpload         = "Upload"
	OpChunks         = "Chunks"
	OpChat           = "Chat"
	OpFeedback       = "Feedback"
)

// maxErrorBody 读取错误响应体的上限
const maxErrorBody = 64 << 10

// Client 外部后端客户端
// 每个方法对应后端的一个能力，使用各自固定的超时
type Client struct {
	baseURL    string
	timeouts   config.TimeoutsConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient 创建后端客户端
func NewClient(cfg *config.BackendConfig) *Client {
	return NewClientWithHTTP(cfg, &http.Client{})
}

// NewClientWithHTTP 使用指定的 http.Client 创建后端客户端
func NewClientWithHTTP(cfg *config.BackendConfig, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeouts:   cfg.Timeouts,
		httpClient: httpClient,
		logger:     log.NewModuleLogger("backend", "client"),
	}
}

// BaseURL 返回后端地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request 一次后端调用的描述
type request struct {
	op          string
	timeout     time.Duration
	method      string
	path        string
	body        io.Reader
	contentType string
	header      http.Header
}

// jsonRequest 构造 JSON 请求体
func jsonRequest(op string, timeout time.Duration, method, path string, payload any) (request, error) {
	r := request{op: op, timeout: timeout, method: method, path: path, contentType: "application/json"}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("failed to marshal %s request: %w", strings.ToLower(op), err)
		}
		r.body = bytes.NewReader(data)
	}
	return r, nil
}

// do 发送请求并把 2xx 响应解码到 out
// 超时返回 TimeoutError，非 2xx 或响应体无法解析返回 UpstreamError
func (c *Client) do(ctx context.Context, r request, out any) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	url := c.baseURL + r.path
	req, err := http.NewRequestWithContext(ctx, r.method, url, r.body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", strings.ToLower(r.op), err)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	logger := log.FromContext(ctx, c.logger)
	logger.Debug("Calling backend", "operation", r.op, "method", r.method, "url", url)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			metrics.RecordUpstream(r.op, metrics.OutcomeTimeout, time.Since(start))
			logger.Warn("Backend call timed out", "operation", r.op, "timeout", r.timeout)
			return &trainer.TimeoutError{Operation: r.op}
		}
		metrics.RecordUpstream(r.op, metrics.OutcomeError, time.Since(start))
		return fmt.Errorf("%s request failed: %w", strings.ToLower(r.op), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordUpstream(r.op, metrics.OutcomeUpstream, time.Since(start))
		upErr := upstreamError(r.op, resp)
		logger.Warn("Backend returned error status",
			"operation", r.op,
			"status", resp.StatusCode,
			"message", upErr.Message,
		)
		return upErr
	}

	if out != nil {
		// 空响应体按成功处理
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			metrics.RecordUpstream(r.op, metrics.OutcomeUpstream, time.Since(start))
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return &trainer.TimeoutError{Operation: r.op}
			}
			return &trainer.UpstreamError{
				Operation:  r.op,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("invalid %s response: %v", strings.ToLower(r.op), err),
			}
		}
	}

	metrics.RecordUpstream(r.op, metrics.OutcomeSuccess, time.Since(start))
	return nil
}

// upstreamError 从错误响应中提取 message 字段
func upstreamError(op string, resp *http.Response) *trainer.UpstreamError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message any    `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch m := payload.Message.(type) {
		case string:
			msg = m
		case []any:
			parts := make([]string, 0, len(m))
			for _, p := range m {
				parts = append(parts, fmt.Sprint(p))
			}
			msg = strings.Join(parts, "; ")
		}
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("%s failed with status %d", op, resp.StatusCode)
	}

	return &trainer.UpstreamError{
		Operation:  op,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}
