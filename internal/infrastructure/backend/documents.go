package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// filterQuery 构造后端的过滤参数 field||eq||value
func filterQuery(field, value string) string {
	return "?filter=" + url.QueryEscape(field+"||eq||"+value)
}

// ListDocuments 调用 GET /documents，departmentID 为空时不过滤
func (c *Client) ListDocuments(ctx context.Context, departmentID string) ([]trainer.Document, error) {
	path := "/documents"
	if departmentID != "" {
		path += filterQuery("department.id", departmentID)
	}
	r := request{
		op:          OpDocuments,
		timeout:     c.timeouts.Documents,
		method:      http.MethodGet,
		path:        path,
		contentType: "application/json",
	}

	var dtos []documentDTO
	if err := c.do(ctx, r, &dtos); err != nil {
		return nil, err
	}

	out := make([]trainer.Document, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// DeleteDocument 调用 DELETE /documents/<id>
func (c *Client) DeleteDocument(ctx context.Context, documentID string) (map[string]any, error) {
	r := request{
		op:          OpDocumentDelete,
		timeout:     c.timeouts.Delete,
		method:      http.MethodDelete,
		path:        "/documents/" + url.PathEscape(documentID),
		contentType: "application/json",
	}

	var raw json.RawMessage
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	// 确认体不一定是对象
	ack := map[string]any{}
	_ = json.Unmarshal(raw, &ack)
	return ack, nil
}

// UploadDocument 调用 POST /documents/upload（multipart）
func (c *Client) UploadDocument(ctx context.Context, departmentID string, file trainer.UploadFile) (*trainer.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("failed to write upload part: %w", err)
	}
	if err := mw.WriteField("departmentId", departmentID); err != nil {
		return nil, fmt.Errorf("failed to write department field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload body: %w", err)
	}

	r := request{
		op:          OpUpload,
		timeout:     c.timeouts.Upload,
		method:      http.MethodPost,
		path:        "/documents/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}

	var raw map[string]any
	if err := c.do(ctx, r, &raw); err != nil {
		return nil, err
	}

	var parsed struct {
		Doc    *documentDTO `json:"doc"`
		Chunks []chunkDTO   `json:"chunks"`
	}
	if err := remarshal(raw, &parsed); err != nil {
		return nil, err
	}

	result := &trainer.UploadResult{Raw: raw, Chunks: make([]trainer.Chunk, 0, len(parsed.Chunks))}
	if parsed.Doc != nil {
		result.Document = parsed.Doc.toDomain()
		if result.Document.DepartmentID == "" {
			result.Document.DepartmentID = departmentID
		}
		if result.Document.Name == "" {
			result.Document.Name = file.Filename
		}
	}
	size := int64(len(file.Data))
	result.Document.Size = &size
	for _, ch := range parsed.Chunks {
		result.Chunks = append(result.Chunks, ch.toDomain())
	}
	return result, nil
}

// remarshal 把通用 map 转成具体结构
func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to re-encode response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
