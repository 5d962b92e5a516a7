package proxy

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
	"github.com/ragtrainer/gateway/internal/infrastructure/metrics"
)

// DefaultUploadDepartment 上传未指定部门时使用
const DefaultUploadDepartment = "general"

// DeleteResult 删除结果
type DeleteResult struct {
	DocumentID string
	Ack        map[string]any
	// Fallback 后端失败但按 fail-open 策略视为成功
	Fallback bool
	Err      error
}

// DocumentService 文档列表、删除和上传
type DocumentService struct {
	backend  Backend
	policies PolicySource
	tokens   TokenCounter
	logger   *slog.Logger
}

// NewDocumentService 创建文档服务
func NewDocumentService(b Backend, policies PolicySource, tokens TokenCounter) *DocumentService {
	return &DocumentService{
		backend:  b,
		policies: policies,
		tokens:   tokens,
		logger:   log.NewModuleLogger("proxy", "documents"),
	}
}

// List 列出部门下的文档，departmentID 为空时列出全部
func (s *DocumentService) List(ctx context.Context, departmentID string) ([]trainer.Document, error) {
	docs, err := s.backend.ListDocuments(ctx, departmentID)
	if err != nil {
		s.logger.Warn("Failed to fetch documents", "department_id", departmentID, "error", err)
		return nil, err
	}
	return docs, nil
}

// Delete 删除文档
// 后端失败时按 document_delete 策略处理
func (s *DocumentService) Delete(ctx context.Context, documentID, departmentID string) (*DeleteResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, trainer.NewValidationError("documentId", "Document ID is required")
	}

	s.logger.Info("Deleting document", "document_id", documentID, "department_id", departmentID)

	ack, err := s.backend.DeleteDocument(ctx, documentID)
	if err == nil {
		return &DeleteResult{DocumentID: documentID, Ack: ack}, nil
	}

	if s.policies.Policies().DocumentDelete == trainer.FailOpen {
		s.logger.Warn("Document delete failed upstream, continuing with local deletion",
			"document_id", documentID,
			"error", err,
		)
		metrics.RecordFallback("document_delete")
		return &DeleteResult{DocumentID: documentID, Fallback: true, Err: err}, nil
	}
	return nil, err
}

// Upload 上传文档，departmentID 为空时使用 general
func (s *DocumentService) Upload(ctx context.Context, departmentID string, file trainer.UploadFile) (*trainer.UploadResult, error) {
	if file.Filename == "" || len(file.Data) == 0 {
		return nil, trainer.NewValidationError("file", "No file provided")
	}
	if departmentID == "" {
		departmentID = DefaultUploadDepartment
	}

	s.logger.Info("Uploading document",
		"filename", file.Filename,
		"department_id", departmentID,
		"size", len(file.Data),
	)

	res, err := s.backend.UploadDocument(ctx, departmentID, file)
	if err != nil {
		return nil, err
	}
	s.tokens.Annotate(res.Chunks)
	return res, nil
}
