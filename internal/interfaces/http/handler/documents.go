package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/interfaces/http/response"
)

// maxUploadSize 单个上传文件的大小上限
const maxUploadSize = 50 << 20

// DocumentHandler 部门、文档与片段
type DocumentHandler struct {
	departments *proxy.DepartmentService
	documents   *proxy.DocumentService
	chunks      *proxy.ChunkService
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(
	departments *proxy.DepartmentService,
	documents *proxy.DocumentService,
	chunks *proxy.ChunkService,
) *DocumentHandler {
	return &DocumentHandler{
		departments: departments,
		documents:   documents,
		chunks:      chunks,
	}
}

// Departments 部门列表
// @Summary 部门列表
// @Description 后端不可用时返回本地备用列表，并带 fallback 和 error 字段
// @Tags 文档
// @Produce json
// @Success 200 {object} response.Response{data=[]trainer.Department}
// @Router /departments [get]
func (h *DocumentHandler) Departments(c *gin.Context) {
	res := h.departments.List(c.Request.Context())
	if !res.Fallback {
		response.Success(c, res.Departments)
		return
	}
	response.SuccessWith(c, gin.H{
		"data":     res.Departments,
		"fallback": true,
		"error":    res.Err.Error(),
	})
}

// List 部门下的文档
// @Summary 文档列表
// @Tags 文档
// @Produce json
// @Param departmentId query string false "部门 id，为空时列出全部"
// @Success 200 {object} response.Response{data=[]trainer.Document}
// @Failure 500 {object} response.Response
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), c.Query("departmentId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if docs == nil {
		docs = []trainer.Document{}
	}
	response.Success(c, docs)
}

// DeleteRequest 删除文档请求
type DeleteRequest struct {
	DocumentID   string `json:"documentId"`
	DepartmentID string `json:"departmentId"`
}

// Delete 删除文档
// @Summary 删除文档
// @Description fail-open 策略下后端失败仍返回成功，并带 fallback 字段
// @Tags 文档
// @Accept json
// @Produce json
// @Param body body DeleteRequest true "文档 id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /documents [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.documents.Delete(c.Request.Context(), req.DocumentID, req.DepartmentID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, deleteFields(res))
}

func deleteFields(res *proxy.DeleteResult) gin.H {
	fields := gin.H{}
	for k, v := range res.Ack {
		fields[k] = v
	}
	fields["message"] = "Document deleted successfully"
	fields["documentId"] = res.DocumentID
	if res.Fallback {
		fields["fallback"] = true
		fields["error"] = res.Err.Error()
	}
	return fields
}

// Upload 上传文档
// @Summary 上传文档
// @Tags 文档
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文档文件"
// @Param departmentId formData string false "部门 id，默认 general"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := readUpload(c)
	if err != nil {
		response.FromError(c, err)
		return
	}

	res, err := h.documents.Upload(c.Request.Context(), c.PostForm("departmentId"), *file)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, uploadFields(res))
}

func uploadFields(res *trainer.UploadResult) gin.H {
	fields := gin.H{}
	for k, v := range res.Raw {
		fields[k] = v
	}
	fields["doc"] = res.Document
	chunks := res.Chunks
	if chunks == nil {
		chunks = []trainer.Chunk{}
	}
	fields["chunks"] = chunks
	return fields
}

// readUpload 读取 multipart 中的 file 字段
func readUpload(c *gin.Context) (*trainer.UploadFile, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, trainer.NewValidationError("file", "No file provided")
	}
	if header.Size > maxUploadSize {
		return nil, trainer.NewValidationError("file", fmt.Sprintf("File exceeds %d MB", maxUploadSize>>20))
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &trainer.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// Chunks 文档片段
// @Summary 文档片段
// @Tags 文档
// @Produce json
// @Param documentId query string true "文档 id"
// @Success 200 {object} response.Response{data=[]trainer.Chunk}
// @Failure 400 {object} response.Response
// @Router /chunks [get]
func (h *DocumentHandler) Chunks(c *gin.Context) {
	chunks, err := h.chunks.List(c.Request.Context(), c.Query("documentId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if chunks == nil {
		chunks = []trainer.Chunk{}
	}
	response.Success(c, chunks)
}
