package backend

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// idString 后端 id 可能是数字或字符串，统一转为字符串
func idString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// departmentDTO 后端部门结构
type departmentDTO struct {
	ID   any    `json:"id"`
	Name string `json:"name"`
}

func (d *departmentDTO) toDomain() *trainer.Department {
	if d == nil {
		return nil
	}
	return &trainer.Department{ID: idString(d.ID), Name: d.Name}
}

// documentDTO 后端文档结构
type documentDTO struct {
	ID         any            `json:"id"`
	Filename   string         `json:"filename"`
	Department *departmentDTO `json:"department"`
	CreatedAt  string         `json:"createdAt"`
}

func (d documentDTO) toDomain() trainer.Document {
	doc := trainer.Document{
		ID:        idString(d.ID),
		Name:      d.Filename,
		CreatedAt: d.CreatedAt,
	}
	if dep := d.Department.toDomain(); dep != nil {
		doc.Department = dep
		doc.DepartmentID = dep.ID
	}
	return doc
}

// chunkDocumentDTO 片段所属文档
type chunkDocumentDTO struct {
	ID        any    `json:"id"`
	Filename  string `json:"filename"`
	CreatedAt string `json:"createdAt"`
}

// chunkDTO 后端片段结构，正文字段名为 text
type chunkDTO struct {
	ID           any               `json:"id"`
	Text         string            `json:"text"`
	SectionTitle string            `json:"section_title"`
	Metadata     map[string]any    `json:"metadata"`
	StartIndex   *int              `json:"start_index"`
	EndIndex     *int              `json:"end_index"`
	Document     *chunkDocumentDTO `json:"document"`
}

func (c chunkDTO) toDomain() trainer.Chunk {
	chunk := trainer.Chunk{
		ID:           idString(c.ID),
		Content:      c.Text,
		SectionTitle: c.SectionTitle,
		Metadata:     c.Metadata,
		StartIndex:   c.StartIndex,
		EndIndex:     c.EndIndex,
	}
	if c.Document != nil {
		chunk.Source = c.Document.Filename
		chunk.Document = &trainer.DocumentRef{
			ID:        int64OrZero(c.Document.ID),
			Filename:  c.Document.Filename,
			CreatedAt: c.Document.CreatedAt,
		}
	}
	return chunk
}

// sourceDTO 问答返回的引用来源
type sourceDTO struct {
	ChunkID      any      `json:"chunk_id"`
	SectionTitle string   `json:"section_title"`
	StartIndex   *int     `json:"start_index"`
	EndIndex     *int     `json:"end_index"`
	Reference    string   `json:"reference"`
	Score        *float64 `json:"score"`
	Source       string   `json:"source"`
	Content      string   `json:"content"`
}

func (s sourceDTO) toDomain() trainer.Chunk {
	return trainer.Chunk{
		ID:           idString(s.ChunkID),
		Content:      s.Content,
		SectionTitle: s.SectionTitle,
		StartIndex:   s.StartIndex,
		EndIndex:     s.EndIndex,
		Reference:    s.Reference,
		Score:        s.Score,
		Source:       s.Source,
	}
}

func int64OrZero(v any) int64 {
	n, err := strconv.ParseInt(idString(v), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
