package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
)

// RerankChunksInput 重排序工具输入
type RerankChunksInput struct {
	Method string          `json:"method,omitempty" jsonschema:"Rerank method: none, cosine or llm-re-rank"`
	Weight *float64        `json:"weight,omitempty" jsonschema:"Boost weight, defaults to 0.5"`
	TopK   *int            `json:"top_k,omitempty" jsonschema:"Number of chunks to keep, defaults to 5"`
	Chunks []trainer.Chunk `json:"chunks" jsonschema:"Chunks to rerank"`
}

// RerankChunksOutput 重排序工具输出
type RerankChunksOutput struct {
	Chunks []trainer.Chunk `json:"chunks" jsonschema:"Reordered chunks"`
}

func (s *MCPServer) rerankChunksTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RerankChunksInput,
) (*mcp.CallToolResult, RerankChunksOutput, error) {
	output := RerankChunksOutput{Chunks: []trainer.Chunk{}}

	if input.Method != "" && !trainer.RerankMethod(input.Method).Valid() {
		return nil, output, fmt.Errorf("unknown rerank method %q", input.Method)
	}

	chunks, err := s.rerank.Rerank(proxy.RerankInput{
		Method: input.Method,
		Weight: input.Weight,
		TopK:   input.TopK,
		Chunks: input.Chunks,
	})
	if err != nil {
		return nil, output, err
	}
	output.Chunks = chunks
	return nil, output, nil
}

// RerankSettingsInput 查询重排序设置
type RerankSettingsInput struct {
	WorkspaceID string `json:"workspace_id,omitempty" jsonschema:"Review workspace id (optional)"`
}

// RerankSettingsOutput 重排序设置
type RerankSettingsOutput struct {
	Method    string  `json:"method" jsonschema:"Rerank method"`
	TopK      int     `json:"top_k" jsonschema:"Number of chunks kept"`
	Weight    float64 `json:"weight" jsonschema:"Boost weight"`
	ReRanking bool    `json:"re_ranking" jsonschema:"Global re-ranking switch"`
	Source    string  `json:"source" jsonschema:"workspace or default"`
}

func (s *MCPServer) getRerankSettingsTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input RerankSettingsInput,
) (*mcp.CallToolResult, RerankSettingsOutput, error) {
	rs := trainer.DefaultRerankSettings()
	output := RerankSettingsOutput{Source: "default"}

	if input.WorkspaceID != "" {
		ws, err := s.registry.Get(input.WorkspaceID)
		if err != nil {
			return nil, output, err
		}
		rs = ws.Rerank()
		output.Source = "workspace"
	}
	output.Method = string(rs.Method)
	output.TopK = rs.TopK
	output.Weight = rs.Weight

	global, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("Failed to read settings", "error", err)
		global = trainer.DefaultSettings()
	}
	output.ReRanking = global.ReRanking
	return nil, output, nil
}

// FeedbackHistoryInput 反馈历史查询
type FeedbackHistoryInput struct {
	ChatMessageID string `json:"chat_message_id" jsonschema:"Chat message id (required)"`
}

// FeedbackSubmission 一次反馈提交
type FeedbackSubmission struct {
	FeedbackType string `json:"feedback_type" jsonschema:"correction or improvement"`
	DepartmentID string `json:"department_id,omitempty" jsonschema:"Department the answer was reviewed in"`
	Outcome      string `json:"outcome" jsonschema:"submitted, failed or fallback"`
	SubmittedAt  string `json:"submitted_at" jsonschema:"RFC3339 time"`
}

// FeedbackHistoryOutput 反馈历史
type FeedbackHistoryOutput struct {
	Submissions []FeedbackSubmission `json:"submissions" jsonschema:"Submissions, oldest first"`
	Total       int                  `json:"total" jsonschema:"Number of submissions"`
}

func (s *MCPServer) getFeedbackHistoryTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input FeedbackHistoryInput,
) (*mcp.CallToolResult, FeedbackHistoryOutput, error) {
	output := FeedbackHistoryOutput{Submissions: []FeedbackSubmission{}}
	if input.ChatMessageID == "" {
		return nil, output, fmt.Errorf("chat_message_id is required")
	}

	entries, err := s.feedback.History(ctx, input.ChatMessageID)
	if err != nil {
		return nil, output, fmt.Errorf("failed to read feedback history: %w", err)
	}
	for _, e := range entries {
		output.Submissions = append(output.Submissions, FeedbackSubmission{
			FeedbackType: string(e.FeedbackType),
			DepartmentID: e.DepartmentID,
			Outcome:      e.Outcome,
			SubmittedAt:  e.SubmittedAt.Format(time.RFC3339),
		})
	}
	output.Total = len(output.Submissions)
	return nil, output, nil
}
