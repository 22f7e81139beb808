package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/kudos/internal/errors"
	"github.com/hpungsan/kudos/internal/feedback"
	"github.com/hpungsan/kudos/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	pipeline *ops.Pipeline
	log      *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(p *ops.Pipeline, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{pipeline: p, log: log.Named("mcp")}
}

// Request types for each tool

// SubmitRequest represents the arguments for feedback_submit.
type SubmitRequest struct {
	Rating *int   `json:"rating"`
	Review string `json:"review"`
}

// IDRequest represents the arguments for tools addressing one record.
type IDRequest struct {
	ID int64 `json:"id"`
}

// ListRequest represents the arguments for feedback_list.
type ListRequest struct {
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
	Pending bool   `json:"pending,omitempty"`
	Bucket  string `json:"bucket,omitempty"`
}

// HandleSubmit handles the feedback_submit tool call.
func (h *Handlers) HandleSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Rating == nil {
		return errorResult(errors.NewInvalidRequest("rating is required")), nil
	}
	if err := feedback.CheckRating(*input.Rating); err != nil {
		return errorResult(err), nil
	}

	result, err := h.pipeline.Submit(ctx, ops.SubmitInput{Rating: *input.Rating, Review: input.Review})
	if err != nil {
		return h.failure(err), nil
	}

	return successResult(result)
}

// HandleRegenerate handles the feedback_regenerate tool call.
func (h *Handlers) HandleRegenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.pipeline.Regenerate(ctx, ops.RegenerateInput{ID: input.ID})
	if err != nil {
		return h.failure(err), nil
	}

	return successResult(result)
}

// HandleList handles the feedback_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.pipeline.List(ctx, ops.ListInput{
		Limit:   input.Limit,
		Offset:  input.Offset,
		Pending: input.Pending,
		Bucket:  input.Bucket,
	})
	if err != nil {
		return h.failure(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the feedback_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := h.pipeline.Fetch(ctx, ops.FetchInput{ID: input.ID})
	if err != nil {
		return h.failure(err), nil
	}

	return successResult(result)
}

// HandleStats handles the feedback_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.pipeline.Stats(ctx))
}

// Result helpers

// failure logs server-side errors before converting them.
func (h *Handlers) failure(err error) *mcp.CallToolResult {
	var kErr *errors.KudosError
	if !stderrors.As(err, &kErr) || kErr.Status >= 500 {
		h.log.Error("tool call failed", zap.Error(err))
	}
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal and storage error details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var kErr *errors.KudosError
	if stderrors.As(err, &kErr) {
		errorObj := map[string]any{
			"code":    kErr.Code,
			"message": kErr.Message,
			"status":  kErr.Status,
		}
		if kErr.Code != errors.ErrInternal && kErr.Code != errors.ErrStorage && kErr.Details != nil {
			errorObj["details"] = kErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
