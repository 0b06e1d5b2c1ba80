package conversation

import (
	"context"
	"encoding/json"
)

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// ToolSpec declares one callable operation to the model: a name, a
// natural-language description the model uses to decide when to call it, and
// a JSON schema for its input.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolUse is a structured tool-call request returned by the model. ID is an
// opaque correlation id; Input is the raw JSON arguments, decoded to a typed
// struct at the dispatch boundary.
type ToolUse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ContentBlock is one element of a model response: either plain text or a
// tool-call request, never both.
type ContentBlock struct {
	Text    string   `json:"text,omitempty"`
	ToolUse *ToolUse `json:"tool_use,omitempty"`
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	Tools       []ToolSpec
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Blocks     []ContentBlock
	Usage      TokenUsage
	StopReason string
}

type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
