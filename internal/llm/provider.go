package llm

import (
	"context"
	"encoding/json"
)

// Role identifies the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// Message is one entry in the chat transcript sent to a provider.
// Assistant messages may carry ToolCalls instead of text; tool messages carry
// the serialized result of the call identified by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// Tool describes one callable operation in the catalog handed to the model.
// Parameters is a JSON-schema object description.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request contains everything a provider needs for one reasoning step
type Request struct {
	System   string
	Messages []Message
	Tools    []Tool
}

// Completion is the provider's answer: either a final text reply or a batch
// of tool calls to execute (never both).
type Completion struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// IsToolCall reports whether the completion requests tool execution
func (c *Completion) IsToolCall() bool {
	return len(c.ToolCalls) > 0
}

// Provider defines the interface for reasoning providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Complete runs one reasoning step over the transcript and tool catalog
	Complete(ctx context.Context, req Request, model string) (*Completion, error)
}
