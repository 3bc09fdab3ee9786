package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ChatRequest is the inbound shape for one chat turn
type ChatRequest struct {
	Message        string    `json:"message" validate:"required,max=4000"`
	ConversationID uuid.UUID `json:"conversation_id,omitempty"`
	LLMProvider    string    `json:"llm_provider,omitempty"`
	LLMModel       string    `json:"llm_model,omitempty"`
}

// ToolCallInfo describes one tool invocation in a chat response
type ToolCallInfo struct {
	ToolName   string          `json:"tool_name"`
	Parameters json.RawMessage `json:"parameters"`
	Result     json.RawMessage `json:"result"`
}

// ChatResponse is the outbound shape for one committed turn
type ChatResponse struct {
	ConversationID uuid.UUID      `json:"conversation_id"`
	Response       string         `json:"response"`
	ToolCalls      []ToolCallInfo `json:"tool_calls,omitempty"`
}
