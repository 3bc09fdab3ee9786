package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ToolInvocation is an immutable audit record of one tool call inside a turn
type ToolInvocation struct {
	ID             uuid.UUID       `json:"id"`
	ConversationID uuid.UUID       `json:"conversation_id"`
	UserID         uuid.UUID       `json:"user_id"`
	MessageID      uuid.UUID       `json:"message_id"` // assistant message that concluded the turn
	Seq            int             `json:"seq"`
	ToolName       string          `json:"tool_name"`
	Params         json.RawMessage `json:"params"`
	Result         json.RawMessage `json:"result"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Turn is one complete request/response cycle: the user message, the tool
// invocations made while producing the reply, and the assistant reply itself.
type Turn struct {
	ConversationID   uuid.UUID
	UserID           uuid.UUID
	UserMessage      *Message
	Invocations      []ToolInvocation
	AssistantMessage *Message
}

// TurnRepository commits a whole turn as one atomic unit. Either every part of
// the turn is durably stored or none of it is; a concurrent or subsequent
// history read never observes a partial turn.
type TurnRepository interface {
	CommitTurn(ctx context.Context, turn *Turn) error
}
