package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents one exchange unit inside a conversation
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	UserID         *uuid.UUID  `json:"user_id,omitempty"` // nil for assistant messages
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	CreatedAt      time.Time   `json:"created_at"`
}

// MessageRepository defines the interface for message storage.
// Messages are only ever written as part of an atomic turn commit
// (see TurnRepository); this interface is read-only.
type MessageRepository interface {
	// ListByConversation returns the latest messages in chronological order
	// (oldest first).
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
}
