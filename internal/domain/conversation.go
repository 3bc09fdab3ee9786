package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Conversation represents a chat thread owned by a single user
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	Get(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Conversation, error)
	Update(ctx context.Context, conversation *Conversation) error
	// Delete removes the conversation and its messages. Returns false when the
	// conversation does not exist or is not owned by userID.
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
}
