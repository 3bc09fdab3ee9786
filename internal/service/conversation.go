package service

import (
	"context"
	"fmt"

	"github.com/Rrens/chat-to-task/internal/agent"
	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/google/uuid"
)

// ConversationService handles conversation listing and lifecycle
type ConversationService struct {
	conversationRepo domain.ConversationRepository
	messageRepo      domain.MessageRepository
}

// NewConversationService creates a new conversation service
func NewConversationService(conversationRepo domain.ConversationRepository, messageRepo domain.MessageRepository) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

// List returns the user's conversations, most recently active first
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	conversations, err := s.conversationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// Get returns one owned conversation with its recent messages
func (s *ConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID, messageLimit int) (*domain.Conversation, []domain.Message, error) {
	conversation, err := s.conversationRepo.Get(ctx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conversation == nil {
		return nil, nil, agent.ErrNotFound
	}
	if conversation.UserID != userID {
		return nil, nil, agent.ErrUnauthorized
	}

	if messageLimit <= 0 || messageLimit > 200 {
		messageLimit = 100
	}
	messages, err := s.messageRepo.ListByConversation(ctx, conversationID, messageLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return conversation, messages, nil
}

// Delete removes an owned conversation and its history
func (s *ConversationService) Delete(ctx context.Context, userID, conversationID uuid.UUID) error {
	deleted, err := s.conversationRepo.Delete(ctx, userID, conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if !deleted {
		return agent.ErrNotFound
	}
	return nil
}
