package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/chat-to-task/internal/agent"
	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultConversationTitle = "New Conversation"

// ChatService runs conversational task-management turns. The service itself
// is stateless: every turn rebuilds its context from storage, and every turn
// is committed atomically before the reply is returned.
type ChatService struct {
	conversationRepo domain.ConversationRepository
	messageRepo      domain.MessageRepository
	turnRepo         domain.TurnRepository
	loop             *agent.Loop
	llmRouter        *llm.Router
	historyLimit     int
}

// NewChatService creates a new chat service
func NewChatService(
	conversationRepo domain.ConversationRepository,
	messageRepo domain.MessageRepository,
	turnRepo domain.TurnRepository,
	loop *agent.Loop,
	llmRouter *llm.Router,
	historyLimit int,
) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		turnRepo:         turnRepo,
		loop:             loop,
		llmRouter:        llmRouter,
		historyLimit:     historyLimit,
	}
}

// SendMessage processes one chat turn for the user: resolve the conversation,
// rebuild context from stored history, run the bounded reasoning loop, and
// commit the whole turn before replying.
func (s *ChatService) SendMessage(ctx context.Context, userID uuid.UUID, req domain.ChatRequest) (*domain.ChatResponse, error) {
	startTime := time.Now()

	conversation, isNew, err := s.resolveConversation(ctx, userID, req.ConversationID, startTime)
	if err != nil {
		return nil, err
	}

	var history []domain.Message
	if !isNew {
		history, err = s.messageRepo.ListByConversation(ctx, conversation.ID, s.historyLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	result, err := s.loop.RunTurn(ctx, userID, history, req.Message, req.LLMProvider, req.LLMModel)
	if err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}

	turn, toolCalls := s.buildTurn(conversation, userID, req.Message, result)
	if err := s.turnRepo.CommitTurn(ctx, turn); err != nil {
		log.Error().
			Err(err).
			Str("conversation_id", conversation.ID.String()).
			Msg("failed to commit turn")
		return nil, fmt.Errorf("%w: %v", agent.ErrPersistenceFailure, err)
	}

	log.Info().
		Str("conversation_id", conversation.ID.String()).
		Str("model", result.Model).
		Int("tool_calls", len(result.Invocations)).
		Bool("loop_exceeded", result.LoopExceeded).
		Int64("latency_ms", time.Since(startTime).Milliseconds()).
		Msg("chat turn completed")

	if isNew {
		go s.generateTitle(conversation, req.Message, req.LLMProvider, result.Model)
	}

	return &domain.ChatResponse{
		ConversationID: conversation.ID,
		Response:       result.Reply,
		ToolCalls:      toolCalls,
	}, nil
}

// resolveConversation loads an existing conversation and checks ownership, or
// creates a fresh one when no ID was supplied.
func (s *ChatService) resolveConversation(ctx context.Context, userID, conversationID uuid.UUID, now time.Time) (*domain.Conversation, bool, error) {
	if conversationID != uuid.Nil {
		conversation, err := s.conversationRepo.Get(ctx, conversationID)
		if err != nil {
			return nil, false, fmt.Errorf("failed to get conversation: %w", err)
		}
		if conversation == nil {
			return nil, false, agent.ErrNotFound
		}
		if conversation.UserID != userID {
			return nil, false, agent.ErrUnauthorized
		}
		return conversation, false, nil
	}

	conversation := &domain.Conversation{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     defaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, true, nil
}

func (s *ChatService) buildTurn(conversation *domain.Conversation, userID uuid.UUID, userMessage string, result *agent.TurnResult) (*domain.Turn, []domain.ToolCallInfo) {
	now := time.Now()

	userMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		UserID:         &userID,
		Role:           domain.RoleUser,
		Content:        userMessage,
		CreatedAt:      now,
	}
	assistantMsg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		Role:           domain.RoleAssistant,
		Content:        result.Reply,
		CreatedAt:      now.Add(time.Millisecond),
	}

	invocations := make([]domain.ToolInvocation, 0, len(result.Invocations))
	toolCalls := make([]domain.ToolCallInfo, 0, len(result.Invocations))
	for i, inv := range result.Invocations {
		invocations = append(invocations, domain.ToolInvocation{
			ID:             uuid.New(),
			ConversationID: conversation.ID,
			UserID:         userID,
			MessageID:      assistantMsg.ID,
			Seq:            i + 1,
			ToolName:       inv.ToolName,
			Params:         inv.Params,
			Result:         inv.Result,
			CreatedAt:      now,
		})
		toolCalls = append(toolCalls, domain.ToolCallInfo{
			ToolName:   inv.ToolName,
			Parameters: inv.Params,
			Result:     inv.Result,
		})
	}

	return &domain.Turn{
		ConversationID:   conversation.ID,
		UserID:           userID,
		UserMessage:      userMsg,
		Invocations:      invocations,
		AssistantMessage: assistantMsg,
	}, toolCalls
}

// generateTitle asks the model for a short conversation title after the first
// turn. Best effort; a failure leaves the default title in place.
func (s *ChatService) generateTitle(conversation *domain.Conversation, firstMessage, providerName, model string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	provider, err := s.llmRouter.GetProvider(providerName)
	if err != nil {
		log.Warn().Err(err).Msg("title generation skipped")
		return
	}

	completion, err := provider.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: llm.BuildTitlePrompt(firstMessage)},
		},
	}, model)
	if err != nil {
		log.Warn().Err(err).Msg("title generation failed")
		return
	}

	title := llm.CleanTitle(completion.Content)
	if title == "" {
		return
	}

	conversation.Title = title
	conversation.UpdatedAt = time.Now()
	if err := s.conversationRepo.Update(ctx, conversation); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversation.ID.String()).Msg("failed to save conversation title")
	}
}
