package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	exhaustedReply = "I wasn't able to finish that request in a reasonable number of steps. Could you break it into smaller pieces and try again?"
	blankReply     = "I'm sorry, I couldn't come up with a response. Could you rephrase that?"
)

// InvocationRecord captures one executed tool call for persistence.
type InvocationRecord struct {
	ToolName string
	Params   json.RawMessage
	Result   json.RawMessage
}

// TurnResult is the outcome of one bounded reasoning turn.
type TurnResult struct {
	Reply        string
	Invocations  []InvocationRecord
	LoopExceeded bool
	Model        string
	TokensUsed   int
}

// Loop drives the reasoning cycle for a single turn: hand the model the
// conversation and the tool catalog, execute whatever it calls, feed the
// results back, and stop once it answers in plain text or the round
// budget runs out.
type Loop struct {
	dispatcher *Dispatcher
	router     *llm.Router
	maxRounds  int
}

func NewLoop(dispatcher *Dispatcher, router *llm.Router, maxRounds int) *Loop {
	if maxRounds <= 0 {
		maxRounds = 5
	}
	return &Loop{
		dispatcher: dispatcher,
		router:     router,
		maxRounds:  maxRounds,
	}
}

// RunTurn executes one conversational turn for userID. The history is the
// stored transcript, oldest first, and userMessage is the new input. Tool
// calls are dispatched strictly in order, one at a time, each result
// appended before the model is consulted again.
func (l *Loop) RunTurn(ctx context.Context, userID uuid.UUID, history []domain.Message, userMessage, providerName, model string) (*TurnResult, error) {
	provider, err := l.router.GetProvider(providerName)
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = provider.DefaultModel()
	}

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.Message{
			Role:    llm.Role(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})

	result := &TurnResult{Model: model}
	catalog := l.dispatcher.Registry().Catalog()

	for round := 0; round < l.maxRounds; round++ {
		completion, err := provider.Complete(ctx, llm.Request{
			System:   llm.SystemPrompt,
			Messages: messages,
			Tools:    catalog,
		}, model)
		if err != nil {
			return nil, fmt.Errorf("reasoning request failed: %w", err)
		}
		result.TokensUsed += completion.TokensUsed

		if !completion.IsToolCall() {
			// A completion with neither text nor tool calls is a protocol
			// anomaly; stored assistant messages must carry content.
			if strings.TrimSpace(completion.Content) == "" {
				log.Warn().
					Str("user_id", userID.String()).
					Str("model", model).
					Int("round", round).
					Msg("provider returned an empty completion, substituting fallback reply")
				result.Reply = blankReply
				return result, nil
			}
			result.Reply = completion.Content
			return result, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		for _, call := range completion.ToolCalls {
			toolResult := l.dispatcher.Execute(ctx, userID, call.Name, call.Arguments)
			payload := toolResult.Payload()

			result.Invocations = append(result.Invocations, InvocationRecord{
				ToolName: toolResult.ToolName,
				Params:   toolResult.Params,
				Result:   payload,
			})

			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    string(payload),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	log.Warn().
		Str("user_id", userID.String()).
		Int("max_rounds", l.maxRounds).
		Int("tool_calls", len(result.Invocations)).
		Msg("reasoning loop exhausted round budget")

	result.Reply = exhaustedReply
	result.LoopExceeded = true
	return result, nil
}
