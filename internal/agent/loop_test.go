package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func toolCall(name, arguments string) llm.ToolCall {
	return llm.ToolCall{ID: name, Name: name, Arguments: json.RawMessage(arguments)}
}

func TestLoop_PlainReplyWithoutTools(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{
		{Content: "You have nothing urgent today."},
	}}
	loop := NewLoop(newTestDispatcher(new(MockTaskRepository)), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), uuid.New(), nil, "anything urgent?", "", "")

	assert.NoError(t, err)
	assert.Equal(t, "You have nothing urgent today.", result.Reply)
	assert.Empty(t, result.Invocations)
	assert.False(t, result.LoopExceeded)
	assert.Equal(t, "scripted-1", result.Model)
}

func TestLoop_AddTaskRoundTrip(t *testing.T) {
	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
		return task.UserID == userID && task.Title == "Call the dentist"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Task).ID = 9
	}).Return(nil)

	provider := &scriptedProvider{completions: []*llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("add_task", `{"title":"Call the dentist"}`)}},
		{Content: "Done, I added \"Call the dentist\" as task 9."},
	}}
	loop := NewLoop(newTestDispatcher(tasks), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), userID, nil, "remind me to call the dentist", "scripted", "")

	assert.NoError(t, err)
	assert.Contains(t, result.Reply, "task 9")
	assert.Len(t, result.Invocations, 1)
	assert.Equal(t, "add_task", result.Invocations[0].ToolName)
	assert.Contains(t, string(result.Invocations[0].Result), `"success":true`)
	tasks.AssertExpectations(t)

	// The second provider call must carry the tool result back.
	assert.Len(t, provider.requests, 2)
	last := provider.requests[1].Messages
	assert.Equal(t, llm.RoleTool, last[len(last)-1].Role)
	assert.Contains(t, last[len(last)-1].Content, `"status":"created"`)
}

func TestLoop_EmptyCompletionGetsFallbackReply(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{
		{Content: ""},
	}}
	loop := NewLoop(newTestDispatcher(new(MockTaskRepository)), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), uuid.New(), nil, "hello?", "", "")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
	assert.Contains(t, result.Reply, "rephrase")
	assert.Empty(t, result.Invocations)
	assert.False(t, result.LoopExceeded)
}

func TestLoop_WhitespaceCompletionGetsFallbackReply(t *testing.T) {
	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("Stats", mock.Anything, userID).Return(&domain.TaskStats{Total: 2}, nil)

	provider := &scriptedProvider{completions: []*llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("get_task_statistics", `{}`)}},
		{Content: "  \n "},
	}}
	loop := NewLoop(newTestDispatcher(tasks), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), userID, nil, "how many tasks?", "", "")

	assert.NoError(t, err)
	assert.NotEmpty(t, result.Reply)
	assert.Len(t, result.Invocations, 1)
	tasks.AssertExpectations(t)
}

func TestLoop_HistoryPrecedesNewMessage(t *testing.T) {
	provider := &scriptedProvider{completions: []*llm.Completion{
		{Content: "ok"},
	}}
	loop := NewLoop(newTestDispatcher(new(MockTaskRepository)), newScriptedRouter(provider), 5)

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "add milk to my list"},
		{Role: domain.RoleAssistant, Content: "Added \"buy milk\" as task 1."},
	}

	_, err := loop.RunTurn(context.Background(), uuid.New(), history, "what's on my list?", "", "")

	assert.NoError(t, err)
	msgs := provider.requests[0].Messages
	assert.Len(t, msgs, 3)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Equal(t, "add milk to my list", msgs[0].Content)
	assert.Equal(t, llm.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "what's on my list?", msgs[2].Content)
	assert.Equal(t, llm.SystemPrompt, provider.requests[0].System)
}

func TestLoop_ChainedCallsRunSequentially(t *testing.T) {
	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("List", mock.Anything, userID, domain.FilterAll).Return([]domain.Task{
		{ID: 2, UserID: userID, Title: "team meeting prep"},
	}, nil)
	tasks.On("Stats", mock.Anything, userID).Return(&domain.TaskStats{Total: 1, Pending: 1}, nil)
	tasks.On("Get", mock.Anything, userID, int64(2)).Return(&domain.Task{
		ID: 2, UserID: userID, Title: "team meeting prep",
	}, nil)
	tasks.On("Delete", mock.Anything, userID, int64(2)).Return(true, nil)

	provider := &scriptedProvider{completions: []*llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("list_tasks", `{"filter":"all"}`)}},
		{ToolCalls: []llm.ToolCall{toolCall("delete_task", `{"task_id":2}`)}},
		{Content: "I removed the meeting task."},
	}}
	loop := NewLoop(newTestDispatcher(tasks), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), userID, nil, "delete the meeting task", "", "")

	assert.NoError(t, err)
	assert.Len(t, result.Invocations, 2)
	assert.Equal(t, "list_tasks", result.Invocations[0].ToolName)
	assert.Equal(t, "delete_task", result.Invocations[1].ToolName)
	assert.False(t, result.LoopExceeded)
	tasks.AssertExpectations(t)
}

func TestLoop_FailedToolResultReachesModel(t *testing.T) {
	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("Get", mock.Anything, userID, int64(99)).Return(nil, nil)

	provider := &scriptedProvider{completions: []*llm.Completion{
		{ToolCalls: []llm.ToolCall{toolCall("complete_task", `{"task_id":99}`)}},
		{Content: "I couldn't find task 99 in your list."},
	}}
	loop := NewLoop(newTestDispatcher(tasks), newScriptedRouter(provider), 5)

	result, err := loop.RunTurn(context.Background(), userID, nil, "finish task 99", "", "")

	assert.NoError(t, err)
	assert.Contains(t, result.Reply, "couldn't find")
	assert.Len(t, result.Invocations, 1)
	assert.Contains(t, string(result.Invocations[0].Result), CodeNotFound)

	last := provider.requests[1].Messages
	assert.Contains(t, last[len(last)-1].Content, `"success":false`)
}

func TestLoop_RoundBudgetExhausted(t *testing.T) {
	userID := uuid.New()
	tasks := new(MockTaskRepository)
	tasks.On("Stats", mock.Anything, userID).Return(&domain.TaskStats{}, nil)

	completions := make([]*llm.Completion, 3)
	for i := range completions {
		completions[i] = &llm.Completion{
			ToolCalls: []llm.ToolCall{toolCall("get_task_statistics", `{}`)},
		}
	}

	provider := &scriptedProvider{completions: completions}
	loop := NewLoop(newTestDispatcher(tasks), newScriptedRouter(provider), 3)

	result, err := loop.RunTurn(context.Background(), userID, nil, "loop forever", "", "")

	assert.NoError(t, err)
	assert.True(t, result.LoopExceeded)
	assert.NotEmpty(t, result.Reply)
	assert.Len(t, result.Invocations, 3)
	assert.Equal(t, 3, provider.calls)
}

func TestLoop_UnknownProvider(t *testing.T) {
	provider := &scriptedProvider{}
	loop := NewLoop(newTestDispatcher(new(MockTaskRepository)), newScriptedRouter(provider), 5)

	_, err := loop.RunTurn(context.Background(), uuid.New(), nil, "hi", "nonexistent", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}
