package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rrens/chat-to-task/internal/llm"
	"github.com/stretchr/testify/assert"
)

func newTestProvider(handler http.HandlerFunc) (*Provider, *httptest.Server) {
	server := httptest.NewServer(handler)
	p := NewProvider("test-key", "gpt-4o-mini").(*Provider)
	p.baseURL = server.URL
	return p, server
}

func TestComplete_SendsToolsAndSystemPrompt(t *testing.T) {
	var captured chatRequest
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices":[{"message":{"content":"Hello!"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`))
	})
	defer server.Close()

	completion, err := p.Complete(context.Background(), llm.Request{
		System: "You manage tasks.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "hi"},
		},
		Tools: []llm.Tool{{
			Name:        "list_tasks",
			Description: "List tasks",
			Parameters:  map[string]any{"type": "object"},
		}},
	}, "")

	assert.NoError(t, err)
	assert.Equal(t, "Hello!", completion.Content)
	assert.False(t, completion.IsToolCall())
	assert.Equal(t, 12, completion.TokensUsed)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "You manage tasks.", captured.Messages[0].Content)
	assert.Len(t, captured.Tools, 1)
	assert.Equal(t, "function", captured.Tools[0].Type)
	assert.Equal(t, "list_tasks", captured.Tools[0].Function.Name)
}

func TestComplete_ParsesToolCalls(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"","tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"add_task","arguments":"{\"title\":\"Buy milk\"}"}}
		]},"finish_reason":"tool_calls"}],"usage":{"total_tokens":30}}`))
	})
	defer server.Close()

	completion, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "add milk"}},
	}, "gpt-4o")

	assert.NoError(t, err)
	assert.True(t, completion.IsToolCall())
	assert.Len(t, completion.ToolCalls, 1)
	assert.Equal(t, "call_1", completion.ToolCalls[0].ID)
	assert.Equal(t, "add_task", completion.ToolCalls[0].Name)
	assert.JSONEq(t, `{"title":"Buy milk"}`, string(completion.ToolCalls[0].Arguments))
}

func TestComplete_RoundTripsToolResults(t *testing.T) {
	var captured chatRequest
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"choices":[{"message":{"content":"Done."},"finish_reason":"stop"}]}`))
	})
	defer server.Close()

	_, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "add milk"},
			{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{
				ID: "call_1", Name: "add_task", Arguments: json.RawMessage(`{"title":"Buy milk"}`),
			}}},
			{Role: llm.RoleTool, Content: `{"success":true}`, ToolCallID: "call_1", ToolName: "add_task"},
		},
	}, "")

	assert.NoError(t, err)
	assert.Len(t, captured.Messages, 3)
	assert.Equal(t, "call_1", captured.Messages[1].ToolCalls[0].ID)
	assert.Equal(t, `{"title":"Buy milk"}`, captured.Messages[1].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool", captured.Messages[2].Role)
	assert.Equal(t, "call_1", captured.Messages[2].ToolCallID)
}

func TestComplete_APIError(t *testing.T) {
	p, server := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})
	defer server.Close()

	_, err := p.Complete(context.Background(), llm.Request{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	}, "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestComplete_NotConfigured(t *testing.T) {
	p := NewProvider("", "")

	_, err := p.Complete(context.Background(), llm.Request{}, "")

	assert.Error(t, err)
}
