package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt is the assistant persona for task management turns
const SystemPrompt = `You are a helpful assistant for managing todo tasks. You can help users:
- Add new tasks to their todo list
- View their tasks (all, pending, or completed)
- Mark tasks as completed
- Update task details (title, description, priority, due date)
- Delete tasks
- Get statistics about their tasks

Be conversational, friendly, and helpful. When users ask to do something with their tasks, use the appropriate tools.
Always confirm actions and name the affected task in your reply.

Rules:
1. Never invent a task ID. If you need an ID you cannot see in the conversation, call list_tasks first or ask the user.
2. When a tool reports an error, explain it in plain language; never show raw error codes.
3. When listing tasks, format them nicely and include relevant details like priority and due dates.
4. If a user's request is ambiguous, ask a clarifying question instead of guessing.`

// BuildTitlePrompt creates a prompt asking for a short conversation title
func BuildTitlePrompt(firstMessage string) string {
	return fmt.Sprintf(`Generate a very short title (at most 6 words) for a conversation that starts with the message below.
Reply with the title only, no quotes, no punctuation at the end.

Message: %s`, firstMessage)
}

// CleanTitle normalizes a model-generated conversation title
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	title = strings.Trim(title, `"'`)
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if len(title) > 60 {
		title = title[:60]
	}
	return title
}
