package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Rrens/chat-to-task/internal/agent"
	"github.com/Rrens/chat-to-task/internal/api/middleware"
	"github.com/Rrens/chat-to-task/internal/api/response"
	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/service"
)

// ChatHandler handles conversational task-management endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// SendMessage processes one chat turn
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	resp, err := h.chatService.SendMessage(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrNotFound):
			response.NotFound(w, "conversation not found")
		case errors.Is(err, agent.ErrUnauthorized):
			response.Forbidden(w, "conversation belongs to another user")
		case errors.Is(err, agent.ErrPersistenceFailure):
			response.Error(w, http.StatusServiceUnavailable, "failed to save the conversation turn, please retry")
		default:
			response.InternalError(w, "failed to process message")
		}
		return
	}

	response.OK(w, resp)
}
