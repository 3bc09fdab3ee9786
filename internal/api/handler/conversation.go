package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rrens/chat-to-task/internal/agent"
	"github.com/Rrens/chat-to-task/internal/api/middleware"
	"github.com/Rrens/chat-to-task/internal/api/response"
	"github.com/Rrens/chat-to-task/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ConversationHandler handles conversation endpoints
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversationService *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

// List returns the user's conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	conversations, err := h.conversationService.List(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w, "failed to list conversations")
		return
	}

	response.OK(w, map[string]any{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// Get returns one conversation with its recent messages
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	conversation, messages, err := h.conversationService.Get(r.Context(), userID, conversationID, limit)
	if err != nil {
		writeConversationError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"conversation": conversation,
		"messages":     messages,
	})
}

// Delete removes a conversation and its history
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		response.BadRequest(w, "invalid conversation ID")
		return
	}

	if err := h.conversationService.Delete(r.Context(), userID, conversationID); err != nil {
		writeConversationError(w, err)
		return
	}

	response.NoContent(w)
}

func writeConversationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agent.ErrNotFound):
		response.NotFound(w, "conversation not found")
	case errors.Is(err, agent.ErrUnauthorized):
		response.Forbidden(w, "conversation belongs to another user")
	default:
		response.InternalError(w, "conversation operation failed")
	}
}
