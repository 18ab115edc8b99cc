package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap-backend/internal/common"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/internal/middleware"
	"github.com/skillswap/skillswap-backend/internal/service"
	"github.com/skillswap/skillswap-backend/internal/ws"
)

// ChatHandler handles conversation and message HTTP requests. Mutations that
// room members care about are also pushed through the hub.
type ChatHandler struct {
	service service.ChatService
	hub     *ws.Hub
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(service service.ChatService, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{service: service, hub: hub}
}

// GetOrCreateConversation handles POST /api/chat/conversation
// @Summary Open (or fetch) the conversation with another user
// @Tags chat
// @Accept json
// @Produce json
// @Param request body domain.CreateConversationRequest true "receiver"
// @Success 200 {object} common.APIResponse{data=domain.ConversationResponse}
// @Security BearerAuth
// @Router /chat/conversation [post]
func (h *ChatHandler) GetOrCreateConversation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "receiver_id is required", err)
		return
	}

	conv, err := h.service.GetOrCreateConversation(userID, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidPair):
			common.ErrorResponse(c, http.StatusBadRequest, "Cannot open a conversation with yourself", err)
		case errors.Is(err, common.ErrUserNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Receiver not found", err)
		case errors.Is(err, common.ErrNotConnected):
			common.ErrorResponse(c, http.StatusForbidden, "No accepted connection with this user", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get or create conversation", err)
		}
		return
	}

	common.SuccessResponse(c, conv, nil)
}

// GetMessages handles GET /api/chat/messages/:conversationId
// @Summary List a conversation's messages and mark them read
// @Tags chat
// @Produce json
// @Param conversationId path int true "conversation id"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Security BearerAuth
// @Router /chat/messages/{conversationId} [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	conversationID, err := strconv.ParseInt(c.Param("conversationId"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation id", err)
		return
	}

	messages, marked, err := h.service.GetMessages(conversationID, userID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConversationNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Conversation not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Not a participant of this conversation", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load messages", err)
		}
		return
	}

	// Listing marked everything read; tell the room so senders can flip
	// their "sent" indicators to "seen".
	if marked > 0 {
		h.hub.BroadcastRead(conversationID, userID)
	}

	common.SuccessResponse(c, messages, nil)
}

// SendMessage handles POST /api/chat/message
// @Summary Append a message to a conversation
// @Tags chat
// @Accept json
// @Produce json
// @Param request body domain.SendMessageRequest true "message"
// @Success 200 {object} common.APIResponse{data=domain.MessageResponse}
// @Security BearerAuth
// @Router /chat/message [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "conversation_id and text are required", err)
		return
	}

	msg, err := h.service.SendMessage(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrEmptyMessage):
			common.ErrorResponse(c, http.StatusBadRequest, "Message text is empty", err)
		case errors.Is(err, common.ErrConversationNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Conversation not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Not a participant of this conversation", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to send message", err)
		}
		return
	}

	// The REST path broadcasts too, so sockets in the room see messages sent
	// from any surface. The sender's client replaces its optimistic copy by
	// the echoed client token instead of appending a duplicate.
	h.hub.BroadcastMessage(req.ConversationID, msg)

	common.SuccessResponse(c, msg, nil)
}

// GetMyConversations handles GET /api/chat/conversations
// @Summary List the caller's conversations for the sidebar
// @Tags chat
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationSummary}
// @Security BearerAuth
// @Router /chat/conversations [get]
func (h *ChatHandler) GetMyConversations(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	summaries, err := h.service.ListConversations(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load conversations", err)
		return
	}

	common.SuccessResponse(c, summaries, nil)
}
