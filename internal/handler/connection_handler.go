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
)

// ConnectionHandler handles mentorship connection requests
type ConnectionHandler struct {
	service service.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler
func NewConnectionHandler(service service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{service: service}
}

// Send handles POST /api/connections
// @Summary Send a connection request
// @Tags connections
// @Accept json
// @Produce json
// @Param request body domain.SendConnectionRequest true "recipient"
// @Success 200 {object} common.APIResponse{data=domain.ConnectionResponse}
// @Security BearerAuth
// @Router /connections [post]
func (h *ConnectionHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.SendConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "recipient_id is required", err)
		return
	}

	resp, err := h.service.Send(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidPair):
			common.ErrorResponse(c, http.StatusBadRequest, "Cannot connect with yourself", err)
		case errors.Is(err, common.ErrUserNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Recipient not found", err)
		case errors.Is(err, common.ErrAlreadyRequested):
			common.ErrorResponse(c, http.StatusConflict, "A request already exists for this pair", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to send connection request", err)
		}
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// Respond handles PATCH /api/connections/:id
// @Summary Accept or reject a pending connection request
// @Tags connections
// @Accept json
// @Produce json
// @Param id path int true "request id"
// @Param request body domain.RespondConnectionRequest true "decision"
// @Success 200 {object} common.APIResponse{data=domain.ConnectionResponse}
// @Security BearerAuth
// @Router /connections/{id} [patch]
func (h *ConnectionHandler) Respond(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request id", err)
		return
	}

	var req domain.RespondConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "status must be accepted or rejected", err)
		return
	}

	resp, err := h.service.Respond(userID, requestID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRequestNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Connection request not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Only the recipient may respond", err)
		case errors.Is(err, common.ErrRequestNotPending):
			common.ErrorResponse(c, http.StatusConflict, "Request was already decided", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to update connection request", err)
		}
		return
	}

	common.SuccessResponse(c, resp, nil)
}

// List handles GET /api/connections
// @Summary List the caller's connection requests
// @Tags connections
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ConnectionResponse}
// @Security BearerAuth
// @Router /connections [get]
func (h *ConnectionHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	responses, err := h.service.ListForUser(userID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load connection requests", err)
		return
	}

	common.SuccessResponse(c, responses, nil)
}
