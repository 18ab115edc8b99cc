package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/skillswap/skillswap-backend/internal/common"
	"github.com/skillswap/skillswap-backend/internal/ws"
	"github.com/skillswap/skillswap-backend/pkg/jwt"
	"github.com/skillswap/skillswap-backend/pkg/logger"
)

// WSHandler upgrades chat websocket connections. It verifies the bearer
// token with the exact same jwt.Manager the REST middleware uses, and
// rejects before any room join is possible.
type WSHandler struct {
	hub            *ws.Hub
	chat           ws.ChatService
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, chat ws.ChatService, jwtManager *jwt.Manager, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		chat:           chat,
		jwtManager:     jwtManager,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// extractToken reads the credential from the handshake. Browsers cannot set
// headers on a WebSocket, so the token travels as a query parameter; the
// Authorization header is still honored for non-browser clients.
func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	auth := c.GetHeader("Authorization")
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Connect handles GET /ws/chat, the WebSocket upgrade
// @Summary Realtime chat websocket
// @Tags chat
// @Param token query string true "access token"
// @Router /ws/chat [get]
func (h *WSHandler) Connect(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Missing token", nil)
		return
	}

	claims, err := h.jwtManager.VerifyToken(token)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed: %v", err)
		return
	}

	// Bind the verified user id to the connection for its whole lifetime.
	// Tokens are not refreshed mid-connection; an expired credential means
	// reconnecting with a fresh one.
	client := ws.NewClient(h.hub, h.chat, conn, claims.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
