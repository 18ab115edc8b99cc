package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/skillswap/skillswap-backend/internal/handler"
	"github.com/skillswap/skillswap-backend/internal/middleware"
	"github.com/skillswap/skillswap-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	authHandler *handler.AuthHandler,
	chatHandler *handler.ChatHandler,
	connectionHandler *handler.ConnectionHandler,
	userHandler *handler.UserHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api")

	// Authentication endpoints (no auth required)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.GetMe)

	// Public profiles
	api.GET("/users/:id", userHandler.GetProfile)

	// Mentorship connection requests (auth required)
	connections := api.Group("/connections", middleware.JWTAuth(jwtManager))
	connections.POST("", connectionHandler.Send)
	connections.PATCH("/:id", connectionHandler.Respond)
	connections.GET("", connectionHandler.List)

	// Chat (auth required)
	chat := api.Group("/chat", middleware.JWTAuth(jwtManager))
	chat.POST("/conversation", chatHandler.GetOrCreateConversation)
	chat.GET("/messages/:conversationId", chatHandler.GetMessages)
	chat.POST("/message", chatHandler.SendMessage)
	chat.GET("/conversations", chatHandler.GetMyConversations)

	// Realtime channel; authenticates itself from the handshake token
	router.GET("/ws/chat", wsHandler.Connect)
}
