package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Conversation errors
	ErrInvalidPair          = errors.New("invalid participant pair")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrNotConnected         = errors.New("no accepted connection between users")

	// Message errors
	ErrEmptyMessage = errors.New("message text is empty")

	// Connection request errors
	ErrRequestNotFound   = errors.New("connection request not found")
	ErrAlreadyRequested  = errors.New("connection request already exists")
	ErrRequestNotPending = errors.New("connection request is not pending")

	// Auth errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)
