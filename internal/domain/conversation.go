package domain

import (
	"fmt"
	"time"
)

// Conversation is a 1:1 thread between two users. ParticipantKey is the
// canonical order-independent identity of the pair: uniqueness is enforced on
// it, not on the participant columns, so (A,B) and (B,A) resolve to one row.
type Conversation struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserAID        int64     `gorm:"column:user_a_id;index" json:"user_a_id"`
	UserBID        int64     `gorm:"column:user_b_id;index" json:"user_b_id"`
	ParticipantKey string    `gorm:"column:participant_key;size:64;uniqueIndex" json:"participant_key"`
	LastMessageID  *int64    `gorm:"column:last_message_id" json:"last_message_id,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;index" json:"updated_at"`
}

// TableName returns the table name
func (Conversation) TableName() string {
	return "conversations"
}

// ParticipantKey derives the canonical key for a pair of user ids.
// The smaller id always comes first, so argument order never matters.
func ParticipantKey(userA, userB int64) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d_%d", userA, userB)
}

// HasParticipant reports whether the user is one of the two participants
func (c *Conversation) HasParticipant(userID int64) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the participant that is not the given user
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// CreateConversationRequest opens (or fetches) a conversation with another user
type CreateConversationRequest struct {
	ReceiverID int64 `json:"receiver_id" binding:"required"`
}

// ConversationResponse is the conversation record returned by the directory
type ConversationResponse struct {
	ID           int64   `json:"id"`
	Participants []int64 `json:"participants"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ToResponse converts a Conversation to its API shape
func (c *Conversation) ToResponse() *ConversationResponse {
	return &ConversationResponse{
		ID:           c.ID,
		Participants: []int64{c.UserAID, c.UserBID},
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    c.UpdatedAt.Format(time.RFC3339),
	}
}

// ConversationSummary is one sidebar entry: the other participant, the last
// message and the viewer's unread count, ordered by recency.
type ConversationSummary struct {
	ID          int64            `json:"id"`
	OtherUser   *UserSummary     `json:"other_user"`
	LastMessage *MessageResponse `json:"last_message,omitempty"`
	UnreadCount int64            `json:"unread_count"`
	UpdatedAt   string           `json:"updated_at"`
}
