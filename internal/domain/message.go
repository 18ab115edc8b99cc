package domain

import "time"

// Message is one entry in a conversation's time-ordered log. Messages are
// never edited or deleted; the only mutation is growth of the read-by set,
// kept in message_reads.
type Message struct {
	ID             int64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID int64         `gorm:"column:conversation_id;index:idx_messages_conv_created,priority:1" json:"conversation_id"`
	SenderID       int64         `gorm:"column:sender_id;index" json:"sender_id"`
	Text           string        `gorm:"column:text;type:text" json:"text"`
	ClientToken    string        `gorm:"column:client_token;size:64" json:"client_token,omitempty"`
	CreatedAt      time.Time     `gorm:"column:created_at;index:idx_messages_conv_created,priority:2" json:"created_at"`
	Reads          []MessageRead `gorm:"foreignKey:MessageID" json:"-"`
}

// TableName returns the table name
func (Message) TableName() string {
	return "messages"
}

// MessageRead is one element of a message's read-by set. Rows are only ever
// inserted, never deleted, so the set grows monotonically. The composite
// primary key makes repeated marking idempotent.
type MessageRead struct {
	MessageID int64     `gorm:"column:message_id;primaryKey;autoIncrement:false" json:"message_id"`
	UserID    int64     `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	ReadAt    time.Time `gorm:"column:read_at" json:"read_at"`
}

// TableName returns the table name
func (MessageRead) TableName() string {
	return "message_reads"
}

// SendMessageRequest appends a message to a conversation. ClientToken is an
// optional client-generated correlation token echoed back in the broadcast so
// the sender can replace its optimistic placeholder by token, not by text.
type SendMessageRequest struct {
	ConversationID int64  `json:"conversation_id" binding:"required"`
	Text           string `json:"text" binding:"required"`
	ClientToken    string `json:"client_token"`
}

// MessageResponse is a message in API and realtime payloads
type MessageResponse struct {
	ID             int64        `json:"id"`
	ConversationID int64        `json:"conversation_id"`
	Sender         *UserSummary `json:"sender"`
	Text           string       `json:"text"`
	ClientToken    string       `json:"client_token,omitempty"`
	ReadBy         []int64      `json:"read_by"`
	CreatedAt      string       `json:"created_at"`
}

// ToResponse converts a Message to its API shape. The sender summary is
// attached by the service layer.
func (m *Message) ToResponse(sender *UserSummary) *MessageResponse {
	readBy := make([]int64, 0, len(m.Reads))
	for _, r := range m.Reads {
		readBy = append(readBy, r.UserID)
	}
	return &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Sender:         sender,
		Text:           m.Text,
		ClientToken:    m.ClientToken,
		ReadBy:         readBy,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339Nano),
	}
}

// MessagesReadEvent signals that a reader has caught up on a conversation
type MessagesReadEvent struct {
	ConversationID int64 `json:"conversation_id"`
	ReaderID       int64 `json:"reader_id"`
}
