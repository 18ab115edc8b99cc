package domain

import "time"

// Connection request status values
const (
	ConnectionPending  = "pending"
	ConnectionAccepted = "accepted"
	ConnectionRejected = "rejected"
)

// ConnectionRequest is the mentorship handshake. An accepted request is the
// "this pair may converse" fact the chat layer consults before opening a
// conversation or joining its room.
type ConnectionRequest struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RequesterID int64     `gorm:"column:requester_id;index:idx_connection_pair,unique,priority:1" json:"requester_id"`
	RecipientID int64     `gorm:"column:recipient_id;index:idx_connection_pair,unique,priority:2" json:"recipient_id"`
	Status      string    `gorm:"column:status;size:16;default:pending;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the table name
func (ConnectionRequest) TableName() string {
	return "connection_requests"
}

// SendConnectionRequest asks another user to connect
type SendConnectionRequest struct {
	RecipientID int64 `json:"recipient_id" binding:"required"`
}

// RespondConnectionRequest accepts or rejects a pending request
type RespondConnectionRequest struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// ConnectionResponse is a connection request in API responses
type ConnectionResponse struct {
	ID        int64        `json:"id"`
	Requester *UserSummary `json:"requester,omitempty"`
	Recipient *UserSummary `json:"recipient,omitempty"`
	Status    string       `json:"status"`
	CreatedAt string       `json:"created_at"`
}

// ToResponse converts a ConnectionRequest to its API shape
func (r *ConnectionRequest) ToResponse(requester, recipient *UserSummary) *ConnectionResponse {
	return &ConnectionResponse{
		ID:        r.ID,
		Requester: requester,
		Recipient: recipient,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
}
