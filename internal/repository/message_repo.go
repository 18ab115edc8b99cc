package repository

import (
	"time"

	"github.com/skillswap/skillswap-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageRepository message data access interface
type MessageRepository interface {
	// Create persists a message, seeds its read-by set with the sender and
	// bumps the owning conversation, all in one transaction.
	Create(msg *domain.Message) error
	FindByID(id int64) (*domain.Message, error)
	// FindByConversation returns the full log in stable ascending order
	// (created_at, then id as tiebreak), read-by sets included.
	FindByConversation(conversationID int64) ([]*domain.Message, error)
	// MarkAllRead adds the user to the read-by set of every message in the
	// conversation that lacks it. Idempotent; returns how many were new.
	MarkAllRead(conversationID, userID int64) (int64, error)
	CountUnread(conversationID, userID int64) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message to its conversation. The sender's read row and the
// conversation's last-message pointer ride the same transaction so a crash
// cannot leave a message whose sender counts as unread.
func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		read := &domain.MessageRead{
			MessageID: msg.ID,
			UserID:    msg.SenderID,
			ReadAt:    msg.CreatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(read).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Updates(map[string]interface{}{
				"last_message_id": msg.ID,
				"updated_at":      time.Now(),
			}).Error
	})
}

func (r *messageRepository) FindByID(id int64) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.Preload("Reads").First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) FindByConversation(conversationID int64) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Preload("Reads").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

// MarkAllRead inserts read rows for every message the user has not seen yet.
// The insert ignores conflicts on the (message_id, user_id) key, so calling
// it twice yields identical state.
func (r *messageRepository) MarkAllRead(conversationID, userID int64) (int64, error) {
	var ids []int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now()
	reads := make([]domain.MessageRead, 0, len(ids))
	for _, id := range ids {
		reads = append(reads, domain.MessageRead{MessageID: id, UserID: userID, ReadAt: now})
	}

	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&reads)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// CountUnread counts messages whose read-by set lacks the user. Purely
// derived from message_reads; nothing here is cached.
func (r *messageRepository) CountUnread(conversationID, userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}
