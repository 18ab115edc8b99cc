package repository

import (
	"errors"

	"github.com/skillswap/skillswap-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation data access interface
type ConversationRepository interface {
	// GetOrCreate returns the single conversation for a pair of users,
	// creating it if absent. Safe under concurrent first contact.
	GetOrCreate(userA, userB int64) (*domain.Conversation, error)
	FindByID(id int64) (*domain.Conversation, error)
	FindByParticipant(userID int64) ([]*domain.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate performs an atomic insert-if-absent keyed on the participant
// key. The conditional insert closes the race window of two participants
// opening the chat concurrently: at most one row can ever exist per pair.
// A duplicate-key error from any non-atomic path is resolved by refetching
// the existing row, never surfaced to the caller.
func (r *conversationRepository) GetOrCreate(userA, userB int64) (*domain.Conversation, error) {
	key := domain.ParticipantKey(userA, userB)

	conv := &domain.Conversation{
		UserAID:        userA,
		UserBID:        userB,
		ParticipantKey: key,
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "participant_key"}},
		DoNothing: true,
	}).Create(conv)

	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return r.findByKey(key)
		}
		return nil, res.Error
	}

	// Conflict path: the row already existed, the insert was a no-op and the
	// struct holds no id. Fetch the winner.
	if res.RowsAffected == 0 {
		return r.findByKey(key)
	}

	return conv, nil
}

func (r *conversationRepository) findByKey(key string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.Where("participant_key = ?", key).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conversationRepository) FindByID(id int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByParticipant returns all conversations of a user, most recently
// active first.
func (r *conversationRepository) FindByParticipant(userID int64) ([]*domain.Conversation, error) {
	var convs []*domain.Conversation
	err := r.db.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&convs).Error
	return convs, err
}
