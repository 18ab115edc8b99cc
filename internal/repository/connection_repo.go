package repository

import (
	"github.com/skillswap/skillswap-backend/internal/domain"
	"gorm.io/gorm"
)

// ConnectionRepository connection request data access interface
type ConnectionRepository interface {
	Create(req *domain.ConnectionRequest) error
	FindByID(id int64) (*domain.ConnectionRequest, error)
	FindBetween(userA, userB int64) (*domain.ConnectionRequest, error)
	FindForUser(userID int64) ([]*domain.ConnectionRequest, error)
	UpdateStatus(id int64, status string) error
	// ExistsAccepted reports whether the pair has an accepted connection in
	// either direction.
	ExistsAccepted(userA, userB int64) (bool, error)
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(req *domain.ConnectionRequest) error {
	return r.db.Create(req).Error
}

func (r *connectionRepository) FindByID(id int64) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *connectionRepository) FindBetween(userA, userB int64) (*domain.ConnectionRequest, error) {
	var req domain.ConnectionRequest
	err := r.db.Where(
		"(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
		userA, userB, userB, userA,
	).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *connectionRepository) FindForUser(userID int64) ([]*domain.ConnectionRequest, error) {
	var reqs []*domain.ConnectionRequest
	err := r.db.Where("requester_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

func (r *connectionRepository) UpdateStatus(id int64, status string) error {
	return r.db.Model(&domain.ConnectionRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *connectionRepository) ExistsAccepted(userA, userB int64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.ConnectionRequest{}).
		Where("status = ?", domain.ConnectionAccepted).
		Where(
			"(requester_id = ? AND recipient_id = ?) OR (requester_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA,
		).Count(&count).Error
	return count > 0, err
}
