package service

import (
	"errors"

	"github.com/skillswap/skillswap-backend/internal/common"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/internal/repository"
	"gorm.io/gorm"
)

// ConnectionService handles the mentorship handshake. Its accepted state is
// what the chat layer consults before letting a pair converse.
type ConnectionService interface {
	Send(requesterID int64, req *domain.SendConnectionRequest) (*domain.ConnectionResponse, error)
	Respond(recipientID, requestID int64, status string) (*domain.ConnectionResponse, error)
	ListForUser(userID int64) ([]*domain.ConnectionResponse, error)
}

type connectionService struct {
	connectionRepo repository.ConnectionRepository
	userRepo       repository.UserRepository
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(connectionRepo repository.ConnectionRepository, userRepo repository.UserRepository) ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
	}
}

func (s *connectionService) Send(requesterID int64, req *domain.SendConnectionRequest) (*domain.ConnectionResponse, error) {
	if req.RecipientID <= 0 || req.RecipientID == requesterID {
		return nil, common.ErrInvalidPair
	}

	if _, err := s.userRepo.FindByID(req.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	// One request per pair, whichever side initiated.
	if _, err := s.connectionRepo.FindBetween(requesterID, req.RecipientID); err == nil {
		return nil, common.ErrAlreadyRequested
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	request := &domain.ConnectionRequest{
		RequesterID: requesterID,
		RecipientID: req.RecipientID,
		Status:      domain.ConnectionPending,
	}
	if err := s.connectionRepo.Create(request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrAlreadyRequested
		}
		return nil, err
	}

	return s.toResponse(request)
}

func (s *connectionService) Respond(recipientID, requestID int64, status string) (*domain.ConnectionResponse, error) {
	request, err := s.connectionRepo.FindByID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRequestNotFound
		}
		return nil, err
	}

	// Only the recipient decides.
	if request.RecipientID != recipientID {
		return nil, common.ErrForbidden
	}
	if request.Status != domain.ConnectionPending {
		return nil, common.ErrRequestNotPending
	}
	if status != domain.ConnectionAccepted && status != domain.ConnectionRejected {
		return nil, common.ErrInvalidInput
	}

	if err := s.connectionRepo.UpdateStatus(requestID, status); err != nil {
		return nil, err
	}
	request.Status = status

	return s.toResponse(request)
}

func (s *connectionService) ListForUser(userID int64) ([]*domain.ConnectionResponse, error) {
	requests, err := s.connectionRepo.FindForUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.ConnectionResponse, 0, len(requests))
	for _, request := range requests {
		resp, err := s.toResponse(request)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *connectionService) toResponse(request *domain.ConnectionRequest) (*domain.ConnectionResponse, error) {
	users, err := s.userRepo.FindByIDs([]int64{request.RequesterID, request.RecipientID})
	if err != nil {
		return nil, err
	}

	var requester, recipient *domain.UserSummary
	for _, u := range users {
		switch u.ID {
		case request.RequesterID:
			requester = u.ToSummary()
		case request.RecipientID:
			recipient = u.ToSummary()
		}
	}
	return request.ToResponse(requester, recipient), nil
}
