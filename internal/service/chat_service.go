package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skillswap/skillswap-backend/internal/common"
	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/skillswap/skillswap-backend/internal/repository"
	"github.com/skillswap/skillswap-backend/pkg/cache"
	"gorm.io/gorm"
)

// ChatService business logic for conversations, messages, read receipts and
// the sidebar projection.
type ChatService interface {
	// GetOrCreateConversation maps a pair of users to their single
	// conversation, creating it on first contact.
	GetOrCreateConversation(requesterID, receiverID int64) (*domain.ConversationResponse, error)
	// SendMessage appends to the conversation log. The returned message
	// carries the server-assigned id and the echoed client token.
	SendMessage(senderID int64, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	// GetMessages returns the ordered log and, in the same call, marks every
	// message read for the viewer. Returns how many were newly marked so the
	// caller knows whether to emit a read event.
	GetMessages(conversationID, viewerID int64) ([]*domain.MessageResponse, int64, error)
	// MarkConversationRead marks without listing. Idempotent.
	MarkConversationRead(conversationID, viewerID int64) (int64, error)
	// ListConversations builds the sidebar: other participant, last message,
	// unread count, most recent first. Never mutates read state.
	ListConversations(viewerID int64) ([]*domain.ConversationSummary, error)
	CountUnread(conversationID, viewerID int64) (int64, error)
	// IsParticipant reports whether the user belongs to the conversation.
	// Room joins are refused for everyone else.
	IsParticipant(conversationID, userID int64) (bool, error)
}

type chatService struct {
	convRepo       repository.ConversationRepository
	msgRepo        repository.MessageRepository
	userRepo       repository.UserRepository
	connectionRepo repository.ConnectionRepository
	cacheSvc       cache.Service
}

// NewChatService creates a new ChatService
func NewChatService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	connectionRepo repository.ConnectionRepository,
	cacheSvc cache.Service,
) ChatService {
	return &chatService{
		convRepo:       convRepo,
		msgRepo:        msgRepo,
		userRepo:       userRepo,
		connectionRepo: connectionRepo,
		cacheSvc:       cacheSvc,
	}
}

// GetOrCreateConversation validates the pair, checks the mentorship
// relationship and delegates to the store's atomic upsert. Both participants
// racing to open the chat get the same record back.
func (s *chatService) GetOrCreateConversation(requesterID, receiverID int64) (*domain.ConversationResponse, error) {
	if requesterID <= 0 || receiverID <= 0 || requesterID == receiverID {
		return nil, common.ErrInvalidPair
	}

	if _, err := s.userRepo.FindByID(receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	// Only users with an accepted connection may open a conversation.
	connected, err := s.connectionRepo.ExistsAccepted(requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, common.ErrNotConnected
	}

	conv, err := s.convRepo.GetOrCreate(requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	return conv.ToResponse(), nil
}

func (s *chatService) SendMessage(senderID int64, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, common.ErrEmptyMessage
	}

	conv, err := s.convRepo.FindByID(req.ConversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(senderID) {
		return nil, common.ErrForbidden
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Text:           text,
		ClientToken:    req.ClientToken,
		CreatedAt:      time.Now(),
	}
	if err := s.msgRepo.Create(msg); err != nil {
		return nil, err
	}

	// Create seeded the read-by set with the sender; reflect that without a
	// round-trip.
	msg.Reads = []domain.MessageRead{{MessageID: msg.ID, UserID: senderID, ReadAt: msg.CreatedAt}}

	sender, err := s.userSummary(senderID)
	if err != nil {
		return nil, err
	}
	return msg.ToResponse(sender), nil
}

func (s *chatService) GetMessages(conversationID, viewerID int64) ([]*domain.MessageResponse, int64, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, common.ErrConversationNotFound
		}
		return nil, 0, err
	}
	if !conv.HasParticipant(viewerID) {
		return nil, 0, common.ErrForbidden
	}

	// Mark before listing so the returned read-by sets already include the
	// viewer: displayed means read, with no window in between.
	marked, err := s.msgRepo.MarkAllRead(conversationID, viewerID)
	if err != nil {
		return nil, 0, err
	}

	messages, err := s.msgRepo.FindByConversation(conversationID)
	if err != nil {
		return nil, 0, err
	}

	summaries, err := s.participantSummaries(conv)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse(summaries[m.SenderID])
	}
	return responses, marked, nil
}

func (s *chatService) MarkConversationRead(conversationID, viewerID int64) (int64, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, common.ErrConversationNotFound
		}
		return 0, err
	}
	if !conv.HasParticipant(viewerID) {
		return 0, common.ErrForbidden
	}
	return s.msgRepo.MarkAllRead(conversationID, viewerID)
}

func (s *chatService) ListConversations(viewerID int64) ([]*domain.ConversationSummary, error) {
	convs, err := s.convRepo.FindByParticipant(viewerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		otherID := conv.OtherParticipant(viewerID)
		other, err := s.userSummary(otherID)
		if err != nil {
			return nil, err
		}

		var lastMsg *domain.MessageResponse
		if conv.LastMessageID != nil {
			msg, err := s.msgRepo.FindByID(*conv.LastMessageID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			if msg != nil {
				sender, err := s.userSummary(msg.SenderID)
				if err != nil {
					return nil, err
				}
				lastMsg = msg.ToResponse(sender)
			}
		}

		unread, err := s.msgRepo.CountUnread(conv.ID, viewerID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, &domain.ConversationSummary{
			ID:          conv.ID,
			OtherUser:   other,
			LastMessage: lastMsg,
			UnreadCount: unread,
			UpdatedAt:   conv.UpdatedAt.Format(time.RFC3339),
		})
	}
	return summaries, nil
}

func (s *chatService) CountUnread(conversationID, viewerID int64) (int64, error) {
	return s.msgRepo.CountUnread(conversationID, viewerID)
}

func (s *chatService) IsParticipant(conversationID, userID int64) (bool, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, common.ErrConversationNotFound
		}
		return false, err
	}
	return conv.HasParticipant(userID), nil
}

// userSummary resolves a public profile, through the cache when available.
func (s *chatService) userSummary(userID int64) (*domain.UserSummary, error) {
	if s.cacheSvc != nil && s.cacheSvc.IsAvailable() {
		var cached domain.UserSummary
		if err := s.cacheSvc.GetUserProfile(context.Background(), userID, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	summary := user.ToSummary()
	if s.cacheSvc != nil && s.cacheSvc.IsAvailable() {
		_ = s.cacheSvc.SetUserProfile(context.Background(), userID, summary)
	}
	return summary, nil
}

func (s *chatService) participantSummaries(conv *domain.Conversation) (map[int64]*domain.UserSummary, error) {
	summaries := make(map[int64]*domain.UserSummary, 2)
	for _, id := range []int64{conv.UserAID, conv.UserBID} {
		summary, err := s.userSummary(id)
		if err != nil {
			return nil, err
		}
		summaries[id] = summary
	}
	return summaries, nil
}
