package repository

import (
	"testing"
	"time"

	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestConversation(t *testing.T, db *gorm.DB, userA, userB int64) *domain.Conversation {
	t.Helper()
	conv, err := NewConversationRepository(db).GetOrCreate(userA, userB)
	require.NoError(t, err)
	return conv
}

func TestCreateSeedsSenderRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	conv := createTestConversation(t, db, 1, 2)

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       1,
		Text:           "hello",
		CreatedAt:      time.Now(),
	}
	require.NoError(t, repo.Create(msg))
	require.NotZero(t, msg.ID)

	// The sender never counts as unread for their own message.
	stored, err := repo.FindByID(msg.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reads, 1)
	assert.Equal(t, int64(1), stored.Reads[0].UserID)

	senderUnread, err := repo.CountUnread(conv.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), senderUnread)

	otherUnread, err := repo.CountUnread(conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherUnread)
}

func TestCreateBumpsConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	conv := createTestConversation(t, db, 1, 2)

	msg := &domain.Message{ConversationID: conv.ID, SenderID: 1, Text: "first", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(msg))

	var updated domain.Conversation
	require.NoError(t, db.First(&updated, conv.ID).Error)
	require.NotNil(t, updated.LastMessageID)
	assert.Equal(t, msg.ID, *updated.LastMessageID)

	later := &domain.Message{ConversationID: conv.ID, SenderID: 2, Text: "second", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(later))

	require.NoError(t, db.First(&updated, conv.ID).Error)
	assert.Equal(t, later.ID, *updated.LastMessageID)
}

func TestMarkAllReadIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	conv := createTestConversation(t, db, 1, 2)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(&domain.Message{
			ConversationID: conv.ID,
			SenderID:       1,
			Text:           "msg",
			CreatedAt:      time.Now(),
		}))
	}

	marked, err := repo.MarkAllRead(conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)

	// Second pass finds nothing new.
	marked, err = repo.MarkAllRead(conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marked)

	unread, err := repo.CountUnread(conv.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread)
}

func TestMarkAllReadOnlyTargetConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	convA := createTestConversation(t, db, 1, 2)
	convB := createTestConversation(t, db, 2, 3)

	require.NoError(t, repo.Create(&domain.Message{ConversationID: convA.ID, SenderID: 1, Text: "a", CreatedAt: time.Now()}))
	require.NoError(t, repo.Create(&domain.Message{ConversationID: convB.ID, SenderID: 3, Text: "b", CreatedAt: time.Now()}))

	marked, err := repo.MarkAllRead(convA.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	// The other conversation's unread state is untouched.
	unread, err := repo.CountUnread(convB.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestFindByConversationStableOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMessageRepository(db)
	conv := createTestConversation(t, db, 1, 2)

	base := time.Now()

	// Insert out of chronological order; listing must sort by created_at
	// with id as tiebreak.
	late := &domain.Message{ConversationID: conv.ID, SenderID: 1, Text: "late", CreatedAt: base.Add(2 * time.Second)}
	require.NoError(t, repo.Create(late))
	early := &domain.Message{ConversationID: conv.ID, SenderID: 2, Text: "early", CreatedAt: base}
	require.NoError(t, repo.Create(early))
	tie := &domain.Message{ConversationID: conv.ID, SenderID: 1, Text: "tie", CreatedAt: base}
	require.NoError(t, repo.Create(tie))

	msgs, err := repo.FindByConversation(conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "early", msgs[0].Text)
	assert.Equal(t, "tie", msgs[1].Text)
	assert.Equal(t, "late", msgs[2].Text)
	assert.True(t, msgs[0].ID < msgs[1].ID)
}
