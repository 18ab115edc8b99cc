package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = db.AutoMigrate(
		&domain.User{},
		&domain.ConnectionRequest{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.MessageRead{},
	)
	require.NoError(t, err)
	return db
}

func TestParticipantKeyCommutative(t *testing.T) {
	assert.Equal(t, "3_7", domain.ParticipantKey(3, 7))
	assert.Equal(t, "3_7", domain.ParticipantKey(7, 3))
}

func TestGetOrCreateReturnsSameConversation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)

	first, err := repo.GetOrCreate(1, 2)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// Same pair, either order, resolves to the existing row.
	second, err := repo.GetOrCreate(2, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	third, err := repo.GetOrCreate(1, 2)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)

	var count int64
	db.Model(&domain.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateConcurrent(t *testing.T) {
	db := setupTestDB(t)
	// Each pool connection to :memory: is a separate database, so pin the
	// pool to one before hitting it from several goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	repo := NewConversationRepository(db)

	const callers = 8
	ids := make([]int64, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := int64(1), int64(2)
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := repo.GetOrCreate(a, b)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	db.Model(&domain.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetOrCreateDistinctPairs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)

	ab, err := repo.GetOrCreate(1, 2)
	require.NoError(t, err)
	ac, err := repo.GetOrCreate(1, 3)
	require.NoError(t, err)

	assert.NotEqual(t, ab.ID, ac.ID)

	var count int64
	db.Model(&domain.Conversation{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestFindByParticipantOrdering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConversationRepository(db)

	older, err := repo.GetOrCreate(1, 2)
	require.NoError(t, err)
	newer, err := repo.GetOrCreate(1, 3)
	require.NoError(t, err)

	// Bump the first conversation so it becomes the most recent.
	require.NoError(t, db.Model(&domain.Conversation{}).
		Where("id = ?", older.ID).
		Update("updated_at", time.Now().Add(time.Hour)).Error)

	convs, err := repo.FindByParticipant(1)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, older.ID, convs[0].ID)
	assert.Equal(t, newer.ID, convs[1].ID)

	// A user outside both pairs sees nothing.
	none, err := repo.FindByParticipant(9)
	require.NoError(t, err)
	assert.Empty(t, none)
}
