package repository

import (
	"testing"

	"github.com/skillswap/skillswap-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistsAcceptedEitherDirection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConnectionRepository(db)

	require.NoError(t, repo.Create(&domain.ConnectionRequest{
		RequesterID: 1,
		RecipientID: 2,
		Status:      domain.ConnectionPending,
	}))

	// Pending does not count.
	ok, err := repo.ExistsAccepted(1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	req, err := repo.FindBetween(2, 1)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(req.ID, domain.ConnectionAccepted))

	ok, err = repo.ExistsAccepted(1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsAccepted(2, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsAccepted(1, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindForUserBothSides(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConnectionRepository(db)

	require.NoError(t, repo.Create(&domain.ConnectionRequest{RequesterID: 1, RecipientID: 2, Status: domain.ConnectionPending}))
	require.NoError(t, repo.Create(&domain.ConnectionRequest{RequesterID: 3, RecipientID: 1, Status: domain.ConnectionPending}))
	require.NoError(t, repo.Create(&domain.ConnectionRequest{RequesterID: 2, RecipientID: 3, Status: domain.ConnectionPending}))

	reqs, err := repo.FindForUser(1)
	require.NoError(t, err)
	assert.Len(t, reqs, 2)
}
