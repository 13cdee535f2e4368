package database

import (
	"context"
	"testing"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRepo_UpsertAndLookupBothViews(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)
	ctx := context.Background()

	err := repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U123>", DisplayName: "alice"},
		{UserID: "<@U456>", DisplayName: "bob"},
	})
	require.NoError(t, err)

	forward, err := repo.LookupByID(ctx, "<@U123>")
	require.NoError(t, err)
	assert.Equal(t, "alice", forward.DisplayName)

	reverse, err := repo.LookupByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "<@U123>", reverse.UserID)
}

func TestDirectoryRepo_UpsertReplacesDisplayName(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U123>", DisplayName: "alice"},
	}))
	require.NoError(t, repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U123>", DisplayName: "alice_renamed"},
	}))

	record, err := repo.LookupByID(ctx, "<@U123>")
	require.NoError(t, err)
	assert.Equal(t, "alice_renamed", record.DisplayName)
}

func TestDirectoryRepo_RefreshLeavesAbsentRowsUntouched(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U123>", DisplayName: "alice"},
	}))
	require.NoError(t, repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U456>", DisplayName: "bob"},
	}))

	record, err := repo.LookupByID(ctx, "<@U123>")
	require.NoError(t, err)
	assert.Equal(t, "alice", record.DisplayName)
}

func TestDirectoryRepo_LookupMisses(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)
	ctx := context.Background()

	_, err := repo.LookupByID(ctx, "<@UNOPE>")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)

	_, err = repo.LookupByName(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestDirectoryRepo_DuplicateNamesResolveDeterministically(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)
	ctx := context.Background()

	require.NoError(t, repo.UpsertAll(ctx, []domain.IdentityRecord{
		{UserID: "<@U900>", DisplayName: "sam"},
		{UserID: "<@U100>", DisplayName: "sam"},
	}))

	record, err := repo.LookupByName(ctx, "sam")
	require.NoError(t, err)
	assert.Equal(t, "<@U100>", record.UserID)
}

func TestDirectoryRepo_UpsertAllEmptyBatch(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewDirectoryRepo(pool)

	err := repo.UpsertAll(context.Background(), nil)
	assert.NoError(t, err)
}
