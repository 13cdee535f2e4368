package database

import (
	"context"
	"sync"
	"testing"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKarmaRepo_AddCreatesRecordWithDelta(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewKarmaRepo(pool)
	ctx := context.Background()

	score, err := repo.Add(ctx, "coffee", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score)

	score, err = repo.Add(ctx, "tabs", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), score)
}

func TestKarmaRepo_AddAccumulates(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewKarmaRepo(pool)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Add(ctx, "x", 1)
		require.NoError(t, err)
	}

	record, err := repo.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(3), record.Score)
}

func TestKarmaRepo_GetMissingEntity(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewKarmaRepo(pool)
	ctx := context.Background()

	_, err := repo.Get(ctx, "never-scored")
	assert.ErrorIs(t, err, domain.ErrKarmaNotFound)
}

func TestKarmaRepo_ConcurrentAddsLoseNoDeltas(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewKarmaRepo(pool)
	ctx := context.Background()

	const writers = 10
	const deltasPerWriter = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < deltasPerWriter; j++ {
				_, err := repo.Add(ctx, "contended", 1)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	record, err := repo.Get(ctx, "contended")
	require.NoError(t, err)
	assert.Equal(t, int64(writers*deltasPerWriter), record.Score)
}
