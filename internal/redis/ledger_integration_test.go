package redis

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

var testClient *goredis.Client

func TestMain(m *testing.M) {
	// Parse flags to check for -short
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start redis container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate redis container: %v\n", err)
		}
	}()

	connStr, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}

	testClient, err = NewClient(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test redis: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = testClient.Close() }()

	os.Exit(m.Run())
}

func setupLedger(t *testing.T) *EventLedger {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Cleanup(func() {
		_ = testClient.FlushDB(context.Background()).Err()
	})

	return NewEventLedger(testClient)
}

func TestEventLedger_AdmitsFirstDelivery(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()

	admitted, err := ledger.Admit(ctx, "C123-1700000000.000100")
	require.NoError(t, err)
	assert.True(t, admitted)
}

func TestEventLedger_DropsDuplicateDelivery(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()

	admitted, err := ledger.Admit(ctx, "C123-1700000000.000200")
	require.NoError(t, err)
	require.True(t, admitted)

	admitted, err = ledger.Admit(ctx, "C123-1700000000.000200")
	require.NoError(t, err)
	assert.False(t, admitted)
}

func TestEventLedger_DistinctEventsAreIndependent(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()

	first, err := ledger.Admit(ctx, "C123-1700000000.000300")
	require.NoError(t, err)
	second, err2 := ledger.Admit(ctx, "C999-1700000000.000300")
	require.NoError(t, err2)

	assert.True(t, first)
	assert.True(t, second)
}

func TestEventLedger_RecordsCarryRetentionTTL(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()

	_, err := ledger.Admit(ctx, "C123-1700000000.000400")
	require.NoError(t, err)

	ttl, err := testClient.TTL(ctx, eventKey("C123-1700000000.000400")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl.Hours(), 23.0)
	assert.LessOrEqual(t, ttl, eventRetention)
}
