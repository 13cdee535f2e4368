package database

import (
	"context"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testPool        *pgxpool.Pool
	testDatabaseURL string
)

func TestMain(m *testing.M) {
	// Parse flags to check for -short
	flag.Parse()

	// Skip container setup if running in short mode
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	// Start PostgreSQL container once for all tests
	postgresContainer, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
		}
	}()

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		os.Exit(1)
	}
	testDatabaseURL = connStr

	testPool, err = Connect(ctx, testDatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		os.Exit(1)
	}
	defer testPool.Close()

	if err := RunMigrations(ctx, testPool); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// setupTestDB returns the shared pool and registers cleanup to truncate tables
func setupTestDB(t *testing.T) *pgxpool.Pool {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	t.Cleanup(func() {
		ctx := context.Background()
		_, err := testPool.Exec(ctx, "TRUNCATE karma, identities")
		if err != nil {
			t.Logf("Failed to truncate tables: %v", err)
		}
	})

	return testPool
}

func TestConnect_InvalidURL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	_, err := Connect(ctx, "not-a-url")
	require.Error(t, err)
}

func TestRunMigrations_Idempotency(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	// Migrations already ran in TestMain; running again must not fail
	err := RunMigrations(ctx, pool)
	require.NoError(t, err)
}
