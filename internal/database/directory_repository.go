package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/datagrail/karmabot/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectoryRepo implements domain.DirectoryRepository backed by PostgreSQL.
// A single identities table serves both the forward (id to name) and reverse
// (name to id) views, which keeps the two consistent by construction.
type DirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewDirectoryRepo(pool *pgxpool.Pool) *DirectoryRepo {
	return &DirectoryRepo{pool: pool}
}

func (r *DirectoryRepo) LookupByID(ctx context.Context, userID string) (*domain.IdentityRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("identity_by_id").Observe(time.Since(start).Seconds())
	}()

	var record domain.IdentityRecord
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, display_name FROM identities WHERE user_id = $1`,
		userID,
	).Scan(&record.UserID, &record.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("identity_by_id").Inc()
		return nil, fmt.Errorf("failed to look up identity %q: %w", userID, err)
	}
	return &record, nil
}

// LookupByName resolves an exact display name. Display names are not unique;
// ties break by user_id so resolution stays deterministic.
func (r *DirectoryRepo) LookupByName(ctx context.Context, displayName string) (*domain.IdentityRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("identity_by_name").Observe(time.Since(start).Seconds())
	}()

	var record domain.IdentityRecord
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, display_name FROM identities WHERE display_name = $1 ORDER BY user_id LIMIT 1`,
		displayName,
	).Scan(&record.UserID, &record.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIdentityNotFound
	}
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("identity_by_name").Inc()
		return nil, fmt.Errorf("failed to look up name %q: %w", displayName, err)
	}
	return &record, nil
}

// UpsertAll writes all records in one batch round-trip. Refresh is
// upsert-only: rows absent from records are left in place.
func (r *DirectoryRepo) UpsertAll(ctx context.Context, records []domain.IdentityRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("identity_upsert_all").Observe(time.Since(start).Seconds())
	}()

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO identities (user_id, display_name, created_at, updated_at)
			VALUES ($1, $2, NOW(), NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				display_name = EXCLUDED.display_name,
				updated_at = NOW()`,
			record.UserID, record.DisplayName,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	for range records {
		if _, err := results.Exec(); err != nil {
			metrics.DBErrorsTotal.WithLabelValues("identity_upsert_all").Inc()
			return fmt.Errorf("failed to upsert identities: %w", err)
		}
	}
	return nil
}
