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

// KarmaRepo implements domain.KarmaRepository backed by PostgreSQL.
type KarmaRepo struct {
	pool *pgxpool.Pool
}

func NewKarmaRepo(pool *pgxpool.Pool) *KarmaRepo {
	return &KarmaRepo{pool: pool}
}

func (r *KarmaRepo) Get(ctx context.Context, entity string) (*domain.KarmaRecord, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("karma_get").Observe(time.Since(start).Seconds())
	}()

	var record domain.KarmaRecord
	err := r.pool.QueryRow(ctx,
		`SELECT entity, score FROM karma WHERE entity = $1`,
		entity,
	).Scan(&record.Entity, &record.Score)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrKarmaNotFound
	}
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("karma_get").Inc()
		return nil, fmt.Errorf("failed to get karma for %q: %w", entity, err)
	}
	return &record, nil
}

// Add applies a signed delta in a single upsert statement. The statement is
// atomic per row, so concurrent deltas on the same entity serialize inside
// PostgreSQL and none are lost.
func (r *KarmaRepo) Add(ctx context.Context, entity string, delta int64) (int64, error) {
	start := time.Now()
	defer func() {
		metrics.DBQueryDuration.WithLabelValues("karma_add").Observe(time.Since(start).Seconds())
	}()

	var score int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO karma (entity, score, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (entity) DO UPDATE SET
			score = karma.score + EXCLUDED.score,
			updated_at = NOW()
		RETURNING score`,
		entity, delta,
	).Scan(&score)
	if err != nil {
		metrics.DBErrorsTotal.WithLabelValues("karma_add").Inc()
		return 0, fmt.Errorf("failed to add karma for %q: %w", entity, err)
	}
	return score, nil
}
