package karma

import (
	"context"
	"fmt"

	"github.com/datagrail/karmabot/internal/domain"
	"github.com/datagrail/karmabot/internal/metrics"
)

// DirectoryRefresher rebuilds the identity directory from the platform's
// full user list.
type DirectoryRefresher struct {
	lister    domain.UserLister
	directory domain.DirectoryRepository
}

func NewDirectoryRefresher(lister domain.UserLister, directory domain.DirectoryRepository) *DirectoryRefresher {
	return &DirectoryRefresher{lister: lister, directory: directory}
}

// Refresh pulls the complete user list and upserts every pair that carries
// both an id and a name; incomplete entries are skipped. Returns the number
// of identity records written. Existing directory entries absent from the
// list are left untouched.
func (r *DirectoryRefresher) Refresh(ctx context.Context) (int, error) {
	users, err := r.lister.ListUsers(ctx)
	if err != nil {
		metrics.DirectoryReloadsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	records := make([]domain.IdentityRecord, 0, len(users))
	for _, user := range users {
		if user.ID == "" || user.Name == "" {
			continue
		}
		records = append(records, domain.IdentityRecord{
			UserID:      FormatUserID(user.ID),
			DisplayName: user.Name,
		})
	}

	if err := r.directory.UpsertAll(ctx, records); err != nil {
		metrics.DirectoryReloadsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to upsert identities: %w", err)
	}

	metrics.DirectoryReloadsTotal.WithLabelValues("success").Inc()
	metrics.DirectoryIdentitiesUpserted.Add(float64(len(records)))
	return len(records), nil
}

// FormatUserID wraps a raw platform user id in the identity token shape.
func FormatUserID(id string) string {
	return "<@" + id + ">"
}
