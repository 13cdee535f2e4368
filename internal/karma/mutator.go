package karma

import (
	"context"
	"fmt"

	"github.com/datagrail/karmabot/internal/domain"
)

// KarmaMutator applies signed deltas to entity scores and produces the
// user-facing reply for each mutation.
type KarmaMutator struct {
	karma domain.KarmaRepository
}

func NewKarmaMutator(karma domain.KarmaRepository) *KarmaMutator {
	return &KarmaMutator{karma: karma}
}

// Apply mutates the resolved entity's score by delta and returns the reply
// text. Self-modification performs no store mutation and returns an
// admonition instead. The repository's Add is atomic per entity, so
// concurrent deltas are never lost.
func (m *KarmaMutator) Apply(ctx context.Context, res Resolution, delta int64) (string, error) {
	if res.IsSelf {
		return selfModificationMessage(delta, res.UserID), nil
	}

	score, err := m.karma.Add(ctx, res.Entity, delta)
	if err != nil {
		return "", fmt.Errorf("failed to mutate karma for %q: %w", res.Entity, err)
	}
	return newScoreMessage(res.Entity, score), nil
}
