package karma

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/datagrail/karmabot/internal/domain"
)

// userIDPattern is the stable identity token shape: "<@" + platform-prefixed
// id + ">". Slack user ids start with U or W.
var userIDPattern = regexp.MustCompile(`^<@[UW]\w+>$`)

// IsUserID reports whether s has the identity token shape.
func IsUserID(s string) bool {
	return userIDPattern.MatchString(s)
}

// Resolution is the outcome of resolving one bare entity string.
type Resolution struct {
	// Entity is the canonical scoring key: a display name for resolved
	// identity tokens, otherwise the input itself.
	Entity string
	// UserID is the identity token the entity resolved to, empty when the
	// entity is plain free text.
	UserID string
	// IsSelf is true when the resolved identity is the acting author.
	IsSelf bool
}

// EntityResolver maps bare entity strings to canonical scoring keys using
// the identity directory. Resolution is read-only.
type EntityResolver struct {
	directory domain.DirectoryRepository
}

func NewEntityResolver(directory domain.DirectoryRepository) *EntityResolver {
	return &EntityResolver{directory: directory}
}

// Resolve disambiguates an identity-tagged entity from free text.
// authorToken is the acting author's identity token ("<@U123>"), used for
// self-modification detection; it may be empty.
//
// Directory misses degrade: an unresolved identity token stays scorable
// under the token itself, and free text without a reverse mapping scores as
// plain text. Only store failures are errors.
func (r *EntityResolver) Resolve(ctx context.Context, entity, authorToken string) (Resolution, error) {
	res := Resolution{Entity: entity}

	if IsUserID(entity) {
		res.UserID = entity
		record, err := r.directory.LookupByID(ctx, entity)
		if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
			return Resolution{}, fmt.Errorf("forward directory lookup: %w", err)
		}
		if record != nil {
			res.Entity = record.DisplayName
		}
	} else {
		record, err := r.directory.LookupByName(ctx, entity)
		if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
			return Resolution{}, fmt.Errorf("reverse directory lookup: %w", err)
		}
		if record != nil {
			res.UserID = record.UserID
		}
	}

	res.IsSelf = res.UserID != "" && res.UserID == authorToken
	return res, nil
}
