package domain

import (
	"context"
	"errors"
)

// ErrIdentityNotFound is returned on a directory miss. Misses are not
// pipeline errors: resolution degrades to free-text scoring.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityRecord maps a stable identity token ("<@U123>") to the user's
// display name. The forward (id to name) and reverse (name to id) views are
// rebuilt together and must stay consistent.
type IdentityRecord struct {
	UserID      string
	DisplayName string
}

// DirectoryRepository is the bidirectional identity directory.
type DirectoryRepository interface {
	// LookupByID resolves an identity token to its record, or
	// ErrIdentityNotFound.
	LookupByID(ctx context.Context, userID string) (*IdentityRecord, error)

	// LookupByName resolves an exact display name to its record, or
	// ErrIdentityNotFound.
	LookupByName(ctx context.Context, displayName string) (*IdentityRecord, error)

	// UpsertAll writes every record into the directory in one batch.
	// Existing entries not present in records are left untouched.
	UpsertAll(ctx context.Context, records []IdentityRecord) error
}

// UserEntry is one raw {id, name} pair from the platform's full user list.
type UserEntry struct {
	ID   string
	Name string
}

// UserLister supplies the complete user list, with upstream paging already
// collapsed into one snapshot.
type UserLister interface {
	ListUsers(ctx context.Context) ([]UserEntry, error)
}
