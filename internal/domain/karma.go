package domain

import (
	"context"
	"errors"
)

// ErrKarmaNotFound is returned when an entity has never been scored.
var ErrKarmaNotFound = errors.New("karma record not found")

// KarmaRecord is the running score for one canonical entity. Records are
// created on first mutation and never deleted.
type KarmaRecord struct {
	Entity string
	Score  int64
}

// KarmaRepository persists entity scores.
type KarmaRepository interface {
	// Get returns the record for an entity, or ErrKarmaNotFound.
	Get(ctx context.Context, entity string) (*KarmaRecord, error)

	// Add applies a signed delta to an entity's score, creating the record
	// with score = delta when it does not exist yet, and returns the
	// resulting score. The read-modify-write is atomic per entity:
	// concurrent deltas on the same entity must not be lost.
	Add(ctx context.Context, entity string, delta int64) (int64, error)
}

// EventLedger guarantees at-most-once processing of upstream event ids
// within the retention window.
type EventLedger interface {
	// Admit records the event id and reports whether this is the first
	// delivery. A false result means a not-yet-expired record already
	// exists and the event must be dropped.
	Admit(ctx context.Context, eventID string) (bool, error)
}

// Notifier hands an outbound (channel, text) notification to the messaging
// platform.
type Notifier interface {
	PostMessage(ctx context.Context, channelID, text string) error
}
