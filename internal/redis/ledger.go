package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// eventRetention is how long a processed event id stays in the ledger.
// Slack retries deliveries for far less than this.
const eventRetention = 24 * time.Hour

// EventLedger implements domain.EventLedger on Redis. Admission is a single
// SET NX with TTL, so the existence check and the write are one conditional
// put: a concurrent duplicate delivery loses the race instead of slipping
// through a check-then-act window.
type EventLedger struct {
	rdb *goredis.Client
}

func NewEventLedger(rdb *goredis.Client) *EventLedger {
	return &EventLedger{rdb: rdb}
}

func (l *EventLedger) Admit(ctx context.Context, eventID string) (bool, error) {
	set, err := l.rdb.SetNX(ctx, eventKey(eventID), "1", eventRetention).Result()
	if err != nil {
		return false, fmt.Errorf("failed to admit event %s: %w", eventID, err)
	}
	return set, nil
}

func eventKey(eventID string) string {
	return "event:" + eventID
}
