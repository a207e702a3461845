package gamification

import (
	"context"
	"time"
)

// LocalStore is the device-side durable snapshot store. It is the
// durability boundary: every mutation is written here synchronously.
// Get returns (nil, nil) when no snapshot exists yet.
type LocalStore interface {
	Get(identity string) (*Progress, error)
	Set(identity string, p *Progress) error
	Clear(identity string) error
}

// RemoteStore receives best-effort profile upserts. Writes are keyed by
// identity and idempotent, so the debounced syncer can retry freely.
type RemoteStore interface {
	UpsertProfile(ctx context.Context, snap ProfileSnapshot) error
}

// ProfileSnapshot is the subset of progress pushed to the remote store.
type ProfileSnapshot struct {
	Identity          string
	TotalXP           int
	DayStreak         int
	QuestionsAnswered int
	CorrectAnswers    int
	SyncedAt          time.Time
}
