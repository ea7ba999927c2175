package domain

import (
	"context"
	"time"
)

// Storage is the persisted key/value state the original kept in browser
// local storage: session tokens, roles, the draft room selection.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ChatTransport is the publish/subscribe session behind the messenger.
type ChatTransport interface {
	Publish(ctx context.Context, destination string, payload []byte) error
	Subscribe(ctx context.Context, topic string, fn func(payload []byte)) (unsubscribe func(), err error)
}

// Submission is one booking attempt that reached the backend.
type Submission struct {
	VisitorID      string
	ClientID       int64
	RoomsRequested int
	RoomsBooked    int
	Outcome        string
	Detail         string
	CreatedAt      time.Time
}

const (
	OutcomeConfirmed    = "confirmed"
	OutcomeClientFailed = "client_failed"
	OutcomeRoomsFailed  = "rooms_failed"
	OutcomeInvalid      = "invalid"
	OutcomeClosed       = "closed"
)

type Journal interface {
	Record(ctx context.Context, s Submission) error
	Recent(ctx context.Context, limit int) ([]Submission, error)
}
