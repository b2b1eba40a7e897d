package domain

import "context"

type BroadcastTarget struct {
	Name  string
	Email string
	Phone string
}

// Broadcaster is the best-effort out-of-band push channel. Callers discard
// its outcome except for logging; a Push failure must never affect the
// success of the persisted delivery state.
type Broadcaster interface {
	Push(ctx context.Context, target BroadcastTarget, subject, body string) error
}
