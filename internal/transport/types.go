package transport

import "context"

// Transport is the messaging-platform boundary. All three calls are fallible
// and callers are expected to handle failures per destination: one bad
// channel must never abort a batch.
type Transport interface {
	SendMessage(ctx context.Context, destID string, text string) error
	SendPoll(ctx context.Context, destID string, question string, options []string) error
	MemberCount(ctx context.Context, destID string) (int, error)
}

// JoinEvent describes a member joining a destination.
type JoinEvent struct {
	DestID   string
	Username string
}

// JoinHandler receives join events from the platform.
type JoinHandler func(ctx context.Context, ev JoinEvent)
