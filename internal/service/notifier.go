package service

import "context"

// Event names emitted on the per-project realtime channel. Consumers use
// them only as a hint to re-fetch authoritative state; delivery is best
// effort and never a correctness dependency.
const (
	EventMessageNew       = "message:new"
	EventMessageDelivered = "message:delivered"
	EventMessageRead      = "message:read"
	EventMemberJoined     = "member:joined"
	EventMemberRemoved    = "member:removed"
)

// Notifier is the outbound port for realtime notifications. Implementations
// must not block beyond their own internal timeouts; publish errors are
// theirs to log and swallow.
type Notifier interface {
	Publish(ctx context.Context, projectID, event string, payload interface{})
}

// NopNotifier discards every event. Used when the realtime channel is not
// wired, and in tests.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, projectID, event string, payload interface{}) {}
