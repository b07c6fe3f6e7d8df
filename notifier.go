package ccsession

// Change describes one identity transition. User is nil for transitions
// into StateAnonymous.
type Change struct {
	State State
	User  *User
	// AccountSwitch marks a transition between two authenticated accounts
	// in the same browser session, as opposed to a fresh login.
	AccountSwitch bool
}

// Notifier observes identity transitions. Implementations must not block;
// the coordinator calls Notify synchronously after each applied change.
type Notifier interface {
	Notify(change Change)
}

// NoopNotifier ignores all changes.
type NoopNotifier struct{}

// Notify implements Notifier.
func (NoopNotifier) Notify(Change) {}

// ChannelNotifier buffers changes on a channel. When the buffer is full
// the change is dropped rather than blocking the coordinator.
type ChannelNotifier struct {
	changes chan Change
}

// NewChannelNotifier builds a ChannelNotifier with the given buffer size.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNotifier{
		changes: make(chan Change, buffer),
	}
}

// Notify implements Notifier.
func (n *ChannelNotifier) Notify(change Change) {
	select {
	case n.changes <- change:
	default:
	}
}

// Changes exposes the buffered change stream.
func (n *ChannelNotifier) Changes() <-chan Change {
	return n.changes
}
