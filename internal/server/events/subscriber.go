package events

// Subscriber adapts the event stream to one transport.
type Subscriber interface {
	// Send delivers an event. Implementations must not block.
	Send(Event) error

	Close() error
}
