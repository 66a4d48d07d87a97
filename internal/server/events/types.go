// Package events fans catalog change notifications out to the server's
// real-time transports.
package events

import "time"

// EventType names a catalog event.
type EventType string

const (
	// FileAdded fires once per new (name, category) record.
	FileAdded EventType = "file.added"
	// FileRemoved fires once per record removed, including the old record
	// of a recategorization.
	FileRemoved EventType = "file.removed"
	// MirrorPushed fires after a manual mirror push.
	MirrorPushed EventType = "mirror.pushed"

	ClientConnected EventType = "client.connected"
)

// Event is one notification.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
