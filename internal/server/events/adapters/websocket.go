// Package adapters connects the event broker to concrete transports.
package adapters

import (
	"github.com/agentstation/designlib/internal/server/events"
	ws "github.com/agentstation/designlib/internal/server/websocket"
)

// WebSocketSubscriber forwards broker events to every websocket client.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber wraps hub.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send implements events.Subscriber.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close is a no-op; the hub owns its connections.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
