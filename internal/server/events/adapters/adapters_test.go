package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/internal/server/events"
	ws "github.com/agentstation/designlib/internal/server/websocket"
)

// TestWebSocketSubscriber_Send checks events become hub messages.
func TestWebSocketSubscriber_Send(t *testing.T) {
	logger := zerolog.Nop()
	hub := ws.NewHub(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go hub.Run(ctx)

	client := ws.NewClient("test", hub, nil)
	hub.Register(client)
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	sub := NewWebSocketSubscriber(hub)
	ts := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := sub.Send(events.Event{Type: events.FileAdded, Timestamp: ts, Data: "plan1.pdf"}); err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}

	select {
	case msg := <-client.Messages():
		if msg.Type != "file.added" {
			t.Errorf("expected type file.added, got %s", msg.Type)
		}
		if !msg.Timestamp.Equal(ts) {
			t.Errorf("timestamp not carried over")
		}
	case <-time.After(time.Second):
		t.Fatal("client did not receive message")
	}

	if err := sub.Close(); err != nil {
		t.Errorf("Close() returned error: %v", err)
	}
}
