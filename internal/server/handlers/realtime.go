package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agentstation/designlib/internal/server/events"
	ws "github.com/agentstation/designlib/internal/server/websocket"
)

// HandleWebSocket handles GET /api/v1/events/ws. Clients receive file.added
// and file.removed messages as the catalog changes.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logFor(r).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	h.wsHub.Register(client)
	h.broker.Publish(events.ClientConnected, map[string]any{"client_id": client.ID()})

	go client.WritePump()
	go client.ReadPump()
}
