package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/internal/server/response"
	"github.com/agentstation/designlib/pkg/logging"
)

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":            "healthy",
		"service":           "designlib-api",
		"version":           "v1",
		"root":              h.catalog.Root(),
		"codec":             h.catalog.Codec().Policy(),
		"mirror":            h.catalog.MirrorEnabled(),
		"websocket_clients": h.wsHub.ClientCount(),
		"uptime":            time.Since(h.startTime).Round(time.Second).String(),
	})
}

func (h *Handlers) logFor(r *http.Request) *zerolog.Logger {
	return logging.FromContextOr(r.Context(), h.logger)
}
