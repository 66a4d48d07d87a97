// Package handlers implements the HTTP API over a designlib.Catalog.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/server/events"
	"github.com/agentstation/designlib/internal/server/response"
	ws "github.com/agentstation/designlib/internal/server/websocket"
	"github.com/agentstation/designlib/pkg/errors"
)

// Handlers holds the dependencies shared by every endpoint.
type Handlers struct {
	catalog        designlib.Catalog
	broker         *events.Broker
	wsHub          *ws.Hub
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	maxUploadBytes int64
	startTime      time.Time
}

// New creates the handler set.
func New(
	catalog designlib.Catalog,
	broker *events.Broker,
	wsHub *ws.Hub,
	upgrader websocket.Upgrader,
	logger *zerolog.Logger,
	maxUploadBytes int64,
) *Handlers {
	return &Handlers{
		catalog:        catalog,
		broker:         broker,
		wsHub:          wsHub,
		upgrader:       upgrader,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
		startTime:      time.Now(),
	}
}

// warningStrings flattens warnings for JSON; error values do not marshal.
func warningStrings(warnings []error) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Error())
	}
	return out
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError(key, raw, "must be a non-negative integer")
	}
	return n, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError(key, raw, "must be a boolean")
	}
	return b, nil
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	response.ErrorFromType(w, err)
	h.logFor(r).Debug().Err(err).Msg("request failed")
}
