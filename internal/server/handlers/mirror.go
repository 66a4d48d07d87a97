package handlers

import (
	"net/http"

	"github.com/agentstation/designlib/internal/server/events"
	"github.com/agentstation/designlib/internal/server/response"
)

// HandleMirrorPush handles POST /api/v1/mirror/push.
func (h *Handlers) HandleMirrorPush(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.MirrorEnabled() {
		response.ServiceUnavailable(w, "no remote mirror configured")
		return
	}
	outcome, err := h.catalog.Push(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.broker.Publish(events.MirrorPushed, outcome)
	response.OK(w, outcome)
}

// HandleMirrorStatus handles GET /api/v1/mirror/status.
func (h *Handlers) HandleMirrorStatus(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.MirrorEnabled() {
		response.ServiceUnavailable(w, "no remote mirror configured")
		return
	}
	status, err := h.catalog.MirrorStatus(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, status)
}
