package handlers

import (
	"net/http"

	"github.com/agentstation/designlib/internal/server/response"
	"github.com/agentstation/designlib/pkg/activity"
)

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, stats)
}

// HandleActivity handles GET /api/v1/activity?limit=n.
func (h *Handlers) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	entries, err := h.catalog.Activity(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	response.OK(w, map[string]any{"entries": entries, "count": len(entries)})
}

// HandleVerify handles GET /api/v1/verify.
func (h *Handlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	report, err := h.catalog.Verify(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{
		"consistent":    report.Consistent(),
		"missing_bytes": report.MissingBytes,
		"orphans":       report.Orphans,
	})
}

// HandleReindex handles POST /api/v1/verify/reindex.
func (h *Handlers) HandleReindex(w http.ResponseWriter, r *http.Request) {
	adopted, err := h.catalog.Reindex(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, map[string]any{"adopted": adopted, "count": len(adopted)})
}
