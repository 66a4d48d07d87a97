package designlib

import (
	"sync"
)

// Hook function types for catalog events
type (
	// FileAddedHook is called after a record is added to the ledger
	FileAddedHook func(rec FileRecord)

	// FileRemovedHook is called after a record is removed from the ledger
	FileRemovedHook func(rec FileRecord)
)

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu        sync.RWMutex
	onAdded   []FileAddedHook
	onRemoved []FileRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnFileAdded registers a callback for added records
func (h *hooks) OnFileAdded(fn FileAddedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onAdded = append(h.onAdded, fn)
}

// OnFileRemoved registers a callback for removed records
func (h *hooks) OnFileRemoved(fn FileRemovedHook) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRemoved = append(h.onRemoved, fn)
}

func (h *hooks) added(recs ...FileRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rec := range recs {
		for _, fn := range h.onAdded {
			fn(rec)
		}
	}
}

func (h *hooks) removed(recs ...FileRecord) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rec := range recs {
		for _, fn := range h.onRemoved {
			fn(rec)
		}
	}
}
