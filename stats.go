package designlib

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/agentstation/designlib/pkg/activity"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/store"
)

// Stats is the dashboard summary of the catalog.
type Stats struct {
	Total      int                       `json:"total" yaml:"total"`
	ByCategory map[category.Category]int `json:"by_category" yaml:"by_category"`
	// ByExtension counts lower-cased extensions without the dot; "" holds
	// names without one.
	ByExtension map[string]int `json:"by_extension" yaml:"by_extension"`
	Recent      []FileRecord   `json:"recent" yaml:"recent"`
	// Bytes is the stored size of every record whose bytes are present.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// Extension returns the lower-cased extension of name without its dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Stats implements Auditor.
func (c *client) Stats(ctx context.Context) (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.ledger.Filter(category.All, ledger.Insertion)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		Total:       len(records),
		ByCategory:  make(map[category.Category]int, len(category.Known())),
		ByExtension: map[string]int{},
	}
	for _, k := range category.Known() {
		st.ByCategory[k] = 0
	}

	sizes := map[string]bool{}
	for _, r := range records {
		st.ByCategory[r.Category]++
		st.ByExtension[Extension(r.Name)]++

		key, err := c.codec.Encode(r.Name, r.Category)
		if err != nil || sizes[key] {
			continue
		}
		sizes[key] = true
		if n, ok := c.size(ctx, key); ok {
			st.Bytes += n
		}
	}

	newest, err := c.ledger.Filter(category.All, ledger.NewestFirst)
	if err != nil {
		return nil, err
	}
	if len(newest) > constants.RecentUploads {
		newest = newest[:constants.RecentUploads]
	}
	st.Recent = newest
	return st, nil
}

func (c *client) size(ctx context.Context, key string) (int64, bool) {
	if sizer, ok := c.store.(store.Sizer); ok {
		n, err := sizer.Size(ctx, key)
		return n, err == nil
	}
	data, err := c.store.Get(ctx, key)
	return int64(len(data)), err == nil
}

// Activity implements Auditor. limit <= 0 returns the whole log.
func (c *client) Activity(_ context.Context, limit int) ([]activity.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activity.Tail(limit)
}
