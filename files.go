package designlib

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/agentstation/designlib/pkg/activity"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/logging"
)

// UploadResult reports an upload or recategorization.
type UploadResult struct {
	Record FileRecord `json:"record" yaml:"record"`
	// Created is false when the (name, category) pair was already recorded.
	Created bool `json:"created" yaml:"created"`
	// Warnings are failures after the ledger committed: activity log
	// writes and mirror pushes.
	Warnings []error `json:"-" yaml:"-"`
}

// DeleteResult reports a delete.
type DeleteResult struct {
	Removed  []FileRecord `json:"removed" yaml:"removed"`
	Warnings []error      `json:"-" yaml:"-"`
}

// Upload implements Files.
func (c *client) Upload(ctx context.Context, name string, cat category.Category, data []byte) (*UploadResult, error) {
	ctx = logging.WithFile(c.opContext(ctx, "upload"), name)

	key, err := c.codec.Encode(name, cat)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Put(ctx, key, data); err != nil {
		return nil, errors.WrapResource("upload", "file", name, err)
	}

	rec, created, err := c.ledger.Append(ledger.FileRecord{Name: name, Category: cat, UploadedAt: c.now()})
	if err != nil {
		return nil, err
	}

	res := &UploadResult{Record: rec, Created: created}
	if created {
		res.Warnings = c.record(ctx, res.Warnings, activity.Created, rec)
		c.hooks.added(rec)
	}
	res.Warnings = c.pushBestEffort(ctx, res.Warnings)

	logging.FromContext(ctx).Info().
		Str("category", string(cat)).
		Int("bytes", len(data)).
		Bool("created", created).
		Msg("file uploaded")
	return res, nil
}

// Delete implements Files. Byte removal happens first; a store failure
// aborts before the ledger changes.
func (c *client) Delete(ctx context.Context, name string) (*DeleteResult, error) {
	ctx = logging.WithFile(c.opContext(ctx, "delete"), name)

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.ledger.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &DeleteResult{}, nil
	}

	for _, rec := range records {
		key, err := c.codec.Encode(rec.Name, rec.Category)
		if err != nil {
			return nil, err
		}
		if err := c.store.Remove(ctx, key); err != nil {
			return nil, errors.WrapResource("delete", "file", name, err)
		}
	}

	removed, err := c.ledger.Remove(name)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Removed: removed}
	for _, rec := range removed {
		res.Warnings = c.record(ctx, res.Warnings, activity.Deleted, rec)
	}
	c.hooks.removed(removed...)
	res.Warnings = c.pushBestEffort(ctx, res.Warnings)

	logging.FromContext(ctx).Info().Int("records", len(removed)).Msg("file deleted")
	return res, nil
}

// DeleteAll implements Files. Failed byte removals are reported as
// warnings; the ledger is emptied regardless and pushed once.
func (c *client) DeleteAll(ctx context.Context) (*DeleteResult, error) {
	ctx = c.opContext(ctx, "delete_all")
	log := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.ledger.Load()
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{}
	for _, rec := range records {
		key, err := c.codec.Encode(rec.Name, rec.Category)
		if err == nil {
			err = c.store.Remove(ctx, key)
		}
		if err != nil {
			log.Warn().Err(err).Str("file", rec.Name).Msg("could not remove stored bytes")
			res.Warnings = append(res.Warnings, errors.WrapResource("delete", "file", rec.Name, err))
		}
	}

	removed, err := c.ledger.RemoveAll()
	if err != nil {
		return nil, err
	}
	res.Removed = removed
	for _, rec := range removed {
		res.Warnings = c.record(ctx, res.Warnings, activity.Deleted, rec)
	}
	c.hooks.removed(removed...)
	res.Warnings = c.pushBestEffort(ctx, res.Warnings)

	log.Info().Int("records", len(removed)).Int("warnings", len(res.Warnings)).Msg("catalog emptied")
	return res, nil
}

// ListOption refines List.
type ListOption func(*listOptions)

type listOptions struct {
	order  ledger.Order
	search string
	limit  int
}

// NewestFirst orders by upload time, latest first.
func NewestFirst() ListOption {
	return func(o *listOptions) { o.order = ledger.NewestFirst }
}

// Search keeps records whose name contains q, ignoring case.
func Search(q string) ListOption {
	return func(o *listOptions) { o.search = q }
}

// Limit keeps at most n records; n <= 0 means no limit.
func Limit(n int) ListOption {
	return func(o *listOptions) { o.limit = n }
}

// List implements Files. It reads the ledger only; stored bytes are not
// checked.
func (c *client) List(ctx context.Context, filter category.Category, opts ...ListOption) ([]FileRecord, error) {
	if filter == "" {
		filter = category.All
	}
	if filter != category.All && !filter.Valid() {
		return nil, errors.NewValidationError("category", string(filter), "unknown category filter")
	}
	o := &listOptions{}
	for _, opt := range opts {
		opt(o)
	}

	c.mu.RLock()
	records, err := c.ledger.Filter(filter, o.order)
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if q := strings.TrimSpace(o.search); q != "" {
		fold := cases.Fold()
		needle := fold.String(q)
		kept := records[:0]
		for _, r := range records {
			if strings.Contains(fold.String(r.Name), needle) {
				kept = append(kept, r)
			}
		}
		records = kept
	}
	if o.limit > 0 && len(records) > o.limit {
		records = records[:o.limit]
	}
	return records, nil
}

// Get implements Files.
func (c *client) Get(ctx context.Context, name string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records, err := c.ledger.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.NewNotFoundError("file", name)
	}
	key, err := c.codec.Encode(records[0].Name, records[0].Category)
	if err != nil {
		return nil, err
	}
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewNotFoundError("file", name)
		}
		return nil, err
	}
	return data, nil
}

// Recategorize implements Files. Under the prefix policy the bytes move to
// the new key before the ledger changes; the old key is removed after.
func (c *client) Recategorize(ctx context.Context, name string, from, to category.Category) (*UploadResult, error) {
	ctx = logging.WithFile(c.opContext(ctx, "recategorize"), name)
	if !to.Valid() {
		return nil, errors.NewValidationError("category", string(to), "not an assignable category")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.ledger.Lookup(name)
	if err != nil {
		return nil, err
	}
	var current *FileRecord
	targetExists := false
	for i := range records {
		switch records[i].Category {
		case from:
			if current == nil {
				current = &records[i]
			}
		case to:
			targetExists = true
		}
	}
	if current == nil {
		return nil, errors.NewNotFoundError("record", name+" in "+string(from))
	}
	if from == to {
		return &UploadResult{Record: *current}, nil
	}

	res := &UploadResult{Created: !targetExists}
	oldKey, err := c.codec.Encode(name, from)
	if err != nil {
		return nil, err
	}
	newKey, err := c.codec.Encode(name, to)
	if err != nil {
		return nil, err
	}
	moved := oldKey != newKey
	if moved {
		data, err := c.store.Get(ctx, oldKey)
		switch {
		case errors.IsNotFound(err):
			moved = false
			logging.FromContext(ctx).Warn().Str("key", oldKey).Msg("stored bytes missing, updating ledger only")
			res.Warnings = append(res.Warnings, err)
		case err != nil:
			return nil, errors.WrapResource("recategorize", "file", name, err)
		default:
			if err := c.store.Put(ctx, newKey, data); err != nil {
				return nil, errors.WrapResource("recategorize", "file", name, err)
			}
		}
	}

	rec, err := c.ledger.Recategorize(name, from, to)
	if err != nil {
		return nil, err
	}
	res.Record = rec

	if moved {
		if err := c.store.Remove(ctx, oldKey); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("key", oldKey).Msg("could not remove old stored bytes")
			res.Warnings = append(res.Warnings, err)
		}
	}

	old := *current
	res.Warnings = c.record(ctx, res.Warnings, activity.Deleted, old)
	c.hooks.removed(old)
	if res.Created {
		res.Warnings = c.record(ctx, res.Warnings, activity.Created, rec)
		c.hooks.added(rec)
	}
	res.Warnings = c.pushBestEffort(ctx, res.Warnings)

	logging.FromContext(ctx).Info().Str("from", string(from)).Str("to", string(to)).Msg("file recategorized")
	return res, nil
}

// record appends an activity entry, turning a failure into a warning.
func (c *client) record(ctx context.Context, warnings []error, action activity.Action, rec FileRecord) []error {
	if err := c.activity.Record(action, rec.Name, rec.Category); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("action", string(action)).Msg("activity log write failed")
		return append(warnings, err)
	}
	return warnings
}
