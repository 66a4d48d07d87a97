package designlib

import (
	"context"

	"github.com/agentstation/designlib/pkg/activity"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/logging"
)

// Report lists disagreements between the ledger and the file store.
type Report struct {
	// MissingBytes are records whose stored bytes are gone.
	MissingBytes []FileRecord `json:"missing_bytes" yaml:"missing_bytes"`
	// Orphans are store keys no record points at.
	Orphans []string `json:"orphans" yaml:"orphans"`
}

// Consistent reports whether nothing was found.
func (r *Report) Consistent() bool {
	return len(r.MissingBytes) == 0 && len(r.Orphans) == 0
}

// Verify implements Auditor.
func (c *client) Verify(ctx context.Context) (*Report, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.verify(ctx)
}

func (c *client) verify(ctx context.Context) (*Report, error) {
	records, err := c.ledger.Load()
	if err != nil {
		return nil, err
	}
	keys, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(keys))
	for _, k := range keys {
		stored[k] = true
	}

	report := &Report{MissingBytes: []FileRecord{}, Orphans: []string{}}
	referenced := make(map[string]bool, len(records))
	for _, r := range records {
		key, err := c.codec.Encode(r.Name, r.Category)
		if err != nil {
			return nil, err
		}
		referenced[key] = true
		if !stored[key] {
			report.MissingBytes = append(report.MissingBytes, r)
		}
	}
	for _, k := range keys {
		if !referenced[k] {
			report.Orphans = append(report.Orphans, k)
		}
	}
	return report, nil
}

// Reindex implements Auditor. Each orphaned key is adopted into the ledger
// with the category its key decodes to; under the side-table policy that is
// Other. Keys that do not re-encode to themselves are moved to the key the
// codec expects.
func (c *client) Reindex(ctx context.Context) ([]FileRecord, error) {
	ctx = c.opContext(ctx, "reindex")
	log := logging.FromContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	report, err := c.verify(ctx)
	if err != nil {
		return nil, err
	}

	var adopted []FileRecord
	var warnings []error
	for _, key := range report.Orphans {
		name, cat, err := c.codec.Decode(key)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping undecodable key")
			continue
		}
		want, err := c.codec.Encode(name, cat)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("skipping key")
			continue
		}
		if want != key {
			if err := c.moveKey(ctx, key, want); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("could not move orphaned bytes")
				continue
			}
		}

		rec, added, err := c.ledger.Append(ledger.FileRecord{Name: name, Category: cat, UploadedAt: c.now()})
		if err != nil {
			return adopted, err
		}
		if !added {
			continue
		}
		adopted = append(adopted, rec)
		warnings = c.record(ctx, warnings, activity.Created, rec)
		c.hooks.added(rec)
	}

	if len(adopted) > 0 {
		warnings = c.pushBestEffort(ctx, warnings)
	}
	log.Info().Int("adopted", len(adopted)).Int("warnings", len(warnings)).Msg("reindex complete")
	return adopted, nil
}

func (c *client) moveKey(ctx context.Context, from, to string) error {
	if _, err := c.store.Get(ctx, to); err == nil {
		return errors.NewValidationError("key", to, "target key already holds bytes")
	} else if !errors.IsNotFound(err) {
		return err
	}
	data, err := c.store.Get(ctx, from)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, to, data); err != nil {
		return err
	}
	return c.store.Remove(ctx, from)
}
