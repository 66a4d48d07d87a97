package designlib

import (
	"bytes"
	"context"

	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/logging"
	"github.com/agentstation/designlib/pkg/mirror"
)

// MirrorStatus compares the local ledger with its remote copy.
type MirrorStatus struct {
	Remote string `json:"remote" yaml:"remote"`
	Path   string `json:"path" yaml:"path"`
	Exists bool   `json:"exists" yaml:"exists"`
	SHA    string `json:"sha,omitempty" yaml:"sha,omitempty"`
	InSync bool   `json:"in_sync" yaml:"in_sync"`
}

var errMirrorDisabled = errors.NewConfigError("mirror", "no remote mirror configured", nil)

// MirrorEnabled reports whether changes are pushed to a remote.
func (c *client) MirrorEnabled() bool { return c.syncer != nil }

// Push sends the current ledger to the remote. Use it to catch up after a
// best-effort push failed.
func (c *client) Push(ctx context.Context) (mirror.Outcome, error) {
	if c.syncer == nil {
		return mirror.Outcome{}, errMirrorDisabled
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	content, err := c.ledger.Bytes()
	if err != nil {
		return mirror.Outcome{}, err
	}
	return c.syncer.Push(c.opContext(ctx, "push"), content)
}

// Restore replaces the local ledger with the remote copy and returns the
// number of records restored. It works on a corrupt local ledger.
func (c *client) Restore(ctx context.Context) (int, error) {
	if c.syncer == nil {
		return 0, errMirrorDisabled
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.syncer.Pull(ctx)
	if err != nil {
		return 0, err
	}
	records, repairs, err := ledger.Decode(snap.Content, c.syncer.Remote().Name()+":"+c.syncer.Path(), c.now)
	if err != nil {
		return 0, err
	}
	for _, r := range repairs {
		c.logger.Warn().Str("file", r.Name).Str("field", r.Field).Str("raw", r.Raw).Msg("repaired remote ledger row")
	}
	if err := c.ledger.Replace(records); err != nil {
		return 0, err
	}
	c.logger.Info().Int("records", len(records)).Str("sha", snap.SHA).Msg("ledger restored from mirror")
	return len(records), nil
}

// MirrorStatus fetches the remote copy and compares it with the ledger.
func (c *client) MirrorStatus(ctx context.Context) (*MirrorStatus, error) {
	if c.syncer == nil {
		return nil, errMirrorDisabled
	}
	c.mu.RLock()
	content, err := c.ledger.Bytes()
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	snap, err := c.syncer.Status(ctx)
	if err != nil {
		return nil, err
	}
	return &MirrorStatus{
		Remote: c.syncer.Remote().Name(),
		Path:   c.syncer.Path(),
		Exists: snap.Exists,
		SHA:    snap.SHA,
		InSync: snap.Exists && bytes.Equal(snap.Content, content),
	}, nil
}

// pushBestEffort mirrors the ledger after a committed change. Failures are
// logged and returned as warnings; the local change stands. Callers hold mu.
func (c *client) pushBestEffort(ctx context.Context, warnings []error) []error {
	if c.syncer == nil {
		return warnings
	}
	log := logging.FromContext(ctx)

	content, err := c.ledger.Bytes()
	if err != nil {
		log.Warn().Err(err).Msg("could not read ledger for mirror push")
		return append(warnings, err)
	}
	if _, err := c.syncer.Push(ctx, content); err != nil {
		log.Warn().Err(err).Msg("mirror push failed, local change kept")
		return append(warnings, err)
	}
	return warnings
}
