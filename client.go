// Package designlib is a catalog of structural design files. It keeps the
// uploaded bytes in a file store, tracks every (name, category) pair in a CSV
// ledger, appends an audit trail of changes, and mirrors the ledger to a
// remote repository after each change.
//
// Example usage:
//
//	cat, err := designlib.New("./designlib-data",
//	    designlib.WithPolicy(category.PolicyPrefix),
//	    designlib.WithGitHubMirror(mirror.GitHubConfig{Token: token, Repo: "acme/designs"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := cat.Upload(ctx, "plan1.pdf", category.Plans2D, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, w := range res.Warnings {
//	    log.Printf("mirror: %v", w)
//	}
//
//	records, _ := cat.List(ctx, category.All, designlib.NewestFirst(), designlib.Limit(5))
package designlib

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib/pkg/activity"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/ledger"
	"github.com/agentstation/designlib/pkg/logging"
	"github.com/agentstation/designlib/pkg/mirror"
	"github.com/agentstation/designlib/pkg/store"
)

// Compile-time interface check to ensure proper implementation.
var _ Catalog = (*client)(nil)

// FileRecord is a ledger entry.
type FileRecord = ledger.FileRecord

// Files is the day-to-day catalog surface.
type Files interface {
	// Upload stores data and records (name, c). Re-uploading an existing
	// pair overwrites the bytes and keeps the original record.
	Upload(ctx context.Context, name string, c category.Category, data []byte) (*UploadResult, error)

	// Delete removes every record named name, in any category.
	Delete(ctx context.Context, name string) (*DeleteResult, error)

	// DeleteAll empties the catalog even when some byte removals fail.
	DeleteAll(ctx context.Context) (*DeleteResult, error)

	// List returns the records matching filter (category.All for every record).
	List(ctx context.Context, filter category.Category, opts ...ListOption) ([]FileRecord, error)

	// Get returns the bytes of the first record named name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Recategorize moves (name, from) to (name, to).
	Recategorize(ctx context.Context, name string, from, to category.Category) (*UploadResult, error)
}

// Mirror controls the remote copy of the ledger.
type Mirror interface {
	MirrorEnabled() bool
	Push(ctx context.Context) (mirror.Outcome, error)
	Restore(ctx context.Context) (int, error)
	MirrorStatus(ctx context.Context) (*MirrorStatus, error)
}

// Auditor reports on catalog health and history.
type Auditor interface {
	Stats(ctx context.Context) (*Stats, error)
	Verify(ctx context.Context) (*Report, error)
	Reindex(ctx context.Context) ([]FileRecord, error)
	Activity(ctx context.Context, limit int) ([]activity.Entry, error)
}

// Hooks registers change callbacks.
type Hooks interface {
	OnFileAdded(FileAddedHook)
	OnFileRemoved(FileRemovedHook)
}

// Catalog is a design file catalog rooted at one deployment directory.
type Catalog interface {
	Files
	Mirror
	Auditor
	Hooks

	Root() string
	Codec() category.Codec
	Close() error
}

// client is the Catalog implementation. mu serializes every mutation,
// including its mirror push, against concurrent readers.
type client struct {
	mu sync.RWMutex

	root     string
	codec    category.Codec
	store    store.Store
	ledger   *ledger.Ledger
	activity *activity.Log
	syncer   *mirror.Syncer
	now      func() time.Time
	logger   *zerolog.Logger
	hooks    *hooks
}

// New opens the catalog rooted at root. The ledger is read once to surface
// corruption early; a missing ledger is created empty.
func New(root string, opts ...Option) (Catalog, error) {
	if root == "" {
		root = constants.DefaultRoot
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.WrapResource("apply", "option", "", err)
		}
	}

	c := &client{
		root:   root,
		codec:  cfg.codec,
		store:  cfg.store,
		now:    cfg.now,
		logger: cfg.logger,
		hooks:  newHooks(),
	}
	if c.codec == nil {
		codec, err := category.NewCodec(cfg.policy)
		if err != nil {
			return nil, err
		}
		c.codec = codec
	}
	if c.store == nil {
		s, err := store.NewFS(cfg.fs, filepath.Join(root, constants.FilesDir))
		if err != nil {
			return nil, err
		}
		c.store = s
	}

	c.ledger = ledger.New(cfg.fs, filepath.Join(root, constants.LedgerFile),
		ledger.WithClock(cfg.now), ledger.WithLogger(cfg.logger))
	c.activity = activity.New(cfg.fs, filepath.Join(root, constants.ActivityFile),
		activity.WithClock(cfg.now), activity.WithLogger(cfg.logger))

	if cfg.remote != nil {
		c.syncer = mirror.NewSyncer(cfg.remote, cfg.mirrorPath,
			mirror.WithTimeout(cfg.mirrorTimeout), mirror.WithLogger(cfg.logger))
	}

	if cfg.recovery {
		return c, nil
	}
	if _, err := c.ledger.Load(); err != nil {
		if !errors.IsCorruptLedger(err) || !cfg.resetCorrupt {
			return nil, err
		}
		moved, rerr := c.ledger.Reset()
		if rerr != nil {
			return nil, rerr
		}
		c.logger.Warn().Err(err).Str("moved_to", moved).Msg("corrupt ledger moved aside, starting empty")
	}
	if err := c.ledger.Init(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("root", root).
		Str("codec", string(c.codec.Policy())).
		Bool("mirror", c.syncer != nil).
		Msg("catalog opened")
	return c, nil
}

// opContext tags ctx for one catalog operation, seeding it with the
// catalog's logger unless the caller supplied one.
func (c *client) opContext(ctx context.Context, op string) context.Context {
	ctx = logging.WithLogger(ctx, logging.FromContextOr(ctx, c.logger))
	return logging.WithOperation(ctx, op)
}

// Root returns the deployment directory.
func (c *client) Root() string { return c.root }

// Codec returns the key codec in use.
func (c *client) Codec() category.Codec { return c.codec }

// Close releases the store's connection, if it holds one.
func (c *client) Close() error {
	if closer, ok := c.store.(store.Closer); ok {
		return closer.Close()
	}
	return nil
}

// OnFileAdded registers fn to run after a record is added.
func (c *client) OnFileAdded(fn FileAddedHook) { c.hooks.OnFileAdded(fn) }

// OnFileRemoved registers fn to run after a record is removed.
func (c *client) OnFileRemoved(fn FileRemovedHook) { c.hooks.OnFileRemoved(fn) }
