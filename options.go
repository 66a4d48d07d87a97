package designlib

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/logging"
	"github.com/agentstation/designlib/pkg/mirror"
	"github.com/agentstation/designlib/pkg/store"
)

// Option is a function that configures a Catalog.
type Option func(*config) error

type config struct {
	fs     afero.Fs
	store  store.Store
	codec  category.Codec
	policy category.Policy
	now    func() time.Time
	logger *zerolog.Logger

	remote        mirror.Remote
	mirrorPath    string
	mirrorTimeout time.Duration

	resetCorrupt bool
	recovery     bool
}

func defaultConfig() *config {
	return &config{
		fs:            afero.NewOsFs(),
		policy:        category.PolicyPrefix,
		now:           time.Now,
		logger:        logging.Default(),
		mirrorPath:    constants.DefaultMirrorPath,
		mirrorTimeout: constants.RemoteTimeout,
	}
}

// WithFs sets the filesystem holding the ledger, the activity log and,
// unless WithStore is given, the uploaded files.
func WithFs(fs afero.Fs) Option {
	return func(c *config) error {
		if fs == nil {
			return errors.NewValidationError("fs", nil, "filesystem cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

// WithStore keeps uploaded bytes in s instead of <root>/uploaded_files.
func WithStore(s store.Store) Option {
	return func(c *config) error {
		if s == nil {
			return errors.NewValidationError("store", nil, "store cannot be nil")
		}
		c.store = s
		return nil
	}
}

// WithPolicy selects the key codec by policy name.
func WithPolicy(p category.Policy) Option {
	return func(c *config) error {
		codec, err := category.NewCodec(p)
		if err != nil {
			return err
		}
		c.policy = p
		c.codec = codec
		return nil
	}
}

// WithCodec sets the key codec directly.
func WithCodec(codec category.Codec) Option {
	return func(c *config) error {
		if codec == nil {
			return errors.NewValidationError("codec", nil, "codec cannot be nil")
		}
		c.codec = codec
		return nil
	}
}

// WithClock replaces time.Now for upload and activity timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) error {
		if now == nil {
			return errors.NewValidationError("clock", nil, "clock cannot be nil")
		}
		c.now = now
		return nil
	}
}

// WithLogger sets the catalog logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithMirror pushes the ledger to remote after every change.
func WithMirror(remote mirror.Remote) Option {
	return func(c *config) error {
		c.remote = remote
		return nil
	}
}

// WithGitHubMirror is WithMirror for a GitHub repository.
func WithGitHubMirror(cfg mirror.GitHubConfig) Option {
	return func(c *config) error {
		gh, err := mirror.NewGitHub(cfg)
		if err != nil {
			return err
		}
		c.remote = gh
		return nil
	}
}

// WithMirrorPath sets the remote path of the mirrored ledger.
func WithMirrorPath(path string) Option {
	return func(c *config) error {
		if path != "" {
			c.mirrorPath = path
		}
		return nil
	}
}

// WithMirrorTimeout bounds each mirror push or pull.
func WithMirrorTimeout(d time.Duration) Option {
	return func(c *config) error {
		if d <= 0 {
			return errors.NewValidationError("mirror_timeout", d, "must be positive")
		}
		c.mirrorTimeout = d
		return nil
	}
}

// WithCorruptLedgerReset moves an unreadable ledger aside and starts empty
// instead of failing New.
func WithCorruptLedgerReset(enabled bool) Option {
	return func(c *config) error {
		c.resetCorrupt = enabled
		return nil
	}
}

// WithRecoveryMode skips the ledger check in New so that Restore can
// replace a corrupt ledger. Other operations keep failing until then.
func WithRecoveryMode() Option {
	return func(c *config) error {
		c.recovery = true
		return nil
	}
}
