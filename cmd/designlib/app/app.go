// Package app provides the application context and dependency management
// for the designlib CLI: configuration, logging and the lazily opened
// catalog shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/server"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/errors"
	"github.com/agentstation/designlib/pkg/mirror"
	"github.com/agentstation/designlib/pkg/store"
)

var _ appcontext.Interface = (*App)(nil)

// App represents the designlib application with all its dependencies.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// fs overrides the OS filesystem for the ledger and local store.
	fs afero.Fs

	// Catalog instance (lazy-initialized, singleton)
	mu      sync.RWMutex
	catalog designlib.Catalog
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the --format value, empty for auto-detection.
func (a *App) OutputFormat() string { return a.config.Format }

// ServerConfig derives the HTTP server settings from the configuration.
func (a *App) ServerConfig() server.Config {
	cfg := server.DefaultConfig()
	cfg.Host = a.config.ServerHost
	cfg.Port = a.config.ServerPort
	cfg.CORSOrigins = a.config.CORSOrigins
	cfg.MaxUploadBytes = a.config.MaxUploadBytes
	return cfg
}

// Catalog returns the catalog, opening it on first use. This is thread-safe
// and ensures only one instance is created.
func (a *App) Catalog(ctx context.Context) (designlib.Catalog, error) {
	a.mu.RLock()
	if a.catalog != nil {
		c := a.catalog
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}

	c, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	a.catalog = c
	return c, nil
}

// CatalogWithOptions opens a separate catalog with extra options, e.g.
// designlib.WithRecoveryMode for restoring a corrupt ledger. The caller
// closes it.
func (a *App) CatalogWithOptions(ctx context.Context, opts ...designlib.Option) (designlib.Catalog, error) {
	return a.open(ctx, opts...)
}

func (a *App) open(ctx context.Context, extra ...designlib.Option) (designlib.Catalog, error) {
	if err := a.config.Validate(); err != nil {
		return nil, err
	}

	opts, err := a.buildCatalogOptions(ctx)
	if err != nil {
		return nil, err
	}
	c, err := designlib.New(a.config.Root, append(opts, extra...)...)
	if err != nil {
		return nil, errors.WrapResource("open", "catalog", a.config.Root, err)
	}
	return c, nil
}

// buildCatalogOptions constructs catalog options from the app configuration.
func (a *App) buildCatalogOptions(ctx context.Context) ([]designlib.Option, error) {
	opts := []designlib.Option{
		designlib.WithLogger(a.logger),
		designlib.WithPolicy(category.Policy(a.config.Codec)),
		designlib.WithCorruptLedgerReset(a.config.ResetCorruptLedger),
	}
	if a.fs != nil {
		opts = append(opts, designlib.WithFs(a.fs))
	}

	s, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}
	if s != nil {
		opts = append(opts, designlib.WithStore(s))
	}

	if a.config.MirrorEnabled() {
		opts = append(opts,
			designlib.WithGitHubMirror(mirror.GitHubConfig{
				Token:  a.config.GitHubToken,
				Repo:   a.config.GitHubRepo,
				Branch: a.config.GitHubBranch,
				APIURL: a.config.GitHubAPIURL,
			}),
			designlib.WithMirrorPath(a.config.GitHubPath),
		)
		if a.config.MirrorTimeout > 0 {
			opts = append(opts, designlib.WithMirrorTimeout(a.config.MirrorTimeout))
		}
	}
	return opts, nil
}

// buildStore returns nil for the local backend; the catalog then keeps
// files under <root>/uploaded_files.
func (a *App) buildStore(ctx context.Context) (store.Store, error) {
	switch a.config.Store {
	case StoreS3:
		return store.NewS3(ctx, store.S3Config{
			Bucket:    a.config.S3Bucket,
			Region:    a.config.S3Region,
			Prefix:    a.config.S3Prefix,
			Endpoint:  a.config.S3Endpoint,
			AccessKey: a.config.S3AccessKey,
			SecretKey: a.config.S3SecretKey,
		})
	case StoreJetStream:
		js, err := store.NewJetStream(a.config.NATSURL, a.config.NATSBucket)
		if err != nil {
			return nil, err
		}
		if err := js.Init(ctx); err != nil {
			_ = js.Close()
			return nil, err
		}
		return js, nil
	default:
		return nil, nil
	}
}

// Shutdown releases the catalog's store connection, if one was opened.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.catalog
	a.catalog = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	if err := c.Close(); err != nil {
		return errors.WrapResource("close", "catalog", c.Root(), err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return errors.NewValidationError("config", nil, "config cannot be nil")
		}
		a.config = config
		logger := NewLogger(config)
		a.logger = &logger
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithFs keeps the ledger, activity log and local files on fs.
func WithFs(fs afero.Fs) Option {
	return func(a *App) error {
		a.fs = fs
		return nil
	}
}

// WithCatalog sets a custom catalog instance (useful for testing).
func WithCatalog(c designlib.Catalog) Option {
	return func(a *App) error {
		a.catalog = c
		return nil
	}
}
