package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/server"
	"github.com/agentstation/designlib/pkg/logging"
)

// Mock implements Interface from function fields. Nil fields return zero
// values, except Logger which returns a no-op logger.
type Mock struct {
	CatalogFunc            func(context.Context) (designlib.Catalog, error)
	CatalogWithOptionsFunc func(context.Context, ...designlib.Option) (designlib.Catalog, error)
	LoggerFunc             func() *zerolog.Logger
	Format                 string
	Server                 server.Config
	VersionString          string
}

var _ Interface = (*Mock)(nil)

// Catalog implements Interface.
func (m *Mock) Catalog(ctx context.Context) (designlib.Catalog, error) {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(ctx)
	}
	return nil, nil
}

// CatalogWithOptions implements Interface.
func (m *Mock) CatalogWithOptions(ctx context.Context, opts ...designlib.Option) (designlib.Catalog, error) {
	if m.CatalogWithOptionsFunc != nil {
		return m.CatalogWithOptionsFunc(ctx, opts...)
	}
	return m.Catalog(ctx)
}

// Logger implements Interface.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat implements Interface.
func (m *Mock) OutputFormat() string { return m.Format }

// ServerConfig implements Interface.
func (m *Mock) ServerConfig() server.Config { return m.Server }

// Version implements Interface.
func (m *Mock) Version() string { return m.VersionString }

// Commit implements Interface.
func (m *Mock) Commit() string { return "" }

// Date implements Interface.
func (m *Mock) Date() string { return "" }

// BuiltBy implements Interface.
func (m *Mock) BuiltBy() string { return "" }
