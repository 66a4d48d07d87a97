// Package appcontext defines what CLI commands need from the application,
// so commands can be tested against Mock instead of the full App.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/server"
)

// Interface is implemented by cmd/designlib/app.App and by Mock.
type Interface interface {
	// Catalog returns the shared catalog, opening it on first use.
	Catalog(ctx context.Context) (designlib.Catalog, error)

	// CatalogWithOptions opens a separate catalog with extra options
	// appended to the configured ones, e.g. designlib.WithRecoveryMode().
	CatalogWithOptions(ctx context.Context, opts ...designlib.Option) (designlib.Catalog, error)

	Logger() *zerolog.Logger

	// OutputFormat is the resolved --format value: table, json or yaml.
	OutputFormat() string

	// ServerConfig is the HTTP server configuration.
	ServerConfig() server.Config

	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}
