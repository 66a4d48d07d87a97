// Package serve provides the HTTP API server command.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/server"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "management",
		Short:   "Start the REST API server with WebSocket events",
		Long: `Start the HTTP API for the catalog.

Features:
  - Upload, list, download, delete and recategorize files under /api/v1/files
  - Stats, activity, consistency checks and mirror control
  - WebSocket stream of file.added / file.removed events (/api/v1/events/ws)
  - Request IDs, access logging, panic recovery, CORS and upload size limits
  - Graceful shutdown on SIGINT/SIGTERM`,
		Example: `  # Start on the configured host and port (default localhost:8080)
  designlib serve

  # Listen on all interfaces, allow a web front end
  designlib serve --host 0.0.0.0 --port 3000 --cors-origins https://designs.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configFromFlags(cmd, app.ServerConfig())
			if err != nil {
				return err
			}
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			srv := server.New(catalog, cfg, app.Logger())
			cmdutil.Alerts(cmd).Write(alerts.NewInfo(fmt.Sprintf("serving http://%s%s (Ctrl+C to stop)", srv.Addr(), cfg.PathPrefix)))
			return srv.ListenAndServe(cmd.Context())
		},
	}

	defaults := server.DefaultConfig()
	cmd.Flags().String("host", "", fmt.Sprintf("Bind address (default %q or server_host)", defaults.Host))
	cmd.Flags().Int("port", 0, fmt.Sprintf("Server port (default %d or server_port)", defaults.Port))
	cmd.Flags().StringSlice("cors-origins", nil, "Allowed CORS origins (comma-separated, \"*\" for any)")
	cmd.Flags().Int64("max-upload-bytes", 0, "Request body limit in bytes (default from max_upload_bytes)")
	cmd.Flags().Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout")

	return cmd
}

// configFromFlags overlays explicitly set flags on cfg.
func configFromFlags(cmd *cobra.Command, cfg server.Config) (server.Config, error) {
	flags := cmd.Flags()
	var err error
	if flags.Changed("host") {
		if cfg.Host, err = flags.GetString("host"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("port") {
		if cfg.Port, err = flags.GetInt("port"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("cors-origins") {
		if cfg.CORSOrigins, err = flags.GetStringSlice("cors-origins"); err != nil {
			return cfg, err
		}
	}
	if flags.Changed("max-upload-bytes") {
		if cfg.MaxUploadBytes, err = flags.GetInt64("max-upload-bytes"); err != nil {
			return cfg, err
		}
	}
	if cfg.ReadTimeout, err = flags.GetDuration("read-timeout"); err != nil {
		return cfg, err
	}
	if cfg.WriteTimeout, err = flags.GetDuration("write-timeout"); err != nil {
		return cfg, err
	}
	return cfg, nil
}
