// Package mirror provides the commands that manage the remote ledger copy.
package mirror

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/cmd/output"
	"github.com/agentstation/designlib/pkg/errors"
)

// NewCommand creates the mirror command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mirror",
		GroupID: "management",
		Short:   "Manage the remote copy of the ledger",
		Long: `The ledger is pushed to the configured GitHub repository after every
change. A failed push leaves the local change in place and prints a
warning; "mirror push" catches the remote up afterwards.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPushCommand(app))
	cmd.AddCommand(newStatusCommand(app))
	cmd.AddCommand(newRestoreCommand(app))

	return cmd
}

func enabledCatalog(cmd *cobra.Command, app appcontext.Interface) (designlib.Catalog, error) {
	catalog, err := app.Catalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	if !catalog.MirrorEnabled() {
		return nil, errors.NewConfigError("mirror", "no remote mirror configured (set github_repo)", nil)
	}
	return catalog, nil
}

func newPushCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Push the local ledger to the remote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := enabledCatalog(cmd, app)
			if err != nil {
				return err
			}
			outcome, err := catalog.Push(cmd.Context())
			if err != nil {
				return err
			}
			table := output.Data{
				Headers: []string{"Action", "SHA", "Attempts"},
				Rows:    [][]string{{string(outcome.Action), outcome.SHA, fmt.Sprint(outcome.Attempts)}},
			}
			return cmdutil.Render(cmd, app, outcome, table)
		},
	}
}

func newStatusCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare the local ledger with the remote copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := enabledCatalog(cmd, app)
			if err != nil {
				return err
			}
			status, err := catalog.MirrorStatus(cmd.Context())
			if err != nil {
				return err
			}
			table := output.Data{
				Headers: []string{"Remote", "Path", "Exists", "SHA", "In Sync"},
				Rows: [][]string{{
					status.Remote, status.Path, fmt.Sprint(status.Exists), status.SHA, fmt.Sprint(status.InSync),
				}},
			}
			return cmdutil.Render(cmd, app, status, table)
		},
	}
}

func newRestoreCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the local ledger with the remote copy",
		Long: `Restore downloads the mirrored ledger and replaces the local one. It works
when the local ledger is corrupt and the catalog refuses to open.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.CatalogWithOptions(cmd.Context(), designlib.WithRecoveryMode())
			if err != nil {
				return err
			}
			defer func() { _ = catalog.Close() }()

			if !catalog.MirrorEnabled() {
				return errors.NewConfigError("mirror", "no remote mirror configured (set github_repo)", nil)
			}
			n, err := catalog.Restore(cmd.Context())
			if err != nil {
				return err
			}
			cmdutil.Alerts(cmd).Write(alerts.NewSuccess(fmt.Sprintf("restored %d record(s) into %s", n, catalog.Root())))
			return nil
		},
	}
}
