package files

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

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		GroupID: "files",
		Short:   "Delete files from every category",
		Long: `Delete removes every record with the given name, whatever its category,
together with the stored bytes. A name that is not in the catalog is an
error; names before it stay deleted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			notes := cmdutil.Alerts(cmd)
			var removed []designlib.FileRecord
			for _, name := range args {
				res, err := catalog.Delete(cmd.Context(), name)
				if err != nil {
					return err
				}
				notes.Warnings(res.Warnings)
				if len(res.Removed) == 0 {
					return errors.NewNotFoundError("file", name)
				}
				removed = append(removed, res.Removed...)
			}

			if err := cmdutil.Render(cmd, app, removed, output.RecordsTable(removed)); err != nil {
				return err
			}
			notes.Write(alerts.NewSuccess(fmt.Sprintf("deleted %d record(s)", len(removed))))
			return nil
		},
	}
}

// NewPurgeCommand creates the purge command, which empties the catalog.
func NewPurgeCommand(app appcontext.Interface) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "purge",
		GroupID: "files",
		Short:   "Delete every file in the catalog",
		Long: `Purge empties the ledger and removes all stored bytes. Bytes that cannot
be removed are reported as warnings; the ledger is emptied regardless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.NewValidationError("yes", false, "purge deletes every file; pass --yes to confirm")
			}
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			res, err := catalog.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}

			notes := cmdutil.Alerts(cmd)
			notes.Warnings(res.Warnings)
			if err := cmdutil.Render(cmd, app, res.Removed, output.RecordsTable(res.Removed)); err != nil {
				return err
			}
			notes.Write(alerts.NewSuccess(fmt.Sprintf("purged %d record(s)", len(res.Removed))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting every file")

	return cmd
}
