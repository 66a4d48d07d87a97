package files

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/cmd/output"
	"github.com/agentstation/designlib/pkg/constants"
)

// NewListCommand creates the list command.
func NewListCommand(app appcontext.Interface) *cobra.Command {
	var flags *cmdutil.ListFlags

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		GroupID: "files",
		Short:   "List catalog files",
		Example: `  designlib list
  designlib list --category "3D Plans"
  designlib list --search beam --newest --limit 10 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, opts, err := flags.Options()
			if err != nil {
				return err
			}
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			records, err := catalog.List(cmd.Context(), filter, opts...)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, records, output.RecordsTable(records))
		},
	}
	flags = cmdutil.AddListFlags(cmd)

	return cmd
}

// NewRecentCommand creates the recent command, a shortcut for
// list --newest --limit.
func NewRecentCommand(app appcontext.Interface) *cobra.Command {
	flags := &cmdutil.ListFlags{Newest: true}

	cmd := &cobra.Command{
		Use:     "recent",
		GroupID: "files",
		Short:   "Show the most recent uploads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, opts, err := flags.Options()
			if err != nil {
				return err
			}
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			records, err := catalog.List(cmd.Context(), filter, opts...)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, records, output.RecordsTable(records))
		},
	}
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", constants.RecentUploads, "Number of uploads to show")

	return cmd
}
