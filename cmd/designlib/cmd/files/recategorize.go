package files

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/pkg/category"
)

// NewRecategorizeCommand creates the recategorize command.
func NewRecategorizeCommand(app appcontext.Interface) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "recategorize <name>",
		Aliases: []string{"mv"},
		GroupID: "files",
		Short:   "Move a file to another category",
		Example: `  designlib recategorize beam.dwg --from Other --to "2D Plans"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromCat, err := category.Parse(from)
			if err != nil {
				return err
			}
			toCat, err := category.Parse(to)
			if err != nil {
				return err
			}
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			res, err := catalog.Recategorize(cmd.Context(), args[0], fromCat, toCat)
			if err != nil {
				return err
			}

			notes := cmdutil.Alerts(cmd)
			notes.Warnings(res.Warnings)
			results := []*designlib.UploadResult{res}
			if err := cmdutil.Render(cmd, app, results, uploadTable(results)); err != nil {
				return err
			}
			notes.Write(alerts.NewSuccess(args[0] + " is now in " + string(toCat)))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Current category")
	cmd.Flags().StringVar(&to, "to", "", "New category")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
