package files

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/pkg/constants"
	"github.com/agentstation/designlib/pkg/errors"
)

// NewGetCommand creates the get command.
func NewGetCommand(app appcontext.Interface) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:     "get <name>",
		Aliases: []string{"download"},
		GroupID: "files",
		Short:   "Download a file's bytes",
		Example: `  designlib get plan1.pdf
  designlib get plan1.pdf --out /tmp/plan.pdf
  designlib get plan1.pdf --out - > plan.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			data, err := catalog.Get(cmd.Context(), name)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			dest := out
			if dest == "" {
				dest = name
			}
			if err := os.WriteFile(dest, data, constants.FilePermissions); err != nil {
				return errors.WrapIO("write", dest, err)
			}
			cmdutil.Alerts(cmd).Write(alerts.NewSuccess(fmt.Sprintf("wrote %d bytes to %s", len(data), dest)))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Destination path, \"-\" for stdout (default: ./<name>)")

	return cmd
}
