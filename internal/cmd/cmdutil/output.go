package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/output"
)

// Render writes data to the command's stdout in the app's output format.
func Render(cmd *cobra.Command, app appcontext.Interface, data any, table output.Data) error {
	return output.Render(cmd.OutOrStdout(), app.OutputFormat(), data, table)
}

// Alerts returns a writer for status lines on the command's stderr.
func Alerts(cmd *cobra.Command) *alerts.Writer {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return alerts.NewWriter(cmd.ErrOrStderr(), noColor)
}
