// Package audit provides the commands that report on catalog contents,
// history and consistency.
package audit

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/cmd/output"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "stats",
		GroupID: "audit",
		Short:   "Show catalog totals by category and extension",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			st, err := catalog.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, st, output.StatsTable(st))
		},
	}
}

// NewActivityCommand creates the activity command.
func NewActivityCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "activity",
		Aliases: []string{"log"},
		GroupID: "audit",
		Short:   "Show the activity log, oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := catalog.Activity(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return cmdutil.Render(cmd, app, entries, output.ActivityTable(entries))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Show only the last n entries (0 for all)")

	return cmd
}
