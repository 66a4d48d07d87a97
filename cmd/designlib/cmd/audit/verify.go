package audit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/cmd/output"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(app appcontext.Interface) *cobra.Command {
	var reindex bool

	cmd := &cobra.Command{
		Use:     "verify",
		GroupID: "audit",
		Short:   "Compare the ledger with the file store",
		Long: `Verify lists ledger records whose bytes are missing from the file store
and stored files that no ledger record points at (orphans).

With --reindex, orphans are adopted into the ledger: their category is
recovered from the stored key where the codec allows it, otherwise they
are filed under Other.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			notes := cmdutil.Alerts(cmd)

			if reindex {
				adopted, err := catalog.Reindex(cmd.Context())
				if err != nil {
					return err
				}
				if err := cmdutil.Render(cmd, app, adopted, output.RecordsTable(adopted)); err != nil {
					return err
				}
				notes.Write(alerts.NewSuccess(fmt.Sprintf("adopted %d orphan(s)", len(adopted))))
				return nil
			}

			report, err := catalog.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if err := cmdutil.Render(cmd, app, report, output.ReportTable(report)); err != nil {
				return err
			}
			if report.Consistent() {
				notes.Write(alerts.NewSuccess("ledger and file store agree"))
			} else {
				notes.Write(alerts.NewWarning(fmt.Sprintf("%d missing, %d orphaned; run verify --reindex to adopt orphans",
					len(report.MissingBytes), len(report.Orphans))))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reindex, "reindex", false, "Adopt orphaned stored files into the ledger")

	return cmd
}
