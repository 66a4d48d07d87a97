// Package files provides the commands that add, list, fetch and remove
// catalog files.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/internal/appcontext"
	"github.com/agentstation/designlib/internal/cmd/alerts"
	"github.com/agentstation/designlib/internal/cmd/cmdutil"
	"github.com/agentstation/designlib/internal/cmd/output"
	"github.com/agentstation/designlib/pkg/category"
	"github.com/agentstation/designlib/pkg/errors"
)

// NewUploadCommand creates the upload command.
func NewUploadCommand(app appcontext.Interface) *cobra.Command {
	var catFlag, name string

	cmd := &cobra.Command{
		Use:     "upload <path>...",
		GroupID: "files",
		Short:   "Upload files into a category",
		Long: `Upload stores each file under the given category and records it in the
ledger. Re-uploading a name already recorded in that category replaces the
bytes and keeps the original record.`,
		Example: `  designlib upload plan1.pdf --category "2D Plans"
  designlib upload *.obj --category "3D Plans"
  designlib upload ./scan.png --category other --name site-sketch.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return errors.NewValidationError("name", name, "--name needs exactly one path")
			}
			cat, err := category.Parse(catFlag)
			if err != nil {
				return err
			}

			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}

			notes := cmdutil.Alerts(cmd)
			results := make([]*designlib.UploadResult, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return errors.WrapIO("read", path, err)
				}
				fileName := name
				if fileName == "" {
					fileName = filepath.Base(path)
				}

				res, err := catalog.Upload(cmd.Context(), fileName, cat, data)
				if err != nil {
					return err
				}
				notes.Warnings(res.Warnings)
				results = append(results, res)
			}

			if err := cmdutil.Render(cmd, app, results, uploadTable(results)); err != nil {
				return err
			}
			notes.Write(alerts.NewSuccess(fmt.Sprintf("uploaded %d file(s)", len(results))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&catFlag, "category", "c", "", "Category: 2D Plans, 3D Plans or Other")
	cmd.Flags().StringVar(&name, "name", "", "Catalog name (default: the file's base name)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func uploadTable(results []*designlib.UploadResult) output.Data {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "updated"
		if r.Created {
			status = "created"
		}
		rows = append(rows, []string{r.Record.Name, string(r.Record.Category), status, strconv.Itoa(len(r.Warnings))})
	}
	return output.Data{Headers: []string{"Name", "Category", "Status", "Warnings"}, Rows: rows}
}
