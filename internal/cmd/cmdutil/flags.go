// Package cmdutil provides flags and output helpers shared by designlib commands.
package cmdutil

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/designlib"
	"github.com/agentstation/designlib/pkg/category"
)

// ListFlags holds the filters accepted by listing commands.
type ListFlags struct {
	Category string
	Search   string
	Newest   bool
	Limit    int
}

// AddListFlags adds listing flags to a command.
func AddListFlags(cmd *cobra.Command) *ListFlags {
	flags := &ListFlags{}

	cmd.Flags().StringVarP(&flags.Category, "category", "c", string(category.All),
		"Filter by category (\"All\" for every category)")
	cmd.Flags().StringVarP(&flags.Search, "search", "s", "",
		"Case-insensitive substring of the file name")
	cmd.Flags().BoolVar(&flags.Newest, "newest", false,
		"Order by upload time, latest first")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0,
		"Limit number of results (0 for all)")

	return flags
}

// Options parses the category filter and builds the list options.
func (f *ListFlags) Options() (category.Category, []designlib.ListOption, error) {
	filter, err := category.ParseFilter(f.Category)
	if err != nil {
		return "", nil, err
	}
	var opts []designlib.ListOption
	if f.Newest {
		opts = append(opts, designlib.NewestFirst())
	}
	if f.Search != "" {
		opts = append(opts, designlib.Search(f.Search))
	}
	if f.Limit > 0 {
		opts = append(opts, designlib.Limit(f.Limit))
	}
	return filter, opts, nil
}
