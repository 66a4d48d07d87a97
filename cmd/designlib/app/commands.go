package app

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/cmd/designlib/cmd/audit"
	"github.com/agentstation/designlib/cmd/designlib/cmd/files"
	"github.com/agentstation/designlib/cmd/designlib/cmd/mirror"
	"github.com/agentstation/designlib/cmd/designlib/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// File commands
	rootCmd.AddCommand(files.NewUploadCommand(a))
	rootCmd.AddCommand(files.NewListCommand(a))
	rootCmd.AddCommand(files.NewRecentCommand(a))
	rootCmd.AddCommand(files.NewGetCommand(a))
	rootCmd.AddCommand(files.NewDeleteCommand(a))
	rootCmd.AddCommand(files.NewPurgeCommand(a))
	rootCmd.AddCommand(files.NewRecategorizeCommand(a))

	// Audit commands
	rootCmd.AddCommand(audit.NewStatsCommand(a))
	rootCmd.AddCommand(audit.NewActivityCommand(a))
	rootCmd.AddCommand(audit.NewVerifyCommand(a))

	// Management commands
	rootCmd.AddCommand(mirror.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("designlib %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  go:       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
