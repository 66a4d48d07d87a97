package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/designlib/internal/cmd/output"
)

// Execute runs the designlib CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "designlib",
		Short:   "Structural design file catalog",
		Version: a.version,
		Long: `designlib keeps a catalog of structural design files (plans, 3D
models, sketches) grouped by category.

Uploaded bytes live in a file store (local disk, S3 or NATS JetStream),
every (name, category) pair is recorded in a CSV ledger, and each change
is appended to an activity log. When a GitHub repository is configured the
ledger is mirrored to it after every change.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "files",
		Title: "File Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "audit",
		Title: "Audit Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.designlib.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml (default: table on a terminal, json otherwise)")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("root", "", "catalog directory (default "+a.config.Root+")")

	rootCmd.SetVersionTemplate("designlib {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It reloads the config
// when --config names a file, then applies the global flags.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	format := mustGetString(cmd, "format")
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(
		mustGetBool(cmd, "verbose"),
		mustGetBool(cmd, "quiet"),
		mustGetBool(cmd, "no-color"),
		format,
		mustGetString(cmd, "log-level"),
		mustGetString(cmd, "root"),
	)

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError prints err and exits with status 1. It does nothing for a nil
// error.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
