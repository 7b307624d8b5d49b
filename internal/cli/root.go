package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alimgiray/bizscope/internal/app"
	"github.com/alimgiray/bizscope/pkg/config"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand
type options struct {
	logLevel string
	driver   string
	dataDir  string
	dbPath   string

	application *app.App
}

// newRootCommand builds the bizscope command tree. The application opened by
// PersistentPreRunE is left in opts for the caller to close.
func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bizscope",
		Short: "bizscope - AI business analysis for project ideas",
		Long: `bizscope submits project ideas for AI business analysis and inspects the
results from the same store the HTTP server uses.

Configuration is read from the environment and an optional .env file; flags
override the storage settings.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg := config.FromEnv()

			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = opts.logLevel
			}
			if cmd.Flags().Changed("driver") {
				cfg.Storage.Driver = opts.driver
			}
			if cmd.Flags().Changed("data-dir") {
				cfg.Storage.DataDir = opts.dataDir
			}
			if cmd.Flags().Changed("db-path") {
				cfg.Storage.DBPath = opts.dbPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Logs go to stderr so command output stays parseable
			logger.Init(cfg.Log.Level)
			logger.SetOutput(os.Stderr)

			application, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			opts.application = application
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Storage driver (file, sqlite, redis)")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Directory for the file storage driver")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "Database path for the sqlite storage driver")

	rootCmd.AddCommand(
		newCreateCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newWatchCmd(opts),
		newRegenerateCmd(opts),
		newBoilerplateCmd(opts),
		newExportCmd(opts),
		newSweepCmd(opts),
	)
	return rootCmd
}

// Run executes the command line in args and releases everything it opened
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	opts := &options{}
	rootCmd := newRootCommand(opts)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.ExecuteContext(ctx)
	if opts.application != nil {
		if closeErr := opts.application.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return err
}

// Execute runs the root command against the process arguments
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
