package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCreateCmd(opts *options) *cobra.Command {
	var (
		name        string
		description string
		interval    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a project for analysis",
		Long: `Submit a project for analysis. Generation runs in this process, so the
command waits until the project is completed or failed.

Examples:
  bizscope create --name "Pet Sitter" --description "Marketplace connecting pet owners with sitters"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			application := opts.application
			out := cmd.OutOrStdout()

			if err := application.Workers.StartAll(); err != nil {
				return err
			}

			project, err := application.Projects.CreateProject(ctx, name, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Created project %s (%s)\n", project.ID, project.Status)

			final := project
			if project.IsInFlight() {
				final, err = waitForProject(ctx, application.Projects, project.ID, interval, out)
				if err != nil {
					return err
				}
			}
			if final.IsFailed() {
				return fmt.Errorf("generation failed: %s", final.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (at least 3 characters)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Project description (at least 10 characters)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval while waiting")
	return cmd
}
