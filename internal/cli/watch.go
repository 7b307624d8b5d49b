package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/alimgiray/bizscope/internal/services"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *options) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll until no project is pending or generating",
		Long: `Poll the store at a fixed interval, printing every status change, and
exit once no project is pending or generating.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchProjects(cmd.Context(), opts.application.Projects, interval, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVarP(&interval, "interval", "i", 2*time.Second, "Polling interval")
	return cmd
}

// watchProjects lists projects every interval until none is in flight
func watchProjects(ctx context.Context, svc *services.ProjectService, interval time.Duration, out io.Writer) error {
	seen := make(map[string]models.ProjectStatus)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		projects, err := svc.ListProjects(ctx)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if seen[p.ID] != p.Status {
				fmt.Fprintf(out, "%s  %-10s  %s\n", p.ID, p.Status, projectName(p))
				seen[p.ID] = p.Status
			}
		}

		pending := services.CountInFlight(projects)
		if pending == 0 {
			fmt.Fprintln(out, "Nothing pending")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// waitForProject polls one project until it reaches a terminal status
func waitForProject(ctx context.Context, svc *services.ProjectService, id string, interval time.Duration, out io.Writer) (*models.Project, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last models.ProjectStatus
	for {
		project, err := svc.GetProjectByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if project.Status != last {
			fmt.Fprintf(out, "Status: %s\n", project.Status)
			last = project.Status
		}
		if !project.IsInFlight() {
			if project.IsFailed() {
				fmt.Fprintf(out, "Error: %s\n", project.Error)
			}
			return project, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func projectName(p *models.Project) string {
	if p.HasAnalysis() {
		return p.Analysis.Name
	}
	return ""
}
