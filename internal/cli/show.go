package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/spf13/cobra"
)

func newShowCmd(opts *options) *cobra.Command {
	var section string

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Print a project as JSON",
		Long: `Print a project as indented JSON. With --section only that part of the
analysis is printed.

Examples:
  bizscope show 3f1c...
  bizscope show 3f1c... --section swotAnalysis`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := opts.application.Projects.GetProjectByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			var value any = project
			if section != "" {
				key, err := models.ParseSectionKey(section)
				if err != nil {
					return err
				}
				if !project.HasAnalysis() {
					return fmt.Errorf("%w: analysis not available for project %s", models.ErrInvalidState, project.ID)
				}
				if value, err = project.Analysis.Section(key); err != nil {
					return err
				}
			}

			data, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&section, "section", "s", "", "Only print this analysis section")
	return cmd
}
