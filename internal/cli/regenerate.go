package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/spf13/cobra"
)

func newRegenerateCmd(opts *options) *cobra.Command {
	var prompt string

	sections := make([]string, len(models.SectionKeys))
	for i, key := range models.SectionKeys {
		sections[i] = string(key)
	}

	cmd := &cobra.Command{
		Use:   "regenerate <project-id> <section>",
		Short: "Regenerate one section of an analysis",
		Long: fmt.Sprintf(`Ask the model for a new version of one analysis section and store it in
place. Other sections and the project status are left untouched.

Sections: %s`, strings.Join(sections, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: sections,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, section := args[0], args[1]
			if err := opts.application.Projects.RegenerateSection(cmd.Context(), id, section, prompt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Section %s regenerated for project %s\n", section, id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Instructions for the new version of the section")
	return cmd
}

func newBoilerplateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "boilerplate <project-id>",
		Short: "Print the boilerplate placeholder for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := opts.application.Projects.GenerateBoilerplate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Write a project's analysis to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := opts.application.Projects.GetProjectByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = opts.application.Export.FileName(project)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := opts.application.Export.WriteXLSX(project, f); err != nil {
				f.Close()
				os.Remove(output)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to <project-name>.xlsx)")
	return cmd
}

func newSweepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Fail projects stuck in pending or generating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			swept, err := opts.application.Sweeper.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d stale project(s) as failed\n", swept)
			return nil
		},
	}
}
