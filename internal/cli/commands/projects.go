package commands

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command.
func NewProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects [directory]",
		Short: "List PBIP projects in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			dir := cmdCtx.Cfg.ProjectsDir
			if len(args) > 0 {
				dir = args[0]
			}

			projects, err := cmdCtx.Loader.List(dir)
			if err != nil {
				return err
			}

			if cmdCtx.Cfg.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(projects)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Name", "Type", "Version", "Model", "Report", "Path"})
			for _, p := range projects {
				t.AppendRow(table.Row{p.Name, p.Type, p.Version, yesNo(p.HasSemanticModel), yesNo(p.HasReport), p.Path})
			}
			t.Render()

			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
