package commands

import (
	"encoding/json"
	"errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbi/internal/project"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <project-path>",
		Short: "List tables of a project's semantic model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			structure, err := loadModel(cmdCtx, args[0])
			if err != nil {
				return err
			}

			if cmdCtx.Cfg.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(structure.SemanticModel.Tables)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Columns", "Measures", "Partitions", "Hierarchies", "Hidden"})
			for _, tbl := range structure.SemanticModel.Tables {
				t.AppendRow(table.Row{
					tbl.Name,
					len(tbl.Columns),
					len(tbl.Measures),
					len(tbl.Partitions),
					len(tbl.Hierarchies),
					yesNo(tbl.IsHidden),
				})
			}
			t.Render()

			return nil
		},
	}
}

// loadModel is shared by commands needing an assembled semantic model.
func loadModel(cmdCtx *CommandContext, path string) (*project.Structure, error) {
	structure, err := cmdCtx.Loader.Load(path)
	if err != nil {
		return nil, err
	}
	if structure.SemanticModel == nil {
		return nil, errors.New("no semantic model found in project")
	}
	return structure, nil
}
