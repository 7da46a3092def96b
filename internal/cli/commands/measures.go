package commands

import (
	"encoding/json"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbi/pkg/model"
)

// NewMeasuresCommand creates the measures command.
func NewMeasuresCommand() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "measures <project-path>",
		Short: "List measures of a project's semantic model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			structure, err := loadModel(cmdCtx, args[0])
			if err != nil {
				return err
			}

			filter := model.NormalizeName(tableName)

			type row struct {
				Table        string `json:"table_name"`
				Name         string `json:"name"`
				Expression   string `json:"expression"`
				FormatString string `json:"format_string,omitempty"`
				IsHidden     bool   `json:"is_hidden"`
			}
			rows := []row{}

			for _, tbl := range structure.SemanticModel.Tables {
				if tableName != "" && model.NormalizeName(tbl.Name) != filter {
					continue
				}
				for _, m := range tbl.Measures {
					rows = append(rows, row{
						Table:        tbl.Name,
						Name:         m.Name,
						Expression:   m.Expression,
						FormatString: m.FormatString,
						IsHidden:     m.IsHidden,
					})
				}
			}

			if cmdCtx.Cfg.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Table", "Measure", "Expression", "Format", "Hidden"})
			for _, r := range rows {
				t.AppendRow(table.Row{r.Table, r.Name, r.Expression, r.FormatString, yesNo(r.IsHidden)})
			}
			t.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "Filter by table name")

	return cmd
}
