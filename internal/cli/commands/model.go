package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewModelCommand creates the model command.
func NewModelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "model <project-path>",
		Short: "Show a summary of a project's semantic model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)

			structure, err := loadModel(cmdCtx, args[0])
			if err != nil {
				return err
			}
			sm := structure.SemanticModel

			totalColumns := 0
			totalMeasures := 0
			for _, tbl := range sm.Tables {
				totalColumns += len(tbl.Columns)
				totalMeasures += len(tbl.Measures)
			}

			if cmdCtx.Cfg.OutputFormat == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"name":               sm.Name,
					"culture":            sm.Culture,
					"table_count":        len(sm.Tables),
					"relationship_count": len(sm.Relationships),
					"total_columns":      totalColumns,
					"total_measures":     totalMeasures,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Model:         %s\n", sm.Name)
			fmt.Fprintf(out, "Culture:       %s\n", sm.Culture)
			fmt.Fprintf(out, "Tables:        %d\n", len(sm.Tables))
			fmt.Fprintf(out, "Columns:       %d\n", totalColumns)
			fmt.Fprintf(out, "Measures:      %d\n", totalMeasures)
			fmt.Fprintf(out, "Relationships: %d\n", len(sm.Relationships))

			return nil
		},
	}
}
