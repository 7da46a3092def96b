package mcp

import (
	"context"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leapstack-labs/leapbi/pkg/model"
)

// ListTablesInput is the input schema for the list_tables tool.
type ListTablesInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
}

// GetTableDetailsInput is the input schema for the get_table_details tool.
type GetTableDetailsInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
	TableName   string `json:"table_name"   jsonschema:"table to describe"`
}

// GetModelDetailsInput is the input schema for the get_model_details tool.
type GetModelDetailsInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
}

func (s *Server) registerTableTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListTables,
		Description: "List all tables in the project",
	}, s.handleListTables)
	s.trackTool(ToolNameListTables)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameGetTableDetails,
		Description: "Get detailed information about a single table",
	}, s.handleGetTableDetails)
	s.trackTool(ToolNameGetTableDetails)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameGetModelDetails,
		Description: "Get comprehensive details of the entire semantic model",
	}, s.handleGetModelDetails)
	s.trackTool(ToolNameGetModelDetails)
}

func (s *Server) handleListTables(ctx context.Context, req *mcpsdk.CallToolRequest, input ListTablesInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	tables := []map[string]any{}
	for _, table := range sm.Tables {
		tables = append(tables, map[string]any{
			"name":            table.Name,
			"column_count":    len(table.Columns),
			"measure_count":   len(table.Measures),
			"partition_count": len(table.Partitions),
			"hierarchy_count": len(table.Hierarchies),
			"is_hidden":       table.IsHidden,
			"is_private":      table.IsPrivate,
			"lineage_tag":     table.LineageTag,
		})
	}

	return jsonResult(map[string]any{
		"count":  len(tables),
		"tables": tables,
	})
}

func (s *Server) handleGetTableDetails(ctx context.Context, req *mcpsdk.CallToolRequest, input GetTableDetailsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	columns := []map[string]any{}
	for _, c := range table.Columns {
		columns = append(columns, map[string]any{
			"name":          c.Name,
			"data_type":     string(c.DataType),
			"summarize_by":  string(c.SummarizeBy),
			"is_calculated": c.Calculated(),
		})
	}

	measures := []map[string]any{}
	for _, m := range table.Measures {
		measures = append(measures, map[string]any{
			"name":          m.Name,
			"expression":    truncateExpression(m.Expression),
			"format_string": m.FormatString,
		})
	}

	partitions := []map[string]any{}
	for _, p := range table.Partitions {
		sourceType := "DAX"
		if strings.HasPrefix(strings.TrimSpace(p.Source), "let") {
			sourceType = "M Query"
		}
		partitions = append(partitions, map[string]any{
			"name":        p.Name,
			"mode":        string(p.Mode),
			"source_type": sourceType,
		})
	}

	hierarchies := []map[string]any{}
	for _, h := range table.Hierarchies {
		levels := []map[string]any{}
		for _, l := range h.Levels {
			levels = append(levels, map[string]any{"name": l.Name, "column": l.Column})
		}
		hierarchies = append(hierarchies, map[string]any{"name": h.Name, "levels": levels})
	}

	from := []map[string]any{}
	to := []map[string]any{}
	want := model.NormalizeName(table.Name)
	for _, rel := range sm.Relationships {
		switch {
		case model.NormalizeName(rel.FromTable) == want:
			from = append(from, map[string]any{
				"to":          rel.ToTable + "[" + rel.ToColumn + "]",
				"cardinality": string(rel.Cardinality),
				"is_active":   rel.IsActive,
			})
		case model.NormalizeName(rel.ToTable) == want:
			to = append(to, map[string]any{
				"from":        rel.FromTable + "[" + rel.FromColumn + "]",
				"cardinality": string(rel.Cardinality),
				"is_active":   rel.IsActive,
			})
		}
	}

	return jsonResult(map[string]any{
		"name":        table.Name,
		"lineage_tag": table.LineageTag,
		"is_hidden":   table.IsHidden,
		"is_private":  table.IsPrivate,
		"columns":     columns,
		"measures":    measures,
		"partitions":  partitions,
		"hierarchies": hierarchies,
		"relationships": map[string]any{
			"from_this_table": from,
			"to_this_table":   to,
		},
	})
}

func (s *Server) handleGetModelDetails(ctx context.Context, req *mcpsdk.CallToolRequest, input GetModelDetailsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	totalColumns := 0
	totalMeasures := 0
	calculatedColumns := 0
	hiddenColumns := 0
	hiddenMeasures := 0
	hiddenTables := 0
	privateTables := 0
	dataTypeCounts := map[string]int{}

	tableDetails := []map[string]any{}
	for _, table := range sm.Tables {
		if table.IsHidden {
			hiddenTables++
		}
		if table.IsPrivate {
			privateTables++
		}

		columns := []map[string]any{}
		for _, column := range table.Columns {
			if column.Calculated() {
				calculatedColumns++
			}
			if column.IsHidden {
				hiddenColumns++
			}
			dataTypeCounts[string(column.DataType)]++

			columns = append(columns, map[string]any{
				"name":          column.Name,
				"data_type":     string(column.DataType),
				"is_calculated": column.Calculated(),
				"is_hidden":     column.IsHidden,
				"summarize_by":  string(column.SummarizeBy),
			})
		}

		measures := []map[string]any{}
		for _, measure := range table.Measures {
			if measure.IsHidden {
				hiddenMeasures++
			}
			measures = append(measures, map[string]any{
				"name":               measure.Name,
				"expression_preview": truncateExpression(measure.Expression),
				"is_hidden":          measure.IsHidden,
				"has_format":         measure.FormatString != "",
			})
		}

		tableDetails = append(tableDetails, map[string]any{
			"name":            table.Name,
			"is_hidden":       table.IsHidden,
			"is_private":      table.IsPrivate,
			"column_count":    len(table.Columns),
			"measure_count":   len(table.Measures),
			"hierarchy_count": len(table.Hierarchies),
			"partition_count": len(table.Partitions),
			"columns":         columns,
			"measures":        measures,
		})

		totalColumns += len(table.Columns)
		totalMeasures += len(table.Measures)
	}

	activeRels := 0
	byCardinality := map[string]int{}
	for _, rel := range sm.Relationships {
		if rel.IsActive {
			activeRels++
		}
		cardinality := string(rel.Cardinality)
		if cardinality == "" {
			cardinality = "Unknown"
		}
		byCardinality[cardinality]++
	}

	return jsonResult(map[string]any{
		"model_name": sm.Name,
		"culture":    sm.Culture,
		"summary": map[string]any{
			"tables": map[string]any{
				"total":   len(sm.Tables),
				"hidden":  hiddenTables,
				"private": privateTables,
			},
			"columns": map[string]any{
				"total":        totalColumns,
				"calculated":   calculatedColumns,
				"regular":      totalColumns - calculatedColumns,
				"hidden":       hiddenColumns,
				"by_data_type": dataTypeCounts,
			},
			"measures": map[string]any{
				"total":  totalMeasures,
				"hidden": hiddenMeasures,
			},
			"relationships": map[string]any{
				"total":          len(sm.Relationships),
				"active":         activeRels,
				"inactive":       len(sm.Relationships) - activeRels,
				"by_cardinality": byCardinality,
			},
		},
		"tables": tableDetails,
	})
}
