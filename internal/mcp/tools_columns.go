package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leapstack-labs/leapbi/internal/dax"
	"github.com/leapstack-labs/leapbi/internal/project"
	"github.com/leapstack-labs/leapbi/pkg/edit"
	"github.com/leapstack-labs/leapbi/pkg/format"
	"github.com/leapstack-labs/leapbi/pkg/model"
)

// ListColumnsInput is the input schema for the list_columns tool.
type ListColumnsInput struct {
	ProjectPath string `json:"project_path"         jsonschema:"path to PBIP project file or its directory"`
	TableName   string `json:"table_name,omitempty" jsonschema:"table name (omit to list columns of every table)"`
}

// AddColumnInput is the input schema for the add_column tool.
type AddColumnInput struct {
	ProjectPath  string `json:"project_path"            jsonschema:"path to PBIP project file or its directory"`
	TableName    string `json:"table_name"              jsonschema:"table to add the column to"`
	ColumnName   string `json:"column_name"             jsonschema:"name of the new column"`
	DataType     string `json:"data_type,omitempty"     jsonschema:"data type (string int64 double boolean dateTime), default string"`
	Expression   string `json:"expression,omitempty"    jsonschema:"DAX expression for a calculated column (optional)"`
	FormatString string `json:"format_string,omitempty" jsonschema:"format string (optional)"`
	SummarizeBy  string `json:"summarize_by,omitempty"  jsonschema:"summarization (none sum count min max average)"`
	IsHidden     bool   `json:"is_hidden,omitempty"     jsonschema:"hide the column"`
}

// UpdateColumnInput is the input schema for the update_column tool.
// Pointer fields distinguish "not provided" from an explicit zero value.
type UpdateColumnInput struct {
	ProjectPath  string  `json:"project_path"            jsonschema:"path to PBIP project file or its directory"`
	TableName    string  `json:"table_name"              jsonschema:"table containing the column"`
	ColumnName   string  `json:"column_name"             jsonschema:"name of the column to update"`
	DataType     *string `json:"data_type,omitempty"     jsonschema:"new data type (optional)"`
	Expression   *string `json:"expression,omitempty"    jsonschema:"new DAX expression, calculated columns only (optional)"`
	FormatString *string `json:"format_string,omitempty" jsonschema:"new format string (optional)"`
	SummarizeBy  *string `json:"summarize_by,omitempty"  jsonschema:"new summarization (optional)"`
	IsHidden     *bool   `json:"is_hidden,omitempty"     jsonschema:"hide or show the column (optional)"`
}

// DeleteColumnInput is the input schema for the delete_column tool.
type DeleteColumnInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
	TableName   string `json:"table_name"   jsonschema:"table containing the column"`
	ColumnName  string `json:"column_name"  jsonschema:"name of the column to delete"`
}

type columnEntry struct {
	TableName    string `json:"table_name,omitempty"`
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	SummarizeBy  string `json:"summarize_by"`
	FormatString string `json:"format_string,omitempty"`
	IsHidden     bool   `json:"is_hidden"`
	IsCalculated bool   `json:"is_calculated"`
	Expression   string `json:"expression,omitempty"`
	LineageTag   string `json:"lineage_tag"`
	Description  string `json:"description,omitempty"`
}

type tableColumnSummary struct {
	TableName         string `json:"table_name"`
	ColumnCount       int    `json:"column_count"`
	CalculatedColumns int    `json:"calculated_columns"`
	HiddenColumns     int    `json:"hidden_columns"`
}

func (s *Server) registerColumnTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListColumns,
		Description: "List all columns in a table, or in every table when table_name is omitted",
	}, s.handleListColumns)
	s.trackTool(ToolNameListColumns)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameAddColumn,
		Description: "Add a new column to a table",
	}, s.handleAddColumn)
	s.trackTool(ToolNameAddColumn)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameUpdateColumn,
		Description: "Update an existing column",
	}, s.handleUpdateColumn)
	s.trackTool(ToolNameUpdateColumn)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameDeleteColumn,
		Description: "Delete a column from a table",
	}, s.handleDeleteColumn)
	s.trackTool(ToolNameDeleteColumn)
}

func columnToEntry(tableName string, column model.Column) columnEntry {
	return columnEntry{
		TableName:    tableName,
		Name:         column.Name,
		DataType:     string(column.DataType),
		SummarizeBy:  string(column.SummarizeBy),
		FormatString: column.FormatString,
		IsHidden:     column.IsHidden,
		IsCalculated: column.Calculated(),
		Expression:   column.Expression,
		LineageTag:   column.LineageTag,
		Description:  column.Description,
	}
}

func (s *Server) handleListColumns(ctx context.Context, req *mcpsdk.CallToolRequest, input ListColumnsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	if input.TableName != "" {
		table := sm.TableByName(input.TableName)
		if table == nil {
			return errorResultf("table '%s' not found", input.TableName)
		}

		columns := []columnEntry{}
		for _, column := range table.Columns {
			columns = append(columns, columnToEntry("", column))
		}

		return jsonResult(map[string]any{
			"table_name": input.TableName,
			"count":      len(columns),
			"columns":    columns,
		})
	}

	allColumns := []columnEntry{}
	tableSummary := []tableColumnSummary{}
	totalColumns := 0

	for _, table := range sm.Tables {
		summary := tableColumnSummary{TableName: table.Name, ColumnCount: len(table.Columns)}
		for _, column := range table.Columns {
			allColumns = append(allColumns, columnToEntry(table.Name, column))
			if column.Calculated() {
				summary.CalculatedColumns++
			}
			if column.IsHidden {
				summary.HiddenColumns++
			}
		}
		tableSummary = append(tableSummary, summary)
		totalColumns += len(table.Columns)
	}

	return jsonResult(map[string]any{
		"scope":         "all_tables",
		"total_tables":  len(sm.Tables),
		"total_columns": totalColumns,
		"table_summary": tableSummary,
		"columns":       allColumns,
	})
}

func (s *Server) handleAddColumn(ctx context.Context, req *mcpsdk.CallToolRequest, input AddColumnInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	if table.ColumnByName(input.ColumnName) != nil {
		return errorResultf("column '%s' already exists in table '%s'", input.ColumnName, input.TableName)
	}

	if input.Expression != "" {
		if err := dax.Validate(input.Expression); err != nil {
			return errorResultf("invalid DAX expression: %w", err)
		}
	}

	dataType := input.DataType
	if dataType == "" {
		dataType = string(model.DataTypeString)
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	def := format.Column(format.ColumnSpec{
		Name:         input.ColumnName,
		DataType:     dataType,
		Expression:   input.Expression,
		FormatString: input.FormatString,
		SummarizeBy:  input.SummarizeBy,
		IsHidden:     input.IsHidden,
	})
	updated := edit.Add(content, "column", def, 1)

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":     true,
		"table_name":  input.TableName,
		"column_name": input.ColumnName,
		"data_type":   dataType,
		"action":      "added",
	})
}

func (s *Server) handleUpdateColumn(ctx context.Context, req *mcpsdk.CallToolRequest, input UpdateColumnInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	column := table.ColumnByName(input.ColumnName)
	if column == nil {
		return errorResultf("column '%s' not found in table '%s'", input.ColumnName, input.TableName)
	}

	// Column classification is one-way: a regular column never gains an
	// expression and a calculated column never loses one.
	if input.Expression != nil {
		if !column.Calculated() {
			return errorResultf("cannot add expression to regular column '%s'; create a new calculated column instead", input.ColumnName)
		}
		if *input.Expression == "" {
			return errorResultf("cannot remove expression from calculated column '%s'; delete the column and create a regular column instead", input.ColumnName)
		}
		if err := dax.Validate(*input.Expression); err != nil {
			return errorResultf("invalid DAX expression: %w", err)
		}
	}

	updates := map[string]any{}
	updatedFields := []string{}
	if input.DataType != nil {
		updates["data_type"] = *input.DataType
		updatedFields = append(updatedFields, "data_type")
	}
	if input.FormatString != nil {
		updates["format_string"] = *input.FormatString
		updatedFields = append(updatedFields, "format_string")
	}
	if input.SummarizeBy != nil {
		updates["summarize_by"] = *input.SummarizeBy
		updatedFields = append(updatedFields, "summarize_by")
	}
	if input.IsHidden != nil {
		updates["is_hidden"] = *input.IsHidden
		updatedFields = append(updatedFields, "is_hidden")
	}
	if input.Expression != nil {
		updates["expression"] = *input.Expression
		updatedFields = append(updatedFields, "expression")
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	updated, err := edit.Update(content, "column", column.Name, updates)
	if err != nil {
		return errorResult(err)
	}

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":        true,
		"table_name":     input.TableName,
		"column_name":    column.Name,
		"updated_fields": updatedFields,
	})
}

func (s *Server) handleDeleteColumn(ctx context.Context, req *mcpsdk.CallToolRequest, input DeleteColumnInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	column := table.ColumnByName(input.ColumnName)
	if column == nil {
		return errorResultf("column '%s' not found in table '%s'", input.ColumnName, input.TableName)
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	updated, err := edit.Delete(content, "column", column.Name)
	if err != nil {
		return errorResult(err)
	}

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":     true,
		"table_name":  input.TableName,
		"column_name": column.Name,
		"action":      "deleted",
	})
}
