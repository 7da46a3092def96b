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

// ListMeasuresInput is the input schema for the list_measures tool.
type ListMeasuresInput struct {
	ProjectPath string `json:"project_path"         jsonschema:"path to PBIP project file or its directory"`
	TableName   string `json:"table_name,omitempty" jsonschema:"filter by table name (optional)"`
}

// AddMeasureInput is the input schema for the add_measure tool.
type AddMeasureInput struct {
	ProjectPath  string `json:"project_path"            jsonschema:"path to PBIP project file or its directory"`
	TableName    string `json:"table_name"              jsonschema:"table to add the measure to"`
	MeasureName  string `json:"measure_name"            jsonschema:"name of the new measure"`
	Expression   string `json:"expression"              jsonschema:"DAX expression"`
	Description  string `json:"description,omitempty"   jsonschema:"measure description (optional)"`
	FormatString string `json:"format_string,omitempty" jsonschema:"format string (optional)"`
}

// UpdateMeasureInput is the input schema for the update_measure tool.
// Pointer fields distinguish "not provided" from an explicit empty value.
type UpdateMeasureInput struct {
	ProjectPath  string  `json:"project_path"            jsonschema:"path to PBIP project file or its directory"`
	TableName    string  `json:"table_name"              jsonschema:"table containing the measure"`
	MeasureName  string  `json:"measure_name"            jsonschema:"name of the measure to update"`
	Expression   *string `json:"expression,omitempty"    jsonschema:"new DAX expression (optional)"`
	Description  *string `json:"description,omitempty"   jsonschema:"new description (optional)"`
	FormatString *string `json:"format_string,omitempty" jsonschema:"new format string (optional)"`
}

// DeleteMeasureInput is the input schema for the delete_measure tool.
type DeleteMeasureInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
	TableName   string `json:"table_name"   jsonschema:"table containing the measure"`
	MeasureName string `json:"measure_name" jsonschema:"name of the measure to delete"`
}

type measureEntry struct {
	TableName    string `json:"table_name"`
	Name         string `json:"name"`
	Expression   string `json:"expression"`
	FormatString string `json:"format_string,omitempty"`
	LineageTag   string `json:"lineage_tag"`
	IsHidden     bool   `json:"is_hidden"`
	Description  string `json:"description,omitempty"`
}

func (s *Server) registerMeasureTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListMeasures,
		Description: "List all measures in the project",
	}, s.handleListMeasures)
	s.trackTool(ToolNameListMeasures)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameAddMeasure,
		Description: "Add a new measure to a table",
	}, s.handleAddMeasure)
	s.trackTool(ToolNameAddMeasure)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameUpdateMeasure,
		Description: "Update an existing measure",
	}, s.handleUpdateMeasure)
	s.trackTool(ToolNameUpdateMeasure)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameDeleteMeasure,
		Description: "Delete a measure from a table",
	}, s.handleDeleteMeasure)
	s.trackTool(ToolNameDeleteMeasure)
}

func (s *Server) handleListMeasures(ctx context.Context, req *mcpsdk.CallToolRequest, input ListMeasuresInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	filter := model.NormalizeName(input.TableName)
	measures := []measureEntry{}

	for _, table := range sm.Tables {
		if input.TableName != "" && model.NormalizeName(table.Name) != filter {
			continue
		}
		for _, measure := range table.Measures {
			measures = append(measures, measureEntry{
				TableName:    table.Name,
				Name:         measure.Name,
				Expression:   measure.Expression,
				FormatString: measure.FormatString,
				LineageTag:   measure.LineageTag,
				IsHidden:     measure.IsHidden,
				Description:  measure.Description,
			})
		}
	}

	return jsonResult(map[string]any{
		"count":    len(measures),
		"measures": measures,
	})
}

func (s *Server) handleAddMeasure(ctx context.Context, req *mcpsdk.CallToolRequest, input AddMeasureInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	// Measure names are unique across the whole model.
	want := model.NormalizeName(input.MeasureName)
	for _, t := range sm.Tables {
		for _, m := range t.Measures {
			if model.NormalizeName(m.Name) == want {
				return errorResultf("measure '%s' already exists in table '%s'", input.MeasureName, t.Name)
			}
		}
	}

	if err := dax.Validate(input.Expression); err != nil {
		return errorResultf("invalid DAX expression: %w", err)
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	def := format.Measure(format.MeasureSpec{
		Name:         input.MeasureName,
		Expression:   input.Expression,
		Description:  input.Description,
		FormatString: input.FormatString,
	})
	updated := edit.Add(content, "measure", def, 1)

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":      true,
		"table_name":   input.TableName,
		"measure_name": input.MeasureName,
		"action":       "added",
	})
}

func (s *Server) handleUpdateMeasure(ctx context.Context, req *mcpsdk.CallToolRequest, input UpdateMeasureInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	measure := table.MeasureByName(input.MeasureName)
	if measure == nil {
		return errorResultf("measure '%s' not found in table '%s'", input.MeasureName, input.TableName)
	}

	updates := map[string]any{}
	updatedFields := []string{}
	if input.Expression != nil {
		if err := dax.Validate(*input.Expression); err != nil {
			return errorResultf("invalid DAX expression: %w", err)
		}
		updates["expression"] = *input.Expression
		updatedFields = append(updatedFields, "expression")
	}
	if input.FormatString != nil {
		updates["format_string"] = *input.FormatString
		updatedFields = append(updatedFields, "format_string")
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	// Edits target the name as spelled in the file, not the request.
	updated, err := edit.Update(content, "measure", measure.Name, updates)
	if err != nil {
		return errorResult(err)
	}

	if input.Description != nil {
		updated, err = edit.SetDescription(updated, "measure", measure.Name, *input.Description)
		if err != nil {
			return errorResult(err)
		}
		updatedFields = append(updatedFields, "description")
	}

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":        true,
		"table_name":     input.TableName,
		"measure_name":   measure.Name,
		"updated_fields": updatedFields,
	})
}

func (s *Server) handleDeleteMeasure(ctx context.Context, req *mcpsdk.CallToolRequest, input DeleteMeasureInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	table := sm.TableByName(input.TableName)
	if table == nil {
		return errorResultf("table '%s' not found", input.TableName)
	}

	measure := table.MeasureByName(input.MeasureName)
	if measure == nil {
		return errorResultf("measure '%s' not found in table '%s'", input.MeasureName, input.TableName)
	}

	content, err := project.ReadTable(input.ProjectPath, input.TableName)
	if err != nil {
		return errorResult(err)
	}

	updated, err := edit.Delete(content, "measure", measure.Name)
	if err != nil {
		return errorResult(err)
	}

	if err := project.WriteTable(input.ProjectPath, input.TableName, updated); err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"success":      true,
		"table_name":   input.TableName,
		"measure_name": measure.Name,
		"action":       "deleted",
	})
}
