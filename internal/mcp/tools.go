package mcp

import (
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/leapstack-labs/leapbi/internal/project"
	"github.com/leapstack-labs/leapbi/pkg/model"
)

// Tool name constants.
const (
	ToolNameListMeasures  = "list_measures"
	ToolNameAddMeasure    = "add_measure"
	ToolNameUpdateMeasure = "update_measure"
	ToolNameDeleteMeasure = "delete_measure"

	ToolNameListColumns  = "list_columns"
	ToolNameAddColumn    = "add_column"
	ToolNameUpdateColumn = "update_column"
	ToolNameDeleteColumn = "delete_column"

	ToolNameListTables      = "list_tables"
	ToolNameGetTableDetails = "get_table_details"
	ToolNameGetModelDetails = "get_model_details"

	ToolNameListRelationships = "list_relationships"

	ToolNameListProjects = "list_projects"
	ToolNameLoadProject  = "load_project"
)

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// errorResultf builds an isError result from a format string.
func errorResultf(format string, args ...any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return errorResult(fmt.Errorf(format, args...))
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// loadModel loads a project and requires a semantic model in it.
func (s *Server) loadModel(projectPath string) (*model.SemanticModel, error) {
	structure, err := s.loader.Load(projectPath)
	if err != nil {
		return nil, err
	}
	if structure.SemanticModel == nil {
		return nil, project.ErrNoSemanticModel
	}
	return structure.SemanticModel, nil
}

// truncateExpression shortens long DAX for listing previews.
func truncateExpression(expression string) string {
	if len(expression) > 100 {
		return expression[:100] + "..."
	}
	return expression
}
