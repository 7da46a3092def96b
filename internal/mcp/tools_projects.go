package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListProjectsInput is the input schema for the list_projects tool.
type ListProjectsInput struct {
	Directory string `json:"directory" jsonschema:"directory to scan for PBIP projects and standalone .SemanticModel directories"`
}

// LoadProjectInput is the input schema for the load_project tool.
type LoadProjectInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
}

func (s *Server) registerProjectTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListProjects,
		Description: "List all PBIP projects and standalone semantic models in a directory",
	}, s.handleListProjects)
	s.trackTool(ToolNameListProjects)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameLoadProject,
		Description: "Load complete project structure and metadata from a PBIP project",
	}, s.handleLoadProject)
	s.trackTool(ToolNameLoadProject)
}

func (s *Server) handleListProjects(ctx context.Context, req *mcpsdk.CallToolRequest, input ListProjectsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	projects, err := s.loader.List(input.Directory)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(map[string]any{
		"count":    len(projects),
		"projects": projects,
	})
}

func (s *Server) handleLoadProject(ctx context.Context, req *mcpsdk.CallToolRequest, input LoadProjectInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	structure, err := s.loader.Load(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	result := map[string]any{
		"project_info": map[string]any{
			"version":            structure.Info.Version,
			"artifacts":          len(structure.Info.Artifacts),
			"has_semantic_model": structure.SemanticModel != nil,
		},
		"semantic_model": nil,
	}

	if sm := structure.SemanticModel; sm != nil {
		totalMeasures := 0
		totalColumns := 0
		for _, table := range sm.Tables {
			totalMeasures += len(table.Measures)
			totalColumns += len(table.Columns)
		}

		result["semantic_model"] = map[string]any{
			"name":               sm.Name,
			"culture":            sm.Culture,
			"table_count":        len(sm.Tables),
			"relationship_count": len(sm.Relationships),
			"total_measures":     totalMeasures,
			"total_columns":      totalColumns,
		}
	}

	return jsonResult(result)
}
