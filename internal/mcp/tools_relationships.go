package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ListRelationshipsInput is the input schema for the list_relationships tool.
type ListRelationshipsInput struct {
	ProjectPath string `json:"project_path" jsonschema:"path to PBIP project file or its directory"`
}

func (s *Server) registerRelationshipTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameListRelationships,
		Description: "List all relationships in the project",
	}, s.handleListRelationships)
	s.trackTool(ToolNameListRelationships)
}

func (s *Server) handleListRelationships(ctx context.Context, req *mcpsdk.CallToolRequest, input ListRelationshipsInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	sm, err := s.loadModel(input.ProjectPath)
	if err != nil {
		return errorResult(err)
	}

	relationships := []map[string]any{}
	activeCount := 0
	cardinalitySummary := map[string]int{}

	for _, rel := range sm.Relationships {
		if rel.IsActive {
			activeCount++
		}
		cardinalitySummary[string(rel.Cardinality)]++

		relationships = append(relationships, map[string]any{
			"name":                     rel.Name,
			"from":                     rel.FromTable + "[" + rel.FromColumn + "]",
			"to":                       rel.ToTable + "[" + rel.ToColumn + "]",
			"cardinality":              string(rel.Cardinality),
			"cross_filtering_behavior": string(rel.CrossFilteringBehavior),
			"is_active":                rel.IsActive,
			"join_on_date_behavior":    rel.JoinOnDateBehavior,
		})
	}

	return jsonResult(map[string]any{
		"count":               len(relationships),
		"active_count":        activeCount,
		"inactive_count":      len(relationships) - activeCount,
		"cardinality_summary": cardinalitySummary,
		"relationships":       relationships,
	})
}
