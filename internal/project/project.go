// Package project loads PBIP projects from disk: the .pbip manifest,
// its JSON sidecars, and the semantic model assembled from the TMDL
// definition directory.
package project

import (
	"github.com/leapstack-labs/leapbi/pkg/model"
)

// Reference points at an artifact directory relative to the manifest.
type Reference struct {
	Path string `json:"path"`
	Type string `json:"type,omitempty"`
}

// Artifact is one entry of the manifest's artifact list.
type Artifact struct {
	Report        *Reference `json:"report,omitempty"`
	SemanticModel *Reference `json:"semanticModel,omitempty"`
}

// Settings are the manifest's project settings.
type Settings struct {
	EnableAutoRecovery bool `json:"enableAutoRecovery"`
}

// Info is the decoded .pbip manifest.
type Info struct {
	Version   string     `json:"version"`
	Artifacts []Artifact `json:"artifacts"`
	Settings  Settings   `json:"settings"`
}

// PlatformMetadata identifies the component a .platform file belongs to.
type PlatformMetadata struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
}

// PlatformConfig carries the component's fabric identity.
type PlatformConfig struct {
	Version   string `json:"version"`
	LogicalID string `json:"logicalId"`
}

// Platform is a decoded .platform sidecar.
type Platform struct {
	Schema   string           `json:"$schema"`
	Metadata PlatformMetadata `json:"metadata"`
	Config   PlatformConfig   `json:"config"`
}

// Structure is a fully loaded project: manifest, semantic model when
// present, and every sidecar found next to them.
type Structure struct {
	Info            Info                 `json:"project_info"`
	SemanticModel   *model.SemanticModel `json:"semantic_model,omitempty"`
	PlatformConfigs map[string]Platform  `json:"platform_configs,omitempty"`
	EditorSettings  map[string]any       `json:"editor_settings,omitempty"`
	DiagramLayout   map[string]any       `json:"diagram_layout,omitempty"`
}

// Kinds of listing entries.
const (
	KindProject         = "pbip_project"
	KindStandaloneModel = "standalone_semantic_model"
)

// Summary is one row of a project listing.
type Summary struct {
	Name             string `json:"name"`
	Path             string `json:"path"`
	Directory        string `json:"directory"`
	Type             string `json:"type"`
	Version          string `json:"version,omitempty"`
	HasSemanticModel bool   `json:"has_semantic_model"`
	HasReport        bool   `json:"has_report"`
}
