// Package config provides configuration management for the leapbi CLI
// and MCP server.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

// Default configuration values.
const (
	DefaultProjectsDir  = "."
	DefaultOutputFormat = "table"
)

// Config holds all CLI configuration options.
type Config struct {
	// ProjectsDir is the default directory scanned for PBIP projects.
	ProjectsDir string `koanf:"projects_dir"`
	// OutputFormat selects list rendering (table|json).
	OutputFormat string `koanf:"output"`
	// Verbose enables debug-level logging.
	Verbose bool `koanf:"verbose"`
}

// ApplyDefaults fills unset fields with default values.
func ApplyDefaults(c *Config) {
	if c == nil {
		return
	}
	if c.ProjectsDir == "" {
		c.ProjectsDir = DefaultProjectsDir
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultOutputFormat
	}
}
