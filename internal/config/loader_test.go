package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapbi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultProjectsDir, cfg.ProjectsDir)
	assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, "projects_dir: /data/projects\noutput: json\nverbose: true\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/data/projects", cfg.ProjectsDir)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "output: table\n")
	t.Setenv("LEAPBI_OUTPUT", "json")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("LEAPBI_OUTPUT", "table")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "table", "")
	flags.String("projects-dir", ".", "")
	require.NoError(t, flags.Set("output", "json"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)

	// Unchanged flags do not mask lower layers.
	assert.Equal(t, ".", cfg.ProjectsDir)
}

func TestLoad_FlagNameTranslation(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("projects-dir", ".", "")
	require.NoError(t, flags.Set("projects-dir", "/srv/pbip"))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pbip", cfg.ProjectsDir)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "output: [unclosed\n")

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	assert.Equal(t, DefaultProjectsDir, cfg.ProjectsDir)
	assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)

	cfg = &Config{ProjectsDir: "/keep", OutputFormat: "json"}
	ApplyDefaults(cfg)
	assert.Equal(t, "/keep", cfg.ProjectsDir)
	assert.Equal(t, "json", cfg.OutputFormat)

	ApplyDefaults(nil)
}
