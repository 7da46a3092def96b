package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// envPrefix namespaces leapbi environment variables, e.g.
// LEAPBI_PROJECTS_DIR and LEAPBI_OUTPUT.
const envPrefix = "LEAPBI_"

// configFileUsed tracks the config file loaded by the last Load call.
var configFileUsed string

// GetConfigFileUsed returns the config file path used by the last load,
// or empty when configuration came from defaults, env and flags only.
func GetConfigFileUsed() string {
	return configFileUsed
}

// findConfigFile finds the config file to use.
// Priority: explicit path > leapbi.yaml > leapbi.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"leapbi.yaml", "leapbi.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	configFileUsed = ""

	// 1. Defaults.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"projects_dir": DefaultProjectsDir,
		"output":       DefaultOutputFormat,
		"verbose":      false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Config file, when present.
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if cfgFile != "" {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
			// An implicit config file that fails to parse is still an error;
			// a missing one is not.
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else {
			configFileUsed = path
		}
	}

	// 3. Environment variables: LEAPBI_PROJECTS_DIR -> projects_dir.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	// 4. Flags override everything.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			name := strings.ReplaceAll(f.Name, "-", "_")
			return name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	ApplyDefaults(&cfg)

	return &cfg, nil
}
