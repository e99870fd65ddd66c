// Package config provides configuration loading for benchaudit.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for benchaudit.
type Config struct {
	Inputs InputsConfig `toml:"inputs"`
	Output OutputConfig `toml:"output"`
	Watch  WatchConfig  `toml:"watch"`
}

// InputsConfig names the source files read by the analyzer.
type InputsConfig struct {
	RunsFile        string `toml:"runs_file"`
	DefinitionsFile string `toml:"definitions_file"`
	ExclusionsFile  string `toml:"exclusions_file"` // empty: use the embedded curated list
}

// OutputConfig controls where the report artifacts are written.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// WatchConfig contains watch-mode settings.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Default configuration values. The well-known input filenames are read
// from the working directory so a plain `benchaudit analyze` needs no
// arguments.
var Default = Config{
	Inputs: InputsConfig{
		RunsFile:        "latest_runs.csv",
		DefinitionsFile: "webarena_tests.json",
	},
	Output: OutputConfig{
		Dir: ".",
	},
	Watch: WatchConfig{
		DebounceMS: 300,
	},
}

// configPaths returns the list of paths to search for config files.
func configPaths() []string {
	paths := []string{"./benchaudit.toml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".benchaudit.toml"))
		paths = append(paths, filepath.Join(home, ".config", "benchaudit", "config.toml"))
	}

	return paths
}

// Load loads configuration from a file or discovers it automatically.
// If configFile is empty, it searches standard locations.
// Returns default config if no file is found.
func Load(configFile string) (*Config, error) {
	cfg := Default // Start with defaults

	var path string
	if configFile != "" {
		path = configFile
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		for _, p := range configPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return &cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	// Ensure critical fields aren't zeroed out by partial config
	if cfg.Inputs.RunsFile == "" {
		cfg.Inputs.RunsFile = Default.Inputs.RunsFile
	}
	if cfg.Inputs.DefinitionsFile == "" {
		cfg.Inputs.DefinitionsFile = Default.Inputs.DefinitionsFile
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = Default.Output.Dir
	}
	if cfg.Watch.DebounceMS <= 0 {
		cfg.Watch.DebounceMS = Default.Watch.DebounceMS
	}

	return &cfg, nil
}
