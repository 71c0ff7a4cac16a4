// Package options implements the three-layer settings registry of
// SPEC_FULL.md §4.6: compiled-in defaults, an optional velab.yaml file,
// and pflag command-line overrides, in that order, each layer winning
// over the last. There is deliberately no global singleton (spec.md §9)
// — every entry point that needs settings takes a *Config explicitly.
package options

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds every setting the elaboration core or its driver consults.
type Config struct {
	Cover       bool     `yaml:"cover"`
	Optimise    int      `yaml:"optimise"`
	RelaxedElab bool     `yaml:"relaxed"`
	Work        string   `yaml:"work"`
	LibPath     []string `yaml:"libpath"`
	Verbose     bool     `yaml:"-"` // CLI-only, never read from velab.yaml
}

// ConfigFileEnv names the environment variable that, when set, is
// searched for velab.yaml after the current directory.
const ConfigFileEnv = "VELAB_CONFIG"

// configFileName is the file Load looks for in each candidate directory.
const configFileName = "velab.yaml"

// Defaults returns the compiled-in baseline, layer 1 of the three-layer
// load order.
func Defaults() *Config {
	return &Config{
		Cover:       false,
		Optimise:    0,
		RelaxedElab: false,
		Work:        "work",
		LibPath:     nil,
		Verbose:     false,
	}
}

// Load builds a Config from defaults, an optional velab.yaml (layer 2),
// and flags already parsed into fs (layer 3). fs must have been parsed
// before Load is called; Load only reads back the flags' final values so
// that overriding logic lives in one place instead of being duplicated
// across every flag.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Defaults()

	if path, ok := findConfigFile(); ok {
		if err := mergeYAMLFile(cfg, path); err != nil {
			return nil, fmt.Errorf("options: %w", err)
		}
	}

	if fs != nil {
		applyFlagOverrides(cfg, fs)
	}
	return cfg, nil
}

// findConfigFile looks for velab.yaml first in the current directory,
// then in the directory named by VELAB_CONFIG (if set).
func findConfigFile() (string, bool) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, true
	}
	if dir := os.Getenv(ConfigFileEnv); dir != "" {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func mergeYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyFlagOverrides copies the final value of every flag the CLI
// defines onto cfg, but only for flags the user actually passed or that
// pflag otherwise changed from its own default — a flag nobody touched
// must not stomp a value the YAML layer just set.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) {
	if fs.Changed("cover") {
		cfg.Cover, _ = fs.GetBool("cover")
	}
	if fs.Changed("optimise") {
		cfg.Optimise, _ = fs.GetInt("optimise")
	}
	if fs.Changed("relaxed") {
		cfg.RelaxedElab, _ = fs.GetBool("relaxed")
	}
	if fs.Changed("work") {
		cfg.Work, _ = fs.GetString("work")
	}
	if fs.Changed("libpath") {
		cfg.LibPath, _ = fs.GetStringSlice("libpath")
	}
	if fs.Changed("verbose") {
		cfg.Verbose, _ = fs.GetBool("verbose")
	}
}

// RegisterFlags wires the flags applyFlagOverrides later reads back.
// Kept separate from Load so cmd/velab can register flags once at
// startup, before argument parsing, the way pflag expects.
func RegisterFlags(fs *pflag.FlagSet, defaults *Config) {
	fs.Bool("cover", defaults.Cover, "tag statements for coverage during elaboration")
	fs.Int("optimise", defaults.Optimise, "optimisation level passed to the external simplifier")
	fs.Bool("relaxed", defaults.RelaxedElab, "relax strict elaboration checks")
	fs.StringP("work", "", defaults.Work, "working library name")
	fs.StringSlice("libpath", defaults.LibPath, "additional library search directories")
	fs.BoolP("verbose", "v", defaults.Verbose, "enable operational trace logging")
}
