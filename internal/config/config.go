// Package config loads CLI configuration from an optional YAML file with TEMPORALGRAPH_* environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/viant/temporalgraph/analyzer"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
)

const EnvPrefix = "TEMPORALGRAPH_"

// Config is the CLI configuration, corresponding to .temporalgraph.yml
type Config struct {
	StartLabel         string        `yaml:"start_label" koanf:"start_label"`
	EndLabel           string        `yaml:"end_label" koanf:"end_label"`
	MaxDecisions       int           `yaml:"max_decisions" koanf:"max_decisions"`
	MaxPaths           int           `yaml:"max_paths" koanf:"max_paths"`
	SplitNames         bool          `yaml:"split_names" koanf:"split_names"`
	SuppressValidation bool          `yaml:"suppress_validation" koanf:"suppress_validation"`
	Expansion          string        `yaml:"expansion" koanf:"expansion"`
	MaxExpansionDepth  int           `yaml:"max_expansion_depth" koanf:"max_expansion_depth"`
	MaxSignalDepth     int           `yaml:"max_signal_depth" koanf:"max_signal_depth"`
	SearchPaths        []string      `yaml:"search_paths" koanf:"search_paths"`
	Exclude            []string      `yaml:"exclude" koanf:"exclude"`
	DecisionMarker     string        `yaml:"decision_marker" koanf:"decision_marker"`
	SignalMarker       string        `yaml:"signal_marker" koanf:"signal_marker"`
	Format             string        `yaml:"format" koanf:"format"`
	Logging            LoggingConfig `yaml:"logging" koanf:"logging"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// DefaultConfig returns configuration matching analyzer defaults
func DefaultConfig() *Config {
	markers := python.DefaultMarkers()
	return &Config{
		StartLabel:        analyzer.DefaultStartLabel,
		EndLabel:          analyzer.DefaultEndLabel,
		MaxDecisions:      analyzer.DefaultMaxDecisions,
		MaxPaths:          analyzer.DefaultMaxPaths,
		Expansion:         string(workflow.ExpansionReference),
		MaxExpansionDepth: analyzer.DefaultMaxExpansionDepth,
		MaxSignalDepth:    analyzer.DefaultMaxSignalDepth,
		DecisionMarker:    markers.Decision,
		SignalMarker:      markers.Signal,
		Format:            "mermaid",
		Logging:           LoggingConfig{Level: "warn", Format: "text"},
	}
}

// Load reads configuration from the given YAML file when it exists, then overlays TEMPORALGRAPH_* variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}
	// TEMPORALGRAPH_MAX_PATHS -> max_paths, TEMPORALGRAPH_LOGGING__LEVEL -> logging.level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration contains valid values
func (c *Config) Validate() error {
	if !workflow.ExpansionMode(c.Expansion).Valid() {
		return fmt.Errorf("invalid expansion %q: must be one of reference, inline, subgraph", c.Expansion)
	}
	if c.MaxDecisions < 0 {
		return fmt.Errorf("max_decisions must be non-negative")
	}
	if c.MaxPaths < 0 {
		return fmt.Errorf("max_paths must be non-negative")
	}
	if c.MaxExpansionDepth < 0 || c.MaxSignalDepth < 0 {
		return fmt.Errorf("max_expansion_depth and max_signal_depth must be non-negative")
	}
	switch c.Format {
	case "mermaid", "yaml":
	default:
		return fmt.Errorf("invalid format %q: must be one of mermaid, yaml", c.Format)
	}
	return nil
}

// Options maps configuration onto analyzer options
func (c *Config) Options(logger *slog.Logger) []analyzer.Option {
	return []analyzer.Option{
		analyzer.WithLabels(c.StartLabel, c.EndLabel),
		analyzer.WithMaxDecisions(c.MaxDecisions),
		analyzer.WithMaxPaths(c.MaxPaths),
		analyzer.WithSplitNames(c.SplitNames),
		analyzer.WithSuppressValidation(c.SuppressValidation),
		analyzer.WithExpansion(workflow.ExpansionMode(c.Expansion)),
		analyzer.WithMaxExpansionDepth(c.MaxExpansionDepth),
		analyzer.WithMaxSignalDepth(c.MaxSignalDepth),
		analyzer.WithSearchPaths(c.SearchPaths...),
		analyzer.WithExcludes(c.Exclude...),
		analyzer.WithMarkers(python.Markers{Decision: c.DecisionMarker, Signal: c.SignalMarker}),
		analyzer.WithLogger(logger),
	}
}
