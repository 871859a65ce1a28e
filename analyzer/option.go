package analyzer

import (
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
)

const (
	DefaultStartLabel        = "Start"
	DefaultEndLabel          = "End"
	DefaultMaxDecisions      = 10
	DefaultMaxPaths          = 1024
	DefaultMaxExpansionDepth = 2
	DefaultMaxSignalDepth    = 10
)

type Option func(*Analyzer)

// WithLabels sets start and end sentinel labels
func WithLabels(start, end string) Option {
	return func(a *Analyzer) {
		if start != "" {
			a.startLabel = start
		}
		if end != "" {
			a.endLabel = end
		}
	}
}

// WithMaxDecisions sets the branch point ceiling per workflow
func WithMaxDecisions(limit int) Option {
	return func(a *Analyzer) {
		a.maxDecisions = limit
	}
}

// WithMaxPaths sets the path count ceiling
func WithMaxPaths(limit int) Option {
	return func(a *Analyzer) {
		a.maxPaths = limit
	}
}

// WithSplitNames renders snake_case and CamelCase names as separate words in step labels
func WithSplitNames(split bool) Option {
	return func(a *Analyzer) {
		a.splitNames = split
	}
}

// WithSuppressValidation disables validation findings
func WithSuppressValidation(suppress bool) Option {
	return func(a *Analyzer) {
		a.suppressValidation = suppress
	}
}

// WithExpansion sets how child workflow calls are represented in cross-workflow paths
func WithExpansion(mode workflow.ExpansionMode) Option {
	return func(a *Analyzer) {
		a.expansion = mode
	}
}

// WithMaxExpansionDepth sets call graph discovery and inline expansion depth
func WithMaxExpansionDepth(depth int) Option {
	return func(a *Analyzer) {
		a.maxExpansionDepth = depth
	}
}

// WithMaxSignalDepth sets signal graph traversal depth
func WithMaxSignalDepth(depth int) Option {
	return func(a *Analyzer) {
		a.maxSignalDepth = depth
	}
}

// WithSearchPaths sets default search roots used by cross-workflow discovery
func WithSearchPaths(paths ...string) Option {
	return func(a *Analyzer) {
		a.searchPaths = append(a.searchPaths, paths...)
	}
}

// WithMarkers overrides the decision and signal marker function names
func WithMarkers(markers python.Markers) Option {
	return func(a *Analyzer) {
		if markers.Decision != "" {
			a.markers.Decision = markers.Decision
		}
		if markers.Signal != "" {
			a.markers.Signal = markers.Signal
		}
	}
}

// WithLogger sets logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithFS sets file system service used to read sources
func WithFS(fs afs.Service) Option {
	return func(a *Analyzer) {
		if fs != nil {
			a.fs = fs
		}
	}
}

// WithExcludes adds doublestar patterns skipped by directory scans
func WithExcludes(patterns ...string) Option {
	return func(a *Analyzer) {
		a.excludes = append(a.excludes, patterns...)
	}
}
