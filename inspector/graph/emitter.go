package graph

import (
	"fmt"

	"github.com/viant/temporalgraph/analyzer/workflow"
)

const (
	FormatMermaid = "mermaid"
	FormatYAML    = "yaml"
)

// Emitter renders generated paths
type Emitter interface {
	Emit(set *workflow.PathSet) ([]byte, error)
}

// NewEmitter returns an emitter for the supplied format
func NewEmitter(format string) (Emitter, error) {
	switch format {
	case FormatMermaid, "":
		return &Mermaid{}, nil
	case FormatYAML, "yml":
		return &YAML{}, nil
	}
	return nil, fmt.Errorf("unsupported output format: %v", format)
}
