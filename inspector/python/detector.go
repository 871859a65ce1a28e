package python

import sitter "github.com/smacker/go-tree-sitter"

// Detector walks a syntax tree once and collects typed records
type Detector interface {
	Detect(root *sitter.Node, src []byte) error
}

// Markers names helper functions recognized as branch markers
type Markers struct {
	Decision string `yaml:"decision"`
	Signal   string `yaml:"signal"`
}

// DefaultMarkers returns to_decision and wait_condition markers
func DefaultMarkers() Markers {
	return Markers{Decision: "to_decision", Signal: "wait_condition"}
}
