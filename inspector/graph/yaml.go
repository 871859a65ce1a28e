package graph

import (
	"github.com/viant/temporalgraph/analyzer/workflow"
	"gopkg.in/yaml.v3"
)

// YAML emits the path set as a yaml document
type YAML struct{}

func (y *YAML) Emit(set *workflow.PathSet) ([]byte, error) {
	return yaml.Marshal(set)
}
