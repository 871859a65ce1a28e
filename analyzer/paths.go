package analyzer

import (
	"fmt"

	"github.com/viant/temporalgraph/analyzer/paths"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

func (a *Analyzer) generator() *paths.Generator {
	return paths.New(paths.Options{
		StartLabel:        a.startLabel,
		EndLabel:          a.endLabel,
		MaxDecisions:      a.maxDecisions,
		MaxPaths:          a.maxPaths,
		SplitNames:        a.splitNames,
		Mode:              a.expansion,
		MaxExpansionDepth: a.maxExpansionDepth,
	})
}

// Paths enumerates execution paths of a single workflow
func (a *Analyzer) Paths(meta *workflow.WorkflowMetadata) (*workflow.PathSet, error) {
	if meta == nil {
		return nil, fmt.Errorf("workflow metadata was nil")
	}
	ret, err := a.generator().Generate(meta)
	if err != nil {
		return nil, err
	}
	ret.Project = meta.Project
	return ret, nil
}

// CallGraphPaths enumerates execution paths across a call graph using the configured expansion mode
func (a *Analyzer) CallGraphPaths(graph *workflow.WorkflowCallGraph) (*workflow.PathSet, error) {
	if graph == nil || graph.RootWorkflow == nil {
		return nil, fmt.Errorf("call graph was empty")
	}
	if !a.expansion.Valid() {
		return nil, fmt.Errorf("unsupported expansion mode: %v", a.expansion)
	}
	ret, err := a.generator().GenerateGraph(graph)
	if err != nil {
		return nil, err
	}
	ret.Project = graph.RootWorkflow.Project
	return ret, nil
}
