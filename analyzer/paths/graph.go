package paths

import (
	"math/big"

	"github.com/viant/temporalgraph/analyzer/workflow"
)

// expansion is a partially materialized cross-workflow path, sentinels excluded
type expansion struct {
	steps       []*workflow.Step
	outcomes    map[string]bool
	workflows   []string
	transitions []workflow.Transition
}

// GenerateGraph enumerates paths of the call graph root using the configured expansion mode
func (g *Generator) GenerateGraph(graph *workflow.WorkflowCallGraph) (*workflow.PathSet, error) {
	root := graph.RootWorkflow
	if g.options.Mode != workflow.ExpansionInline {
		ret, err := g.Generate(root)
		if err != nil {
			return nil, err
		}
		ret.Mode = g.options.Mode
		for _, path := range ret.Paths {
			path.Workflows = referencedWorkflows(root, path)
		}
		return ret, nil
	}

	parentCount, err := g.count(root)
	if err != nil {
		return nil, err
	}
	if g.exceeds(parentCount) {
		return nil, workflow.NewBranchExplosionError(len(root.Decisions), parentCount, g.limit())
	}
	stack := map[string]bool{root.WorkflowName: true}
	factors := []workflow.Factor{{Name: root.WorkflowName, Count: parentCount}}
	total := new(big.Int).Set(parentCount)
	for _, call := range root.ChildCalls {
		child := g.expandable(graph, call.WorkflowName, 1, stack)
		if child == nil {
			continue
		}
		childCount, err := g.total(graph, child, 1, stack)
		if err != nil {
			return nil, err
		}
		factors = append(factors, workflow.Factor{Name: child.WorkflowName, Count: childCount})
		total.Mul(total, childCount)
	}
	if g.exceeds(total) {
		return nil, workflow.NewProductExplosionError(factors, total, g.limit())
	}

	ret := g.newSet(root.WorkflowName, workflow.ExpansionInline)
	for _, exp := range g.expand(graph, root, 0, stack) {
		path := &workflow.Path{Steps: exp.steps, Outcomes: exp.outcomes}
		ret.Paths = append(ret.Paths, g.finish(len(ret.Paths), path, exp.workflows, exp.transitions))
	}
	return ret, nil
}

// expandable returns child metadata when a call can be inlined at depth, nil when it stays a reference step
func (g *Generator) expandable(graph *workflow.WorkflowCallGraph, name string, depth int, stack map[string]bool) *workflow.WorkflowMetadata {
	if depth > g.options.MaxExpansionDepth {
		return nil
	}
	meta := graph.Workflow(name)
	if meta == nil || stack[meta.WorkflowName] {
		return nil
	}
	return meta
}

// total computes the upper bound of paths of meta with its call sites inlined, without materializing them
func (g *Generator) total(graph *workflow.WorkflowCallGraph, meta *workflow.WorkflowMetadata, depth int, stack map[string]bool) (*big.Int, error) {
	ret, err := g.count(meta)
	if err != nil {
		return nil, err
	}
	stack[meta.WorkflowName] = true
	defer delete(stack, meta.WorkflowName)
	for _, call := range meta.ChildCalls {
		child := g.expandable(graph, call.WorkflowName, depth+1, stack)
		if child == nil {
			continue
		}
		childCount, err := g.total(graph, child, depth+1, stack)
		if err != nil {
			return nil, err
		}
		ret.Mul(ret, childCount)
	}
	return ret, nil
}

// expand materializes the cross product of meta paths and the paths of every inlined child call site
func (g *Generator) expand(graph *workflow.WorkflowCallGraph, meta *workflow.WorkflowMetadata, depth int, stack map[string]bool) []*expansion {
	stack[meta.WorkflowName] = true
	defer delete(stack, meta.WorkflowName)
	children := map[string][]*expansion{}
	var ret []*expansion
	for _, path := range g.enumerate(meta) {
		partials := []*expansion{{outcomes: copyOutcomes(path.Outcomes, ""), workflows: []string{meta.WorkflowName}}}
		for _, step := range path.Steps {
			var child *workflow.WorkflowMetadata
			if step.Kind == workflow.KindChildWorkflow {
				child = g.expandable(graph, step.Name, depth+1, stack)
			}
			if child == nil {
				for _, partial := range partials {
					partial.steps = append(partial.steps, step.Clone())
				}
				continue
			}
			childPaths, ok := children[child.WorkflowName]
			if !ok {
				childPaths = g.expand(graph, child, depth+1, stack)
				children[child.WorkflowName] = childPaths
			}
			var next []*expansion
			for _, partial := range partials {
				for _, childPath := range childPaths {
					next = append(next, partial.enter(meta.WorkflowName, child.WorkflowName, childPath))
				}
			}
			partials = next
		}
		ret = append(ret, partials...)
	}
	return ret
}

// enter returns a copy of e extended by a child path, recording transitions into the child and back
func (e *expansion) enter(parent, child string, childPath *expansion) *expansion {
	offset := len(e.steps)
	ret := &expansion{
		steps:       make([]*workflow.Step, 0, offset+len(childPath.steps)),
		outcomes:    copyOutcomes(e.outcomes, ""),
		workflows:   append([]string{}, e.workflows...),
		transitions: append([]workflow.Transition{}, e.transitions...),
	}
	ret.steps = append(ret.steps, e.steps...)
	ret.transitions = append(ret.transitions, workflow.Transition{StepIndex: offset, From: parent, To: child})
	for _, step := range childPath.steps {
		namespaced := step.Clone()
		namespaced.NodeID = child + "." + step.NodeID
		ret.steps = append(ret.steps, namespaced)
	}
	for _, transition := range childPath.transitions {
		transition.StepIndex += offset
		ret.transitions = append(ret.transitions, transition)
	}
	ret.transitions = append(ret.transitions, workflow.Transition{StepIndex: len(ret.steps), From: child, To: parent})
	for key, value := range copyOutcomes(childPath.outcomes, child+".") {
		ret.outcomes[key] = value
	}
	for _, name := range childPath.workflows {
		if !contains(ret.workflows, name) {
			ret.workflows = append(ret.workflows, name)
		}
	}
	return ret
}

func referencedWorkflows(root *workflow.WorkflowMetadata, path *workflow.MultiWorkflowPath) []string {
	ret := []string{root.WorkflowName}
	for _, step := range path.Steps {
		if step.Kind == workflow.KindChildWorkflow && !contains(ret, step.Name) {
			ret = append(ret, step.Name)
		}
	}
	return ret
}

func copyOutcomes(outcomes map[string]bool, prefix string) map[string]bool {
	ret := make(map[string]bool, len(outcomes))
	for key, value := range outcomes {
		ret[prefix+key] = value
	}
	return ret
}

func contains(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
