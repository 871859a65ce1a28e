package analyzer

import (
	"context"

	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
	"github.com/viant/temporalgraph/inspector/repository"
)

// AnalyzeCallGraph discovers workflows reachable from the entry file through child workflow calls
func (a *Analyzer) AnalyzeCallGraph(ctx context.Context, entryPath string, searchPaths ...string) (*workflow.WorkflowCallGraph, error) {
	s, entry, err := a.newSession(entryPath, searchPaths)
	if err != nil {
		return nil, err
	}
	module, root, err := s.root(ctx, entry)
	if err != nil {
		return nil, err
	}
	ret := &workflow.WorkflowCallGraph{
		RootWorkflow:   root,
		ChildWorkflows: map[string]*workflow.WorkflowMetadata{},
	}
	if err = s.discoverChildren(ctx, ret, module, root, 0); err != nil {
		return nil, err
	}
	ret.TotalWorkflows = 1 + len(ret.ChildWorkflows)
	return ret, nil
}

func (s *session) discoverChildren(ctx context.Context, graph *workflow.WorkflowCallGraph, module *python.Module, meta *workflow.WorkflowMetadata, depth int) error {
	s.states[meta.WorkflowName] = inProgress
	defer func() { s.states[meta.WorkflowName] = analyzed }()

	for _, call := range meta.ChildCalls {
		graph.AllChildCalls = append(graph.AllChildCalls, call)
		var child *workflow.WorkflowMetadata
		resolution, err := s.resolver.Resolve(ctx, call.WorkflowName, module)
		if err == nil {
			child, err = s.analyze(ctx, resolution.Module, resolution.Class)
		}
		if err != nil {
			if depth < s.maxExpansionDepth {
				return err
			}
			s.depthLimited(graph, meta, call.WorkflowName, depth)
			continue
		}
		if err = s.follow(ctx, graph, resolution, child, meta, depth); err != nil {
			return err
		}
	}
	return nil
}

// follow records the edge to an analyzed child and recurses into it unless it is an ancestor, already analyzed or past the depth limit
func (s *session) follow(ctx context.Context, graph *workflow.WorkflowCallGraph, resolution *repository.Resolution, child, meta *workflow.WorkflowMetadata, depth int) error {
	switch s.states[child.WorkflowName] {
	case inProgress:
		graph.CallRelationships = workflow.AddEdge(graph.CallRelationships, meta.WorkflowName, child.WorkflowName)
		graph.Cycles = workflow.AddEdge(graph.Cycles, meta.WorkflowName, child.WorkflowName)
		s.logger.Warn("workflow call cycle detected", "from", meta.WorkflowName, "to", child.WorkflowName)
		return nil
	case analyzed:
		graph.CallRelationships = workflow.AddEdge(graph.CallRelationships, meta.WorkflowName, child.WorkflowName)
		return nil
	}
	if depth >= s.maxExpansionDepth {
		s.depthLimited(graph, meta, child.WorkflowName, depth)
		return nil
	}
	graph.CallRelationships = workflow.AddEdge(graph.CallRelationships, meta.WorkflowName, child.WorkflowName)
	if child.WorkflowName != graph.RootWorkflow.WorkflowName {
		graph.ChildWorkflows[child.WorkflowName] = child
	}
	s.logger.Debug("child workflow resolved", "workflow", child.WorkflowName, "file", resolution.Module.Path, "tier", resolution.Tier.String())
	return s.discoverChildren(ctx, graph, resolution.Module, child, depth+1)
}

func (s *session) depthLimited(graph *workflow.WorkflowCallGraph, meta *workflow.WorkflowMetadata, name string, depth int) {
	if !containsString(graph.DepthLimited, name) {
		graph.DepthLimited = append(graph.DepthLimited, name)
	}
	s.logger.Warn("max expansion depth reached, child workflow not followed",
		"workflow", meta.WorkflowName, "child", name, "depth", depth, "limit", s.maxExpansionDepth)
}

func containsString(items []string, item string) bool {
	for _, candidate := range items {
		if candidate == item {
			return true
		}
	}
	return false
}
