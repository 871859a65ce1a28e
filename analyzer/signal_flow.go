package analyzer

import (
	"context"

	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
)

// receiver is a workflow class able to handle a signal
type receiver struct {
	module  *python.Module
	class   *python.Class
	handler *workflow.SignalHandler
}

// AnalyzeSignalFlow discovers peer workflows connected to the entry workflow through external signals
func (a *Analyzer) AnalyzeSignalFlow(ctx context.Context, entryPath string, searchPaths ...string) (*workflow.PeerSignalGraph, error) {
	s, entry, err := a.newSession(entryPath, searchPaths)
	if err != nil {
		return nil, err
	}
	module, root, err := s.root(ctx, entry)
	if err != nil {
		return nil, err
	}
	index, err := s.handlerIndex(ctx, module)
	if err != nil {
		return nil, err
	}
	ret := &workflow.PeerSignalGraph{
		RootWorkflow:   root,
		Workflows:      map[string]*workflow.WorkflowMetadata{root.WorkflowName: root},
		SignalHandlers: map[string][]*workflow.SignalHandler{},
	}
	for signal, receivers := range index {
		for _, r := range receivers {
			ret.SignalHandlers[signal] = append(ret.SignalHandlers[signal], r.handler)
		}
	}
	if err = s.discoverPeers(ctx, ret, index, root, 0); err != nil {
		return nil, err
	}
	return ret, nil
}

// handlerIndex scans search roots for signal handlers; unreadable or unparsable files are skipped
func (s *session) handlerIndex(ctx context.Context, entry *python.Module) (map[string][]*receiver, error) {
	files, err := s.resolver.Files(ctx)
	if err != nil {
		return nil, err
	}
	modules := []*python.Module{entry}
	for _, file := range files {
		if file == entry.Path {
			continue
		}
		if module := s.resolver.Lenient(ctx, file); module != nil {
			modules = append(modules, module)
		}
	}
	ret := map[string][]*receiver{}
	for _, module := range modules {
		for _, class := range module.Classes {
			detector := python.NewSignalHandlerDetector(module.Path)
			detector.SetWorkflow(class.Name)
			if err := detector.Detect(class.Node, module.Src); err != nil {
				s.logger.Warn("skipping signal handlers", "file", module.Path, "workflow", class.Name, "error", err)
				continue
			}
			for _, handler := range detector.Handlers() {
				ret[handler.SignalName] = append(ret[handler.SignalName], &receiver{module: module, class: class, handler: handler})
			}
		}
	}
	return ret, nil
}

func (s *session) discoverPeers(ctx context.Context, graph *workflow.PeerSignalGraph, index map[string][]*receiver, meta *workflow.WorkflowMetadata, depth int) error {
	s.states[meta.WorkflowName] = inProgress
	defer func() { s.states[meta.WorkflowName] = analyzed }()

	for _, send := range meta.ExternalSignals {
		var matched []*receiver
		for _, candidate := range index[send.SignalName] {
			if send.TargetWorkflow != "" && !candidate.class.Matches(send.TargetWorkflow) {
				continue
			}
			matched = append(matched, candidate)
		}
		if len(matched) == 0 {
			graph.UnresolvedSignals = append(graph.UnresolvedSignals, send)
			s.logger.Warn("no handler found for signal", "workflow", meta.WorkflowName, "signal", send.SignalName, "line", send.SourceLine)
			continue
		}
		for _, candidate := range matched {
			peerName := candidate.class.DefnName
			graph.Connections = append(graph.Connections, workflow.Connect(send, candidate.handler, peerName))
			switch s.states[peerName] {
			case inProgress:
				graph.Cycles = workflow.AddEdge(graph.Cycles, meta.WorkflowName, peerName)
				continue
			case analyzed:
				continue
			}
			if depth >= s.maxSignalDepth {
				if !containsString(graph.DepthLimited, peerName) {
					graph.DepthLimited = append(graph.DepthLimited, peerName)
				}
				s.logger.Warn("max signal depth reached, receiver not followed",
					"workflow", meta.WorkflowName, "receiver", peerName, "limit", s.maxSignalDepth)
				continue
			}
			peer, err := s.analyze(ctx, candidate.module, candidate.class)
			if err != nil {
				return err
			}
			graph.Workflows[peer.WorkflowName] = peer
			if err = s.discoverPeers(ctx, graph, index, peer, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
