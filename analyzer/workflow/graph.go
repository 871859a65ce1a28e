package workflow

import "sort"

// Edge represents a (from, to) workflow relationship
type Edge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// WorkflowCallGraph holds workflows reachable through child workflow calls
type WorkflowCallGraph struct {
	RootWorkflow      *WorkflowMetadata            `yaml:"rootWorkflow"`
	ChildWorkflows    map[string]*WorkflowMetadata `yaml:"childWorkflows,omitempty"`
	CallRelationships []Edge                       `yaml:"callRelationships,omitempty"`
	AllChildCalls     []*ChildWorkflowCall         `yaml:"allChildCalls,omitempty"`
	TotalWorkflows    int                          `yaml:"totalWorkflows"`
	Cycles            []Edge                       `yaml:"cycles,omitempty"`
	DepthLimited      []string                     `yaml:"depthLimited,omitempty"`
}

// Workflow returns metadata by workflow name or class, root included
func (g *WorkflowCallGraph) Workflow(name string) *WorkflowMetadata {
	if g.RootWorkflow != nil && (g.RootWorkflow.WorkflowName == name || g.RootWorkflow.WorkflowClass == name) {
		return g.RootWorkflow
	}
	if meta, ok := g.ChildWorkflows[name]; ok {
		return meta
	}
	for _, meta := range g.ChildWorkflows {
		if meta.WorkflowClass == name {
			return meta
		}
	}
	return nil
}

// Names returns root followed by sorted child workflow names
func (g *WorkflowCallGraph) Names() []string {
	return workflowNames(g.RootWorkflow, g.ChildWorkflows)
}

// HasEdge returns true if from calls to
func (g *WorkflowCallGraph) HasEdge(from, to string) bool {
	return hasEdge(g.CallRelationships, from, to)
}

// PeerSignalGraph holds workflows connected through external signals
type PeerSignalGraph struct {
	RootWorkflow      *WorkflowMetadata            `yaml:"rootWorkflow"`
	Workflows         map[string]*WorkflowMetadata `yaml:"workflows,omitempty"`
	SignalHandlers    map[string][]*SignalHandler  `yaml:"signalHandlers,omitempty"`
	Connections       []*SignalConnection          `yaml:"connections,omitempty"`
	UnresolvedSignals []*ExternalSignalCall        `yaml:"unresolvedSignals,omitempty"`
	Cycles            []Edge                       `yaml:"cycles,omitempty"`
	DepthLimited      []string                     `yaml:"depthLimited,omitempty"`
}

// Names returns root followed by sorted peer workflow names
func (g *PeerSignalGraph) Names() []string {
	peers := make(map[string]*WorkflowMetadata, len(g.Workflows))
	for name, meta := range g.Workflows {
		if g.RootWorkflow != nil && name == g.RootWorkflow.WorkflowName {
			continue
		}
		peers[name] = meta
	}
	return workflowNames(g.RootWorkflow, peers)
}

func workflowNames(root *WorkflowMetadata, others map[string]*WorkflowMetadata) []string {
	var ret []string
	for name := range others {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	if root != nil {
		ret = append([]string{root.WorkflowName}, ret...)
	}
	return ret
}

func hasEdge(edges []Edge, from, to string) bool {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// AddEdge appends an edge unless already present
func AddEdge(edges []Edge, from, to string) []Edge {
	if hasEdge(edges, from, to) {
		return edges
	}
	return append(edges, Edge{From: from, To: to})
}
