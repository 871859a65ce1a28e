package graph

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/temporalgraph/analyzer/workflow"
)

// Mermaid emits a flowchart merging all paths of a set
type Mermaid struct {
	Direction string // TD by default
}

type mermaidEdge struct {
	from, to, label string
}

func (m *Mermaid) Emit(set *workflow.PathSet) ([]byte, error) {
	if set == nil {
		return nil, fmt.Errorf("path set was nil")
	}
	direction := m.Direction
	if direction == "" {
		direction = "TD"
	}
	var order []string
	nodes := map[string]*workflow.Step{}
	var edges []mermaidEdge
	seenEdges := map[mermaidEdge]bool{}
	for _, path := range set.Paths {
		for i, step := range path.Steps {
			if _, ok := nodes[step.NodeID]; !ok {
				nodes[step.NodeID] = step
				order = append(order, step.NodeID)
			}
			if i == 0 {
				continue
			}
			prev := path.Steps[i-1]
			edge := mermaidEdge{from: prev.NodeID, to: step.NodeID}
			if prev.Kind.IsBranch() {
				edge.label = prev.BranchLabel
			}
			if !seenEdges[edge] {
				seenEdges[edge] = true
				edges = append(edges, edge)
			}
		}
	}

	buf := &bytes.Buffer{}
	if set.Project != "" {
		fmt.Fprintf(buf, "---\ntitle: %s\n---\n", mermaidText(set.Project))
	}
	fmt.Fprintf(buf, "flowchart %s\n", direction)
	groups := map[string][]string{}
	for _, id := range order {
		step := nodes[id]
		if set.Mode != workflow.ExpansionReference && step.Workflow != "" && step.Workflow != set.RootWorkflow {
			groups[step.Workflow] = append(groups[step.Workflow], id)
			continue
		}
		fmt.Fprintf(buf, "    %s\n", mermaidNode(step))
	}
	var names []string
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(buf, "    subgraph %s[\"%s\"]\n", mermaidID("wf."+name), mermaidText(name))
		for _, id := range groups[name] {
			fmt.Fprintf(buf, "        %s\n", mermaidNode(nodes[id]))
		}
		buf.WriteString("    end\n")
	}
	for _, edge := range edges {
		if edge.label != "" {
			fmt.Fprintf(buf, "    %s -->|%s| %s\n", mermaidID(edge.from), mermaidText(edge.label), mermaidID(edge.to))
			continue
		}
		fmt.Fprintf(buf, "    %s --> %s\n", mermaidID(edge.from), mermaidID(edge.to))
	}
	return buf.Bytes(), nil
}

func mermaidNode(step *workflow.Step) string {
	text := step.Label
	if text == "" {
		text = step.Name
	}
	text = mermaidText(text)
	id := mermaidID(step.NodeID)
	switch step.Kind {
	case workflow.KindStart, workflow.KindEnd:
		return fmt.Sprintf("%s((\"%s\"))", id, text)
	case workflow.KindDecision:
		return fmt.Sprintf("%s{\"%s\"}", id, text)
	case workflow.KindSignalPoint:
		return fmt.Sprintf("%s{{\"%s\"}}", id, text)
	case workflow.KindChildWorkflow:
		return fmt.Sprintf("%s[[\"%s\"]]", id, text)
	case workflow.KindExternalSignal:
		return fmt.Sprintf("%s>\"%s\"]", id, text)
	}
	return fmt.Sprintf("%s[\"%s\"]", id, text)
}

// mermaidID replaces characters mermaid does not accept in node ids; end is a keyword
func mermaidID(id string) string {
	if id == "end" {
		return "end_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, id)
}

func mermaidText(text string) string {
	return strings.ReplaceAll(text, `"`, "#quot;")
}
