package workflow

import "sort"

// WorkflowMetadata aggregates everything detected for one workflow definition
type WorkflowMetadata struct {
	WorkflowClass   string                `yaml:"workflowClass"`
	WorkflowName    string                `yaml:"workflowName"`
	RunMethod       string                `yaml:"runMethod"`
	SourceFile      string                `yaml:"sourceFile"`
	Project         string                `yaml:"project,omitempty"`
	Fingerprint     uint64                `yaml:"fingerprint"`
	Activities      []*Activity           `yaml:"activities,omitempty"`
	Decisions       []*DecisionPoint      `yaml:"decisions,omitempty"`
	SignalHandlers  []*SignalHandler      `yaml:"signalHandlers,omitempty"`
	ExternalSignals []*ExternalSignalCall `yaml:"externalSignals,omitempty"`
	ChildCalls      []*ChildWorkflowCall  `yaml:"childCalls,omitempty"`
	Findings        []*Finding            `yaml:"findings,omitempty"`
}

// Membership lists node ids lying inside each branch of a decision
type Membership struct {
	True  []string `yaml:"true,omitempty"`
	False []string `yaml:"false,omitempty"`
}

// Decision returns decision point by id
func (m *WorkflowMetadata) Decision(id int) *DecisionPoint {
	if id >= 0 && id < len(m.Decisions) && m.Decisions[id].ID == id {
		return m.Decisions[id]
	}
	for _, d := range m.Decisions {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Markers returns all detected facts in source order
func (m *WorkflowMetadata) Markers() []SourceMarker {
	var ret []SourceMarker
	for _, a := range m.Activities {
		ret = append(ret, SourceMarker{Kind: KindActivity, Name: a.Name, Line: a.Line})
	}
	for _, d := range m.Decisions {
		ret = append(ret, SourceMarker{Kind: d.Kind, Name: d.Name, Line: d.Line})
	}
	for _, h := range m.SignalHandlers {
		ret = append(ret, SourceMarker{Kind: KindSignalHandler, Name: h.SignalName, Line: h.SourceLine})
	}
	for _, s := range m.ExternalSignals {
		ret = append(ret, SourceMarker{Kind: KindExternalSignal, Name: s.SignalName, Line: s.SourceLine})
	}
	for _, c := range m.ChildCalls {
		ret = append(ret, SourceMarker{Kind: KindChildWorkflow, Name: c.WorkflowName, Line: c.CallSiteLine})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Line != ret[j].Line {
			return ret[i].Line < ret[j].Line
		}
		return ret[i].Kind < ret[j].Kind
	})
	return ret
}

// BranchMembership returns, per decision id, node ids found inside its true and false branches
func (m *WorkflowMetadata) BranchMembership() map[int]*Membership {
	ret := make(map[int]*Membership, len(m.Decisions))
	type member struct {
		nodeID string
		pos    uint32
	}
	var members []member
	for _, a := range m.Activities {
		members = append(members, member{a.NodeID, a.Pos})
	}
	for _, d := range m.Decisions {
		members = append(members, member{d.NodeID, d.Pos})
	}
	for _, c := range m.ChildCalls {
		members = append(members, member{c.CallID, c.Pos})
	}
	for _, s := range m.ExternalSignals {
		members = append(members, member{s.NodeID, s.Pos})
	}
	for _, d := range m.Decisions {
		membership := &Membership{}
		for _, mem := range members {
			outcome, ok := d.Branch(mem.pos)
			if !ok {
				continue
			}
			if outcome {
				membership.True = appendUnique(membership.True, mem.nodeID)
			} else {
				membership.False = appendUnique(membership.False, mem.nodeID)
			}
		}
		ret[d.ID] = membership
	}
	return ret
}

// HasErrors returns true if any finding has error severity
func (m *WorkflowMetadata) HasErrors() bool {
	for _, f := range m.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

func appendUnique(items []string, item string) []string {
	for _, candidate := range items {
		if candidate == item {
			return items
		}
	}
	return append(items, item)
}
