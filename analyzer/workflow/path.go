package workflow

// ExpansionMode controls how child workflow calls are represented in generated paths
type ExpansionMode string

const (
	ExpansionReference ExpansionMode = "reference"
	ExpansionInline    ExpansionMode = "inline"
	ExpansionSubgraph  ExpansionMode = "subgraph"
)

// Valid returns true for supported modes
func (m ExpansionMode) Valid() bool {
	switch m {
	case ExpansionReference, ExpansionInline, ExpansionSubgraph:
		return true
	}
	return false
}

// Step represents one element of an execution path
type Step struct {
	Kind        Kind   `yaml:"kind"`
	NodeID      string `yaml:"nodeId"`
	Name        string `yaml:"name"`
	Label       string `yaml:"label,omitempty"`
	Workflow    string `yaml:"workflow,omitempty"`
	Line        int    `yaml:"line,omitempty"`
	Outcome     *bool  `yaml:"outcome,omitempty"`
	BranchLabel string `yaml:"branch,omitempty"`
}

// Clone returns a copy of the step
func (s *Step) Clone() *Step {
	ret := *s
	if s.Outcome != nil {
		outcome := *s.Outcome
		ret.Outcome = &outcome
	}
	return &ret
}

// Path represents one linear execution through a workflow
type Path struct {
	ID       string          `yaml:"id"`
	Steps    []*Step         `yaml:"steps"`
	Outcomes map[string]bool `yaml:"outcomes,omitempty"` // decision node id -> outcome
}

// NodeIDs returns ordered node ids of the path
func (p *Path) NodeIDs() []string {
	ret := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		ret = append(ret, step.NodeID)
	}
	return ret
}

// Names returns ordered step names, sentinels excluded
func (p *Path) Names() []string {
	var ret []string
	for _, step := range p.Steps {
		if step.Kind == KindStart || step.Kind == KindEnd {
			continue
		}
		ret = append(ret, step.Name)
	}
	return ret
}

// Contains returns true if a step with name and kind is on the path
func (p *Path) Contains(kind Kind, name string) bool {
	for _, step := range p.Steps {
		if step.Kind == kind && step.Name == name {
			return true
		}
	}
	return false
}

// Transition marks a workflow boundary crossing at step index
type Transition struct {
	StepIndex int    `yaml:"stepIndex"`
	From      string `yaml:"from"`
	To        string `yaml:"to"`
}

// MultiWorkflowPath is a path spanning several workflows
type MultiWorkflowPath struct {
	Path                `yaml:",inline"`
	Workflows           []string     `yaml:"workflows"`
	WorkflowTransitions []Transition `yaml:"workflowTransitions,omitempty"`
}

// PathSet is the generator output consumed by emitters
type PathSet struct {
	RootWorkflow string               `yaml:"rootWorkflow"`
	Project      string               `yaml:"project,omitempty"`
	Mode         ExpansionMode        `yaml:"mode"`
	Paths        []*MultiWorkflowPath `yaml:"paths"`
	StartLabel   string               `yaml:"startLabel"`
	EndLabel     string               `yaml:"endLabel"`
}

// Membership returns node id -> workflow for every step in the set
func (s *PathSet) Membership() map[string]string {
	ret := map[string]string{}
	for _, path := range s.Paths {
		for _, step := range path.Steps {
			if step.Workflow == "" {
				continue
			}
			if _, ok := ret[step.NodeID]; !ok {
				ret[step.NodeID] = step.Workflow
			}
		}
	}
	return ret
}
