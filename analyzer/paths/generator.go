// Package paths enumerates execution paths of analyzed workflows.
package paths

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/viant/temporalgraph/analyzer/workflow"
)

const (
	StartNodeID = "start"
	EndNodeID   = "end"
)

// maxBranches bounds branch points per workflow when no ceiling is configured
const maxBranches = 30

// Options controls path generation
type Options struct {
	StartLabel        string
	EndLabel          string
	MaxDecisions      int // 0 leaves only the maxBranches bound
	MaxPaths          int // 0 leaves only the 2^maxBranches bound
	SplitNames        bool
	Mode              workflow.ExpansionMode
	MaxExpansionDepth int
}

// Generator turns workflow metadata into enumerated paths
type Generator struct {
	options Options
}

// New creates a generator
func New(options Options) *Generator {
	if options.StartLabel == "" {
		options.StartLabel = "Start"
	}
	if options.EndLabel == "" {
		options.EndLabel = "End"
	}
	if options.Mode == "" {
		options.Mode = workflow.ExpansionReference
	}
	return &Generator{options: options}
}

// item is a detected fact positioned for merging
type item struct {
	step     *workflow.Step
	pos      uint32
	rank     int
	seq      int
	decision *workflow.DecisionPoint
}

// guards reports whether i is a branch point whose branches enclose other
func (i *item) guards(other *item) bool {
	if i.decision == nil {
		return false
	}
	_, ok := i.decision.Branch(other.pos)
	return ok
}

// Generate enumerates every path of a single workflow; child workflow calls are atomic steps
func (g *Generator) Generate(meta *workflow.WorkflowMetadata) (*workflow.PathSet, error) {
	count, err := g.count(meta)
	if err != nil {
		return nil, err
	}
	if g.exceeds(count) {
		return nil, workflow.NewBranchExplosionError(len(meta.Decisions), count, g.limit())
	}
	ret := g.newSet(meta.WorkflowName, workflow.ExpansionReference)
	for _, path := range g.enumerate(meta) {
		ret.Paths = append(ret.Paths, g.finish(len(ret.Paths), path, []string{meta.WorkflowName}, nil))
	}
	return ret, nil
}

func (g *Generator) newSet(root string, mode workflow.ExpansionMode) *workflow.PathSet {
	return &workflow.PathSet{
		RootWorkflow: root,
		Mode:         mode,
		StartLabel:   g.options.StartLabel,
		EndLabel:     g.options.EndLabel,
	}
}

// count validates the decision ceiling and returns 2^N
func (g *Generator) count(meta *workflow.WorkflowMetadata) (*big.Int, error) {
	branches := len(meta.Decisions)
	if g.options.MaxDecisions > 0 && branches > g.options.MaxDecisions {
		return nil, &workflow.TooManyDecisionsError{Workflow: meta.WorkflowName, Count: branches, Limit: g.options.MaxDecisions}
	}
	if branches > maxBranches {
		return nil, &workflow.TooManyDecisionsError{Workflow: meta.WorkflowName, Count: branches, Limit: maxBranches}
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(branches)), nil
}

// limit returns the path ceiling, bounded by 2^maxBranches when MaxPaths is disabled
func (g *Generator) limit() int {
	if g.options.MaxPaths > 0 {
		return g.options.MaxPaths
	}
	return 1 << maxBranches
}

func (g *Generator) exceeds(count *big.Int) bool {
	return count.Cmp(big.NewInt(int64(g.limit()))) > 0
}

// items merges all facts of a workflow in execution order: line, then enclosing same-line branch, then detector rank, then sequence
func (g *Generator) items(meta *workflow.WorkflowMetadata) []*item {
	var ret []*item
	name := meta.WorkflowName
	for _, activity := range meta.Activities {
		ret = append(ret, &item{step: g.step(workflow.KindActivity, activity.NodeID, activity.Name, name, activity.Line), pos: activity.Pos, rank: 0, seq: activity.Seq})
	}
	for _, call := range meta.ChildCalls {
		ret = append(ret, &item{step: g.step(workflow.KindChildWorkflow, call.CallID, call.WorkflowName, name, call.CallSiteLine), pos: call.Pos, rank: 1, seq: call.Seq})
	}
	for _, send := range meta.ExternalSignals {
		ret = append(ret, &item{step: g.step(workflow.KindExternalSignal, send.NodeID, send.SignalName, name, send.SourceLine), pos: send.Pos, rank: 2, seq: send.Seq})
	}
	for _, decision := range meta.Decisions {
		ret = append(ret, &item{step: g.step(decision.Kind, decision.NodeID, decision.Name, name, decision.Line), pos: decision.Pos, rank: 3, seq: decision.ID, decision: decision})
	}
	keys := orderKeys(ret)
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].step.Line != ret[j].step.Line {
			return ret[i].step.Line < ret[j].step.Line
		}
		return lessKey(keys[ret[i]], keys[ret[j]])
	})
	return ret
}

// orderKeys ranks items sharing a line; items inside a same-line branch follow their innermost branch point
func orderKeys(items []*item) map[*item][]int {
	ret := make(map[*item][]int, len(items))
	var key func(it *item) []int
	key = func(it *item) []int {
		if k, ok := ret[it]; ok {
			return k
		}
		var parent []int
		for _, candidate := range items {
			if candidate == it || candidate.step.Line != it.step.Line || !candidate.guards(it) {
				continue
			}
			if k := key(candidate); len(k) > len(parent) {
				parent = k
			}
		}
		k := append(append([]int{}, parent...), it.rank, it.seq)
		ret[it] = k
		return k
	}
	for _, it := range items {
		key(it)
	}
	return ret
}

func lessKey(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func (g *Generator) step(kind workflow.Kind, nodeID, name, workflowName string, line int) *workflow.Step {
	return &workflow.Step{
		Kind:     kind,
		NodeID:   nodeID,
		Name:     name,
		Label:    workflow.DisplayName(name, g.options.SplitNames),
		Workflow: workflowName,
		Line:     line,
	}
}

// enumerate returns one path per outcome combination, without sentinels; bit i of the combination is the outcome of branch point i
func (g *Generator) enumerate(meta *workflow.WorkflowMetadata) []*workflow.Path {
	items := g.items(meta)
	decisions := append([]*workflow.DecisionPoint{}, meta.Decisions...)
	sort.SliceStable(decisions, func(i, j int) bool { return decisions[i].ID < decisions[j].ID })
	total := 1 << uint(len(decisions))
	ret := make([]*workflow.Path, 0, total)
	for combination := 0; combination < total; combination++ {
		outcomes := make(map[int]bool, len(decisions))
		path := &workflow.Path{Outcomes: make(map[string]bool, len(decisions))}
		for i, decision := range decisions {
			outcome := combination&(1<<uint(i)) != 0
			outcomes[decision.ID] = outcome
			path.Outcomes[decision.NodeID] = outcome
		}
		for _, it := range items {
			if !admitted(it.pos, decisions, outcomes) {
				continue
			}
			step := it.step.Clone()
			if it.decision != nil {
				outcome := outcomes[it.decision.ID]
				step.Outcome = &outcome
				step.BranchLabel = it.decision.Label(outcome)
			}
			path.Steps = append(path.Steps, step)
		}
		ret = append(ret, path)
	}
	return ret
}

// admitted returns true unless pos lies in a branch region excluded by its decision outcome
func admitted(pos uint32, decisions []*workflow.DecisionPoint, outcomes map[int]bool) bool {
	for _, decision := range decisions {
		if !decision.Admits(pos, outcomes[decision.ID]) {
			return false
		}
	}
	return true
}

// finish adds sentinels and shifts transitions past the start step
func (g *Generator) finish(index int, path *workflow.Path, workflows []string, transitions []workflow.Transition) *workflow.MultiWorkflowPath {
	root := ""
	if len(workflows) > 0 {
		root = workflows[0]
	}
	steps := make([]*workflow.Step, 0, len(path.Steps)+2)
	steps = append(steps, &workflow.Step{Kind: workflow.KindStart, NodeID: StartNodeID, Name: g.options.StartLabel, Label: g.options.StartLabel, Workflow: root})
	steps = append(steps, path.Steps...)
	steps = append(steps, &workflow.Step{Kind: workflow.KindEnd, NodeID: EndNodeID, Name: g.options.EndLabel, Label: g.options.EndLabel, Workflow: root})
	ret := &workflow.MultiWorkflowPath{
		Path: workflow.Path{
			ID:       fmt.Sprintf("path_%d", index),
			Steps:    steps,
			Outcomes: path.Outcomes,
		},
		Workflows: workflows,
	}
	for _, transition := range transitions {
		transition.StepIndex++
		ret.WorkflowTransitions = append(ret.WorkflowTransitions, transition)
	}
	return ret
}
