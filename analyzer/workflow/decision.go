package workflow

import "fmt"

const (
	DefaultDecisionTrueLabel  = "yes"
	DefaultDecisionFalseLabel = "no"
	DefaultSignalTrueLabel    = "Signaled"
	DefaultSignalFalseLabel   = "Timeout"
)

// Ternary holds the sub-expressions of a conditional expression wrapped by a decision marker
type Ternary struct {
	Test  string `yaml:"test"`
	True  string `yaml:"true"`
	False string `yaml:"false"`
}

// DecisionPoint represents a named two-outcome branch marker (decision or signal wait)
type DecisionPoint struct {
	ID          int      `yaml:"id"`
	NodeID      string   `yaml:"nodeId"`
	Kind        Kind     `yaml:"kind"`
	Name        string   `yaml:"name"`
	Line        int      `yaml:"line"`
	Pos         uint32   `yaml:"-"`
	TrueLabel   string   `yaml:"trueLabel"`
	FalseLabel  string   `yaml:"falseLabel"`
	Expression  string   `yaml:"expression,omitempty"`
	Ternary     *Ternary `yaml:"ternary,omitempty"`
	TrueBranch  []Region `yaml:"trueBranch,omitempty"`
	FalseBranch []Region `yaml:"falseBranch,omitempty"`
}

// NewDecisionPoint creates a decision or signal point with default labels
func NewDecisionPoint(id int, kind Kind, name string, line int, pos uint32) *DecisionPoint {
	ret := &DecisionPoint{ID: id, Kind: kind, Name: name, Line: line, Pos: pos}
	switch kind {
	case KindSignalPoint:
		ret.NodeID = fmt.Sprintf("s%d", id)
		ret.TrueLabel, ret.FalseLabel = DefaultSignalTrueLabel, DefaultSignalFalseLabel
	default:
		ret.NodeID = fmt.Sprintf("d%d", id)
		ret.TrueLabel, ret.FalseLabel = DefaultDecisionTrueLabel, DefaultDecisionFalseLabel
	}
	return ret
}

// Admits returns true if a step at pos can execute when this decision takes outcome
func (d *DecisionPoint) Admits(pos uint32, outcome bool) bool {
	if outcome {
		return !regionsContain(d.FalseBranch, pos)
	}
	return !regionsContain(d.TrueBranch, pos)
}

// Branch returns the branch (true/false) containing pos, ok is false when pos is outside both
func (d *DecisionPoint) Branch(pos uint32) (outcome bool, ok bool) {
	if regionsContain(d.TrueBranch, pos) {
		return true, true
	}
	if regionsContain(d.FalseBranch, pos) {
		return false, true
	}
	return false, false
}

// Label returns the branch label for an outcome
func (d *DecisionPoint) Label(outcome bool) string {
	if outcome {
		return d.TrueLabel
	}
	return d.FalseLabel
}
