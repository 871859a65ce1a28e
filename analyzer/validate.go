package analyzer

import (
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/temporalgraph/analyzer/workflow"
	"github.com/viant/temporalgraph/inspector/python"
)

var unsupportedConstructs = map[string]string{
	"for_statement":   "for loop",
	"while_statement": "while loop",
	"try_statement":   "try block",
	"match_statement": "match statement",
}

// step is a positioned fact the path generator emits
type step struct {
	name string
	pos  uint32
}

func validate(meta *workflow.WorkflowMetadata, body *sitter.Node) []*workflow.Finding {
	var steps []step
	for _, activity := range meta.Activities {
		steps = append(steps, step{activity.Name, activity.Pos})
	}
	for _, decision := range meta.Decisions {
		steps = append(steps, step{decision.Name, decision.Pos})
	}
	for _, call := range meta.ChildCalls {
		steps = append(steps, step{call.WorkflowName, call.Pos})
	}
	for _, send := range meta.ExternalSignals {
		steps = append(steps, step{send.SignalName, send.Pos})
	}
	marked := map[uint32]bool{}
	for _, decision := range meta.Decisions {
		for _, region := range append(append([]workflow.Region{}, decision.TrueBranch...), decision.FalseBranch...) {
			marked[region.StartByte] = true
		}
	}

	var ret []*workflow.Finding
	ret = append(ret, duplicateDecisions(meta)...)
	python.Walk(body, func(n *sitter.Node) bool {
		if construct, ok := unsupportedConstructs[n.Type()]; ok {
			if inside := within(steps, n.StartByte(), n.EndByte()); len(inside) > 0 {
				ret = append(ret, &workflow.Finding{
					Severity: workflow.SeverityWarning,
					Code:     workflow.CodeUnsupportedConstruct,
					Line:     python.Line(n),
					Message:  fmt.Sprintf("%s containing %s is not modeled; paths assume it runs once", construct, inside[0].name),
				})
			}
		}
		switch n.Type() {
		case "if_statement", "elif_clause":
			consequence := n.ChildByFieldName("consequence")
			if consequence == nil || marked[consequence.StartByte()] {
				return true
			}
			end := consequence.EndByte()
			if n.Type() == "if_statement" {
				end = n.EndByte()
			}
			if inside := within(steps, consequence.StartByte(), end); len(inside) > 0 && !coveredElsewhere(n, marked) {
				ret = append(ret, &workflow.Finding{
					Severity: workflow.SeverityWarning,
					Code:     workflow.CodeUnmarkedBranch,
					Line:     python.Line(n),
					Message:  fmt.Sprintf("%s is conditional but the condition is not a decision marker; both outcomes are drawn on every path", inside[0].name),
				})
			}
		case "block":
			ret = append(ret, unreachable(n, steps)...)
		}
		return true
	})
	if len(meta.Activities) == 0 && len(meta.ChildCalls) == 0 {
		ret = append(ret, &workflow.Finding{
			Severity: workflow.SeverityWarning,
			Code:     workflow.CodeNoActivities,
			Message:  fmt.Sprintf("workflow %s has no activity or child workflow calls", meta.WorkflowName),
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Line < ret[j].Line
	})
	return ret
}

// coveredElsewhere returns true when an if statement is marked through one of its elif clauses only
func coveredElsewhere(n *sitter.Node, marked map[uint32]bool) bool {
	if n.Type() != "if_statement" {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "elif_clause" {
			continue
		}
		if consequence := child.ChildByFieldName("consequence"); consequence != nil && marked[consequence.StartByte()] {
			return true
		}
	}
	return false
}

func duplicateDecisions(meta *workflow.WorkflowMetadata) []*workflow.Finding {
	var ret []*workflow.Finding
	seen := map[string]*workflow.DecisionPoint{}
	for _, decision := range meta.Decisions {
		first, ok := seen[decision.Name]
		if !ok {
			seen[decision.Name] = decision
			continue
		}
		ret = append(ret, &workflow.Finding{
			Severity: workflow.SeverityWarning,
			Code:     workflow.CodeDuplicateDecision,
			Line:     decision.Line,
			Message:  fmt.Sprintf("%s %q already declared at line %d; diagram labels will be ambiguous", decision.Kind, decision.Name, first.Line),
		})
	}
	return ret
}

func unreachable(block *sitter.Node, steps []step) []*workflow.Finding {
	var ret []*workflow.Finding
	terminated := ""
	for i := 0; i < int(block.NamedChildCount()); i++ {
		statement := block.NamedChild(i)
		if terminated != "" {
			if inside := within(steps, statement.StartByte(), statement.EndByte()); len(inside) > 0 {
				ret = append(ret, &workflow.Finding{
					Severity: workflow.SeverityWarning,
					Code:     workflow.CodeUnreachable,
					Line:     python.Line(statement),
					Message:  fmt.Sprintf("%s follows a %s statement and never executes", inside[0].name, terminated),
				})
			}
			continue
		}
		switch statement.Type() {
		case "return_statement":
			terminated = "return"
		case "raise_statement":
			terminated = "raise"
		}
	}
	return ret
}

func within(steps []step, start, end uint32) []step {
	var ret []step
	for _, s := range steps {
		if s.pos >= start && s.pos < end {
			ret = append(ret, s)
		}
	}
	return ret
}
