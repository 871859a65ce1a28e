package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

var childWorkflowFunctions = map[string]bool{
	"execute_child_workflow": true,
	"start_child_workflow":   true,
}

// ChildWorkflowDetector collects nested workflow invocations
type ChildWorkflowDetector struct {
	path   string
	parent string
	calls  []*workflow.ChildWorkflowCall
}

// NewChildWorkflowDetector creates a detector
func NewChildWorkflowDetector(path string) *ChildWorkflowDetector {
	return &ChildWorkflowDetector{path: path}
}

// SetWorkflow sets the enclosing workflow name recorded as parent
func (d *ChildWorkflowDetector) SetWorkflow(name string) {
	d.parent = name
}

// Calls returns detected child workflow calls in source order
func (d *ChildWorkflowDetector) Calls() []*workflow.ChildWorkflowCall {
	return d.calls
}

func (d *ChildWorkflowDetector) Detect(root *sitter.Node, src []byte) error {
	var err error
	Walk(root, func(n *sitter.Node) bool {
		if err != nil {
			return false
		}
		if n.Type() != "call" {
			return true
		}
		callee := CalleeName(n, src)
		if !childWorkflowFunctions[callee] {
			return true
		}
		target := Unwrap(CallArguments(n, src).Arg(0, "workflow"))
		if target == nil {
			err = &workflow.MarkerError{
				File:       d.path,
				Line:       Line(n),
				Marker:     callee,
				Message:    "missing child workflow argument",
				Suggestion: "workflow." + callee + "(ChildWorkflow.run, ...)",
			}
			return false
		}
		name := childWorkflowName(target, src)
		d.calls = append(d.calls, &workflow.ChildWorkflowCall{
			WorkflowName:   name,
			CallSiteLine:   Line(n),
			CallID:         workflow.MakeCallID(name, Line(n)),
			ParentWorkflow: d.parent,
			Pos:            n.StartByte(),
			Seq:            len(d.calls),
		})
		return true
	})
	return err
}

// childWorkflowName returns "Child" for Child.run, module.Child.run or "Child"
func childWorkflowName(target *sitter.Node, src []byte) string {
	if target.Type() == "attribute" {
		object := Unwrap(target.ChildByFieldName("object"))
		if object != nil {
			return ReferenceName(object, src)
		}
	}
	return ReferenceName(target, src)
}
