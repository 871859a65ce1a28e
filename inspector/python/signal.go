package python

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

// SignalHandlerDetector collects @workflow.signal methods of a workflow class
type SignalHandlerDetector struct {
	path     string
	class    string
	handlers []*workflow.SignalHandler
}

// NewSignalHandlerDetector creates a detector
func NewSignalHandlerDetector(path string) *SignalHandlerDetector {
	return &SignalHandlerDetector{path: path}
}

// SetWorkflow sets the declaring workflow class
func (d *SignalHandlerDetector) SetWorkflow(class string) {
	d.class = class
}

// Handlers returns detected handlers in source order
func (d *SignalHandlerDetector) Handlers() []*workflow.SignalHandler {
	return d.handlers
}

// Detect expects a class_definition (or its body)
func (d *SignalHandlerDetector) Detect(root *sitter.Node, src []byte) error {
	body := root
	if root.Type() == "class_definition" {
		body = root.ChildByFieldName("body")
	}
	if body == nil {
		return nil
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() != "decorated_definition" {
			continue
		}
		fn := child.ChildByFieldName("definition")
		if fn == nil || fn.Type() != "function_definition" {
			continue
		}
		method := Text(fn.ChildByFieldName("name"), src)
		for _, decorator := range decorators(child) {
			name, call := decoratorName(decorator, src)
			if name != "signal" {
				continue
			}
			signalName := method
			if call != nil {
				if nameNode := CallArguments(call, src).Arg(-1, "name"); nameNode != nil {
					value, ok := StringLiteral(nameNode, src)
					if !ok || value == "" {
						return &workflow.MarkerError{
							File:       d.path,
							Line:       Line(decorator),
							Marker:     "workflow.signal",
							Message:    fmt.Sprintf("signal name must be a non-empty string literal, got %s", Text(nameNode, src)),
							Suggestion: fmt.Sprintf(`@workflow.signal(name=%q)`, method),
						}
					}
					signalName = value
				}
			}
			d.handlers = append(d.handlers, &workflow.SignalHandler{
				SignalName:    signalName,
				MethodName:    method,
				WorkflowClass: d.class,
				SourceLine:    Line(fn),
				NodeID:        workflow.MakeHandlerNodeID(signalName, Line(fn)),
			})
		}
	}
	return nil
}

const (
	externalHandleFunction    = "get_external_workflow_handle"
	externalHandleForFunction = "get_external_workflow_handle_for"
)

type externalTarget struct {
	pattern  string
	workflow string
}

// ExternalSignalDetector collects signals sent to other workflows through external workflow handles
type ExternalSignalDetector struct {
	path    string
	source  string
	handles map[string]*externalTarget
	signals []*workflow.ExternalSignalCall
}

// NewExternalSignalDetector creates a detector
func NewExternalSignalDetector(path string) *ExternalSignalDetector {
	return &ExternalSignalDetector{path: path, handles: map[string]*externalTarget{}}
}

// SetWorkflow sets the sending workflow name
func (d *ExternalSignalDetector) SetWorkflow(name string) {
	d.source = name
}

// Signals returns detected sends in source order
func (d *ExternalSignalDetector) Signals() []*workflow.ExternalSignalCall {
	return d.signals
}

func (d *ExternalSignalDetector) Detect(root *sitter.Node, src []byte) error {
	var err error
	Walk(root, func(n *sitter.Node) bool {
		if err != nil {
			return false
		}
		switch n.Type() {
		case "assignment":
			left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
			if left != nil && right != nil {
				if target := handleTarget(Unwrap(right), src); target != nil {
					d.handles[Text(left, src)] = target
				}
			}
		case "call":
			err = d.detectSend(n, src)
		}
		return err == nil
	})
	return err
}

func (d *ExternalSignalDetector) detectSend(call *sitter.Node, src []byte) error {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "attribute" || Text(fn.ChildByFieldName("attribute"), src) != "signal" {
		return nil
	}
	object := Unwrap(fn.ChildByFieldName("object"))
	if object == nil {
		return nil
	}
	target := d.handles[Text(object, src)]
	if target == nil {
		target = handleTarget(object, src)
	}
	if target == nil {
		return nil
	}
	signalNode := Unwrap(CallArguments(call, src).Arg(0, "signal"))
	var signalName string
	if signalNode != nil {
		if signalNode.Type() == "attribute" {
			signalName = Text(signalNode.ChildByFieldName("attribute"), src)
		} else if value, ok := StringLiteral(signalNode, src); ok {
			signalName = value
		}
	}
	if signalName == "" {
		got := "nothing"
		if signalNode != nil {
			got = Text(signalNode, src)
		}
		return &workflow.MarkerError{
			File:       d.path,
			Line:       Line(call),
			Marker:     "signal",
			Message:    fmt.Sprintf("signal name must be a string literal or Workflow.method reference, got %s", got),
			Suggestion: `handle.signal("signal_name", payload)`,
		}
	}
	d.signals = append(d.signals, &workflow.ExternalSignalCall{
		SignalName:            signalName,
		TargetWorkflowPattern: target.pattern,
		TargetWorkflow:        target.workflow,
		SourceLine:            Line(call),
		NodeID:                workflow.MakeExternalSignalNodeID(signalName, Line(call)),
		SourceWorkflow:        d.source,
		Pos:                   call.StartByte(),
		Seq:                   len(d.signals),
	})
	return nil
}

// handleTarget returns target information when n is a get_external_workflow_handle(_for) call
func handleTarget(n *sitter.Node, src []byte) *externalTarget {
	if n == nil || n.Type() != "call" {
		return nil
	}
	args := CallArguments(n, src)
	var idNode *sitter.Node
	ret := &externalTarget{}
	switch CalleeName(n, src) {
	case externalHandleFunction:
		idNode = args.Arg(0, "workflow_id")
	case externalHandleForFunction:
		if fn := Unwrap(args.Arg(0, "workflow")); fn != nil {
			ret.workflow = childWorkflowName(fn, src)
		}
		idNode = args.Arg(1, "workflow_id")
	default:
		return nil
	}
	ret.pattern = workflow.DynamicTarget
	if pattern, ok := StringPattern(idNode, src); ok {
		ret.pattern = pattern
	}
	return ret
}
