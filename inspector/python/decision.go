package python

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

// DecisionDetector collects decision and signal wait markers together with the source regions each outcome governs
type DecisionDetector struct {
	path      string
	markers   Markers
	decisions []*workflow.DecisionPoint
	byCall    map[uint32]*workflow.DecisionPoint
	byVar     map[string]*workflow.DecisionPoint
}

// NewDecisionDetector creates a detector for the given markers
func NewDecisionDetector(path string, markers Markers) *DecisionDetector {
	return &DecisionDetector{
		path:    path,
		markers: markers,
		byCall:  map[uint32]*workflow.DecisionPoint{},
		byVar:   map[string]*workflow.DecisionPoint{},
	}
}

// Decisions returns branch points ordered by id (source order)
func (d *DecisionDetector) Decisions() []*workflow.DecisionPoint {
	return d.decisions
}

func (d *DecisionDetector) Detect(root *sitter.Node, src []byte) error {
	var err error
	Walk(root, func(n *sitter.Node) bool {
		if err != nil {
			return false
		}
		if n.Type() != "call" {
			return true
		}
		switch CalleeName(n, src) {
		case d.markers.Decision:
			err = d.addDecision(n, src)
		case d.markers.Signal:
			err = d.addSignal(n, src)
		}
		return err == nil
	})
	if err != nil {
		return err
	}
	Walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "assignment":
			d.bind(n.ChildByFieldName("left"), n.ChildByFieldName("right"), src)
		case "if_statement":
			d.ifRegions(n, src)
		case "conditional_expression":
			d.ternaryRegions(n, src)
		}
		return true
	})
	return nil
}

func (d *DecisionDetector) addDecision(call *sitter.Node, src []byte) error {
	args := CallArguments(call, src)
	expr := args.Arg(0, "result", "condition", "value")
	nameNode := args.Arg(1, "name")
	marker := d.markers.Decision
	markerErr := func(message, suggestion string) error {
		return &workflow.MarkerError{File: d.path, Line: Line(call), Marker: marker, Message: message, Suggestion: suggestion}
	}
	if expr == nil {
		return markerErr("missing boolean expression", fmt.Sprintf(`%s(<condition>, "DecisionName")`, marker))
	}
	if nameNode == nil {
		return markerErr("missing decision name", fmt.Sprintf(`%s(%s, "DecisionName")`, marker, Text(expr, src)))
	}
	if len(args.Positional) > 2 {
		return markerErr(fmt.Sprintf("expected 2 arguments, got %d", len(args.Positional)), fmt.Sprintf(`%s(%s, "DecisionName")`, marker, Text(expr, src)))
	}
	name, ok := StringLiteral(nameNode, src)
	if !ok {
		return markerErr(fmt.Sprintf("decision name must be a string literal, got %s", Text(nameNode, src)),
			fmt.Sprintf(`replace %s with a literal such as "DecisionName"`, Text(nameNode, src)))
	}
	if name == "" {
		return markerErr("decision name must not be empty", fmt.Sprintf(`%s(%s, "DecisionName")`, marker, Text(expr, src)))
	}
	decision := workflow.NewDecisionPoint(len(d.decisions), workflow.KindDecision, name, Line(call), call.StartByte())
	decision.Expression = Text(expr, src)
	if ternary := Unwrap(expr); ternary.Type() == "conditional_expression" && ternary.NamedChildCount() >= 3 {
		decision.Ternary = &workflow.Ternary{
			True:  Text(ternary.NamedChild(0), src),
			Test:  Text(ternary.NamedChild(1), src),
			False: Text(ternary.NamedChild(2), src),
		}
	}
	d.add(call, decision)
	return nil
}

// addSignal registers wait_condition(predicate, timeout, "Name"); name-less calls are plain SDK waits and are skipped
func (d *DecisionDetector) addSignal(call *sitter.Node, src []byte) error {
	args := CallArguments(call, src)
	nameNode := args.Arg(2, "name")
	if nameNode == nil {
		return nil
	}
	predicate := args.Arg(0, "fn", "predicate")
	name, ok := StringLiteral(nameNode, src)
	if !ok || name == "" {
		return &workflow.MarkerError{
			File:       d.path,
			Line:       Line(call),
			Marker:     d.markers.Signal,
			Message:    fmt.Sprintf("signal name must be a non-empty string literal, got %s", Text(nameNode, src)),
			Suggestion: fmt.Sprintf(`%s(%s, timeout, "WaitForSignal")`, d.markers.Signal, Text(predicate, src)),
		}
	}
	if predicate == nil {
		return &workflow.MarkerError{
			File:       d.path,
			Line:       Line(call),
			Marker:     d.markers.Signal,
			Message:    "missing wait predicate",
			Suggestion: fmt.Sprintf(`%s(lambda: self.ready, timeout, %q)`, d.markers.Signal, name),
		}
	}
	point := workflow.NewDecisionPoint(len(d.decisions), workflow.KindSignalPoint, name, Line(call), call.StartByte())
	point.Expression = Text(predicate, src)
	d.add(call, point)
	return nil
}

func (d *DecisionDetector) add(call *sitter.Node, decision *workflow.DecisionPoint) {
	d.decisions = append(d.decisions, decision)
	d.byCall[call.StartByte()] = decision
}

// bind remembers variables holding a marker outcome: approved = await to_decision(...)
func (d *DecisionDetector) bind(left, right *sitter.Node, src []byte) {
	if left == nil || right == nil {
		return
	}
	if decision, negated := d.lookup(right, src); decision != nil && !negated {
		d.byVar[Text(left, src)] = decision
	}
}

// lookup resolves a condition to its governing branch point
func (d *DecisionDetector) lookup(cond *sitter.Node, src []byte) (*workflow.DecisionPoint, bool) {
	expr, negated := Negation(cond)
	if expr == nil {
		return nil, false
	}
	if expr.Type() == "named_expression" {
		value := expr.ChildByFieldName("value")
		d.bind(expr.ChildByFieldName("name"), value, src)
		inner, innerNegated := Negation(value)
		expr, negated = inner, negated != innerNegated
		if expr == nil {
			return nil, false
		}
	}
	switch expr.Type() {
	case "call":
		if decision := d.byCall[expr.StartByte()]; decision != nil {
			return decision, negated
		}
	case "identifier", "attribute":
		if decision := d.byVar[Text(expr, src)]; decision != nil {
			return decision, negated
		}
	}
	return nil, false
}

func (d *DecisionDetector) ifRegions(n *sitter.Node, src []byte) {
	type clause struct {
		condition *sitter.Node
		body      *sitter.Node
	}
	clauses := []clause{{n.ChildByFieldName("condition"), n.ChildByFieldName("consequence")}}
	var alternatives []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "elif_clause":
			alternatives = append(alternatives, child)
			clauses = append(clauses, clause{child.ChildByFieldName("condition"), child.ChildByFieldName("consequence")})
		case "else_clause":
			alternatives = append(alternatives, child)
		}
	}
	for i, c := range clauses {
		if c.condition == nil || c.body == nil {
			continue
		}
		decision, negated := d.lookup(c.condition, src)
		if decision == nil {
			continue
		}
		trueRegion := []workflow.Region{regionOf(c.body, c.body)}
		var falseRegion []workflow.Region
		if i < len(alternatives) {
			falseRegion = []workflow.Region{regionOf(alternatives[i], n)}
		}
		if negated {
			trueRegion, falseRegion = falseRegion, trueRegion
		}
		decision.TrueBranch = append(decision.TrueBranch, trueRegion...)
		decision.FalseBranch = append(decision.FalseBranch, falseRegion...)
	}
}

// ternaryRegions handles: value = a() if await to_decision(x, "X") else b()
func (d *DecisionDetector) ternaryRegions(n *sitter.Node, src []byte) {
	if n.NamedChildCount() < 3 {
		return
	}
	consequence, test, alternative := n.NamedChild(0), n.NamedChild(1), n.NamedChild(2)
	decision, negated := d.lookup(test, src)
	if decision == nil {
		return
	}
	trueRegion, falseRegion := regionOf(consequence, consequence), regionOf(alternative, alternative)
	if negated {
		trueRegion, falseRegion = falseRegion, trueRegion
	}
	decision.TrueBranch = append(decision.TrueBranch, trueRegion)
	decision.FalseBranch = append(decision.FalseBranch, falseRegion)
}

func regionOf(from, to *sitter.Node) workflow.Region {
	return workflow.Region{
		StartLine: Line(from),
		EndLine:   EndLine(to),
		StartByte: from.StartByte(),
		EndByte:   to.EndByte(),
	}
}
