package python

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

var activityFunctions = map[string]bool{
	"execute_activity":              true,
	"start_activity":                true,
	"execute_activity_method":       true,
	"start_activity_method":         true,
	"execute_local_activity":        true,
	"start_local_activity":          true,
	"execute_local_activity_method": true,
	"start_local_activity_method":   true,
}

// ActivityDetector collects activity dispatch calls
type ActivityDetector struct {
	path       string
	activities []*workflow.Activity
}

// NewActivityDetector creates an activity detector, path is used in error messages
func NewActivityDetector(path string) *ActivityDetector {
	return &ActivityDetector{path: path}
}

// Activities returns detected activities in source order
func (d *ActivityDetector) Activities() []*workflow.Activity {
	return d.activities
}

func (d *ActivityDetector) Detect(root *sitter.Node, src []byte) error {
	var err error
	Walk(root, func(n *sitter.Node) bool {
		if err != nil {
			return false
		}
		if n.Type() != "call" {
			return true
		}
		callee := CalleeName(n, src)
		if !activityFunctions[callee] {
			return true
		}
		target := CallArguments(n, src).Arg(0, "activity")
		if target == nil {
			err = &workflow.MarkerError{
				File:       d.path,
				Line:       Line(n),
				Marker:     callee,
				Message:    "missing activity argument",
				Suggestion: "workflow." + callee + "(my_activity, ...)",
			}
			return false
		}
		name := ReferenceName(target, src)
		d.activities = append(d.activities, &workflow.Activity{
			Name:   name,
			NodeID: name,
			Line:   Line(n),
			Pos:    n.StartByte(),
			Seq:    len(d.activities),
		})
		return true
	})
	return err
}
