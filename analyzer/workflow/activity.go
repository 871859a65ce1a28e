package workflow

// Activity represents a dispatch of a named activity within a workflow
type Activity struct {
	Name   string `yaml:"name"`
	NodeID string `yaml:"nodeId"`
	Line   int    `yaml:"line"`
	Pos    uint32 `yaml:"-"`
	Seq    int    `yaml:"-"`
}

// ChildWorkflowCall represents a nested workflow invocation
type ChildWorkflowCall struct {
	WorkflowName   string `yaml:"workflowName"`
	CallSiteLine   int    `yaml:"callSiteLine"`
	CallID         string `yaml:"callId"`
	ParentWorkflow string `yaml:"parentWorkflow"`
	Pos            uint32 `yaml:"-"`
	Seq            int    `yaml:"-"`
}

// MakeCallID derives a child call id from workflow name and call site line
func MakeCallID(workflowName string, line int) string {
	return "child_" + sanitize(workflowName) + "_" + itoa(line)
}
