package workflow

// DynamicTarget is used when an external workflow id cannot be determined statically
const DynamicTarget = "<dynamic>"

// SignalHandler represents a workflow's capability to receive a named signal
type SignalHandler struct {
	SignalName    string `yaml:"signalName"`
	MethodName    string `yaml:"methodName"`
	WorkflowClass string `yaml:"workflowClass"`
	SourceLine    int    `yaml:"sourceLine"`
	NodeID        string `yaml:"nodeId"`
}

// MakeHandlerNodeID returns signal handler node id
func MakeHandlerNodeID(signalName string, line int) string {
	return "sig_handler_" + sanitize(signalName) + "_" + itoa(line)
}

// ExternalSignalCall represents a signal sent to another workflow
type ExternalSignalCall struct {
	SignalName            string `yaml:"signalName"`
	TargetWorkflowPattern string `yaml:"targetWorkflowPattern"`
	TargetWorkflow        string `yaml:"targetWorkflow,omitempty"` // workflow class when known from get_external_workflow_handle_for
	SourceLine            int    `yaml:"sourceLine"`
	NodeID                string `yaml:"nodeId"`
	SourceWorkflow        string `yaml:"sourceWorkflow"`
	Pos                   uint32 `yaml:"-"`
	Seq                   int    `yaml:"-"`
}

// MakeExternalSignalNodeID returns external signal node id
func MakeExternalSignalNodeID(signalName string, line int) string {
	return "ext_sig_" + sanitize(signalName) + "_" + itoa(line)
}

// SignalConnection is a send resolved to a matching handler
type SignalConnection struct {
	SenderWorkflow   string `yaml:"senderWorkflow"`
	ReceiverWorkflow string `yaml:"receiverWorkflow"`
	SignalName       string `yaml:"signalName"`
	SenderLine       int    `yaml:"senderLine"`
	ReceiverLine     int    `yaml:"receiverLine"`
	SenderNodeID     string `yaml:"senderNodeId"`
	ReceiverNodeID   string `yaml:"receiverNodeId"`
}

// Connect pairs a send with a handler
func Connect(send *ExternalSignalCall, handler *SignalHandler, receiver string) *SignalConnection {
	return &SignalConnection{
		SenderWorkflow:   send.SourceWorkflow,
		ReceiverWorkflow: receiver,
		SignalName:       send.SignalName,
		SenderLine:       send.SourceLine,
		ReceiverLine:     handler.SourceLine,
		SenderNodeID:     send.NodeID,
		ReceiverNodeID:   handler.NodeID,
	}
}
