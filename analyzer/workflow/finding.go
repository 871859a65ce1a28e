package workflow

import "fmt"

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const (
	CodeDuplicateDecision    = "duplicate-decision-name"
	CodeUnsupportedConstruct = "unsupported-construct"
	CodeUnreachable          = "unreachable"
	CodeUnmarkedBranch       = "unmarked-branch"
	CodeNoActivities         = "no-activities"
)

// Finding represents a validation result attached to workflow metadata
type Finding struct {
	Severity Severity `yaml:"severity"`
	Code     string   `yaml:"code"`
	Line     int      `yaml:"line,omitempty"`
	Message  string   `yaml:"message"`
}

func (f *Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s[%s] line %d: %s", f.Severity, f.Code, f.Line, f.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", f.Severity, f.Code, f.Message)
}
