package workflow

import "fmt"

// Kind identifies a detected fact or a path step
type Kind int

const (
	KindActivity Kind = iota + 1
	KindDecision
	KindSignalPoint
	KindSignalHandler
	KindExternalSignal
	KindChildWorkflow
	// KindStart and KindEnd only appear as path sentinels
	KindStart
	KindEnd
)

// String returns the tag consumed by diagram serializers
func (k Kind) String() string {
	switch k {
	case KindActivity:
		return "activity"
	case KindDecision:
		return "decision"
	case KindSignalPoint:
		return "signal"
	case KindSignalHandler:
		return "signal-handler"
	case KindExternalSignal:
		return "external-signal"
	case KindChildWorkflow:
		return "child-workflow"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsBranch returns true for kinds producing two outcomes
func (k Kind) IsBranch() bool {
	return k == KindDecision || k == KindSignalPoint
}

// MarshalYAML encodes a kind as its tag
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// ParseKind converts a tag back to Kind
func ParseKind(tag string) (Kind, error) {
	for k := KindActivity; k <= KindEnd; k++ {
		if k.String() == tag {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown kind: %q", tag)
}

// UnmarshalYAML decodes a kind tag
func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var tag string
	if err := unmarshal(&tag); err != nil {
		return err
	}
	parsed, err := ParseKind(tag)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SourceMarker is the smallest detected fact
type SourceMarker struct {
	Kind Kind   `yaml:"kind"`
	Name string `yaml:"name"`
	Line int    `yaml:"line"`
}
