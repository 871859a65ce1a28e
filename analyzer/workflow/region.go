package workflow

// Region represents a span of source belonging to one branch of a decision
type Region struct {
	StartLine int    `yaml:"startLine"`
	EndLine   int    `yaml:"endLine"`
	StartByte uint32 `yaml:"-"`
	EndByte   uint32 `yaml:"-"`
}

// Contains returns true if byte offset falls within the region
func (r Region) Contains(pos uint32) bool {
	return pos >= r.StartByte && pos < r.EndByte
}

// ContainsLine returns true if line falls within the region
func (r Region) ContainsLine(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}

func regionsContain(regions []Region, pos uint32) bool {
	for _, r := range regions {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}
