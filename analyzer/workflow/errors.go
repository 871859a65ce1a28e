package workflow

import (
	"fmt"
	"math/big"
	"strings"
)

// MarkerError is returned when a marker call is malformed (missing or dynamic name, missing expression)
type MarkerError struct {
	File       string
	Line       int
	Marker     string
	Message    string
	Suggestion string
}

func (e *MarkerError) Error() string {
	location := fmt.Sprintf("line %d", e.Line)
	if e.File != "" {
		location = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	msg := fmt.Sprintf("%s: invalid %s call: %s", location, e.Marker, e.Message)
	if e.Suggestion != "" {
		msg += "; suggestion: " + e.Suggestion
	}
	return msg
}

// ParseError is returned when a source file cannot be parsed
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("failed to parse %s", e.File)
	if e.Line > 0 {
		msg += fmt.Sprintf(" (syntax error near line %d)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WorkflowNotFoundError is returned when a referenced workflow cannot be resolved
type WorkflowNotFoundError struct {
	Name     string
	Referrer string
	Searched []string
}

func (e *WorkflowNotFoundError) Error() string {
	msg := fmt.Sprintf("workflow %q not found", e.Name)
	if e.Referrer != "" {
		msg += fmt.Sprintf(" (referenced from %s)", e.Referrer)
	}
	return msg + fmt.Sprintf(", searched: [%s]", strings.Join(e.Searched, ", "))
}

// Factor is one multiplicand of a path count
type Factor struct {
	Name  string
	Count *big.Int
}

// PathExplosionError is returned before generation when path count exceeds the ceiling
type PathExplosionError struct {
	Formula string
	Count   *big.Int
	Limit   int
	Factors []Factor
}

func (e *PathExplosionError) Error() string {
	return fmt.Sprintf("too many paths: %s exceeds limit %d; reduce branch points or use reference expansion", e.Formula, e.Limit)
}

// NewBranchExplosionError creates an error for 2^N paths
func NewBranchExplosionError(branches int, count *big.Int, limit int) *PathExplosionError {
	return &PathExplosionError{
		Formula: fmt.Sprintf("2^%d = %s", branches, count.String()),
		Count:   count,
		Limit:   limit,
	}
}

// NewProductExplosionError creates an error listing each factor of an inline expansion
func NewProductExplosionError(factors []Factor, count *big.Int, limit int) *PathExplosionError {
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		parts = append(parts, fmt.Sprintf("%s(%s)", f.Name, f.Count.String()))
	}
	return &PathExplosionError{
		Formula: fmt.Sprintf("%s = %s", strings.Join(parts, " × "), count.String()),
		Count:   count,
		Limit:   limit,
		Factors: factors,
	}
}

// TooManyDecisionsError is returned when branch point count exceeds the decision ceiling
type TooManyDecisionsError struct {
	Workflow string
	Count    int
	Limit    int
}

func (e *TooManyDecisionsError) Error() string {
	return fmt.Sprintf("workflow %s has %d branch points, limit is %d; split the workflow or raise the limit", e.Workflow, e.Count, e.Limit)
}
