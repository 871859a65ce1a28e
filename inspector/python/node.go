package python

import (
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Walk visits n and its named descendants in source order; returning false skips children
func Walk(n *sitter.Node, visit func(n *sitter.Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		Walk(n.NamedChild(i), visit)
	}
}

// Line returns 1-based start line of a node
func Line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

// EndLine returns 1-based end line of a node
func EndLine(n *sitter.Node) int {
	return int(n.EndPoint().Row) + 1
}

// Text returns node source text
func Text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

// Unwrap strips await and parentheses around an expression
func Unwrap(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Type() {
		case "await", "parenthesized_expression":
			if n.NamedChildCount() == 0 {
				return n
			}
			n = n.NamedChild(0)
		default:
			return n
		}
	}
	return n
}

// Negation strips not operators, reporting whether the expression was negated an odd number of times
func Negation(n *sitter.Node) (*sitter.Node, bool) {
	negated := false
	n = Unwrap(n)
	for n != nil && n.Type() == "not_operator" {
		negated = !negated
		n = Unwrap(n.ChildByFieldName("argument"))
	}
	return n, negated
}

// CalleeName returns the last dotted segment of the called function, i.e. "execute_activity" for workflow.execute_activity(...)
func CalleeName(call *sitter.Node, src []byte) string {
	if call == nil || call.Type() != "call" {
		return ""
	}
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Type() {
	case "identifier":
		return Text(fn, src)
	case "attribute":
		return Text(fn.ChildByFieldName("attribute"), src)
	}
	return ""
}

// Arguments holds positional and keyword arguments of a call
type Arguments struct {
	Positional []*sitter.Node
	Keywords   map[string]*sitter.Node
}

// Arg returns the positional argument at index, falling back to one of the keyword names
func (a *Arguments) Arg(index int, keywords ...string) *sitter.Node {
	if index >= 0 && index < len(a.Positional) {
		return a.Positional[index]
	}
	for _, keyword := range keywords {
		if n, ok := a.Keywords[keyword]; ok {
			return n
		}
	}
	return nil
}

// CallArguments extracts call arguments, splats are ignored
func CallArguments(call *sitter.Node, src []byte) *Arguments {
	ret := &Arguments{Keywords: map[string]*sitter.Node{}}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ret
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "comment", "list_splat", "dictionary_splat":
			continue
		case "keyword_argument":
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name != nil && value != nil {
				ret.Keywords[Text(name, src)] = value
			}
		default:
			ret.Positional = append(ret.Positional, arg)
		}
	}
	return ret
}

var stringPrefix = regexp.MustCompile(`^[rRbBuUfF]{0,2}`)
var interpolation = regexp.MustCompile(`\{[^{}]*\}`)

// StringLiteral returns the value of a plain (non f-string) string literal
func StringLiteral(n *sitter.Node, src []byte) (string, bool) {
	n = Unwrap(n)
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string":
		if IsFormatString(n, src) {
			return "", false
		}
		return stripQuotes(Text(n, src)), true
	case "concatenated_string":
		builder := strings.Builder{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			part, ok := StringLiteral(n.NamedChild(i), src)
			if !ok {
				return "", false
			}
			builder.WriteString(part)
		}
		return builder.String(), true
	}
	return "", false
}

// IsFormatString returns true for f-strings
func IsFormatString(n *sitter.Node, src []byte) bool {
	if n == nil || n.Type() != "string" {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "interpolation" {
			return true
		}
	}
	prefix := stringPrefix.FindString(Text(n, src))
	return strings.ContainsAny(prefix, "fF")
}

// StringPattern returns literal value, or for f-strings the template with interpolations replaced by {*}
func StringPattern(n *sitter.Node, src []byte) (string, bool) {
	if value, ok := StringLiteral(n, src); ok {
		return value, true
	}
	n = Unwrap(n)
	if n == nil || n.Type() != "string" {
		return "", false
	}
	return interpolation.ReplaceAllString(stripQuotes(Text(n, src)), "{*}"), true
}

func stripQuotes(text string) string {
	text = text[len(stringPrefix.FindString(text)):]
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if len(text) >= 2*len(quote) && strings.HasPrefix(text, quote) && strings.HasSuffix(text, quote) {
			return text[len(quote) : len(text)-len(quote)]
		}
	}
	return text
}

// ReferenceName returns a name for an identifier, attribute (last segment) or string literal reference
func ReferenceName(n *sitter.Node, src []byte) string {
	n = Unwrap(n)
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return Text(n, src)
	case "attribute":
		return Text(n.ChildByFieldName("attribute"), src)
	}
	if value, ok := StringLiteral(n, src); ok {
		return value
	}
	return Text(n, src)
}
