package python

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/viant/temporalgraph/analyzer/workflow"
)

// Class represents a @workflow.defn decorated class
type Class struct {
	Name      string
	DefnName  string // registered workflow name, defaults to class name
	Line      int
	Node      *sitter.Node // class_definition
	RunMethod string
	Run       *sitter.Node // function_definition decorated with @workflow.run
}

// Body returns the run method body, or the class body if no run method was declared
func (c *Class) Body() *sitter.Node {
	if c.Run != nil {
		if body := c.Run.ChildByFieldName("body"); body != nil {
			return body
		}
	}
	return c.Node.ChildByFieldName("body")
}

// Matches returns true if name refers to this workflow
func (c *Class) Matches(name string) bool {
	return c.Name == name || c.DefnName == name
}

// Import represents a name bound by an import statement
type Import struct {
	LocalName string
	Module    string // dotted module path without leading dots
	Name      string // imported name, empty for "import a.b"
	Level     int    // number of leading dots for relative imports
	Line      int
}

// Module represents a parsed python source file
type Module struct {
	Path    string
	Src     []byte
	Root    *sitter.Node
	Classes []*Class
	Imports []*Import
	tree    *sitter.Tree
}

// Parse parses python source and indexes workflow classes and imports
func Parse(ctx context.Context, path string, src []byte) (*Module, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, &workflow.ParseError{File: path, Err: err}
	}
	ret := &Module{Path: path, Src: src, Root: tree.RootNode(), tree: tree}
	ret.index()
	return ret, nil
}

// SyntaxError returns a parse error locating the first syntax error, or nil
func (m *Module) SyntaxError() error {
	if !m.Root.HasError() {
		return nil
	}
	var find func(n *sitter.Node) int
	find = func(n *sitter.Node) int {
		if n.IsError() || n.IsMissing() {
			return Line(n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child == nil || !(child.HasError() || child.IsMissing()) {
				continue
			}
			if line := find(child); line > 0 {
				return line
			}
		}
		return 0
	}
	line := find(m.Root)
	return &workflow.ParseError{File: m.Path, Line: line, Err: fmt.Errorf("invalid python syntax")}
}

// Workflow returns the workflow class matching name; empty name returns the first workflow class
func (m *Module) Workflow(name string) *Class {
	for _, class := range m.Classes {
		if name == "" || class.Matches(name) {
			return class
		}
	}
	return nil
}

// Import returns the import binding localName
func (m *Module) Import(localName string) *Import {
	for _, imp := range m.Imports {
		if imp.LocalName == localName {
			return imp
		}
	}
	return nil
}

func (m *Module) index() {
	for i := 0; i < int(m.Root.NamedChildCount()); i++ {
		child := m.Root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			m.Imports = append(m.Imports, importStatement(child, m.Src)...)
		case "import_from_statement":
			m.Imports = append(m.Imports, importFromStatement(child, m.Src)...)
		case "decorated_definition":
			if class := m.workflowClass(child); class != nil {
				m.Classes = append(m.Classes, class)
			}
		}
	}
}

func (m *Module) workflowClass(decorated *sitter.Node) *Class {
	definition := decorated.ChildByFieldName("definition")
	if definition == nil || definition.Type() != "class_definition" {
		return nil
	}
	var ret *Class
	for _, decorator := range decorators(decorated) {
		name, call := decoratorName(decorator, m.Src)
		if name != "defn" {
			continue
		}
		className := Text(definition.ChildByFieldName("name"), m.Src)
		ret = &Class{Name: className, DefnName: className, Line: Line(definition), Node: definition}
		if call != nil {
			if value, ok := StringLiteral(CallArguments(call, m.Src).Arg(-1, "name"), m.Src); ok {
				ret.DefnName = value
			}
		}
	}
	if ret == nil {
		return nil
	}
	ret.Run, ret.RunMethod = runMethod(definition, m.Src)
	return ret
}

func runMethod(class *sitter.Node, src []byte) (*sitter.Node, string) {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil, ""
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
		for _, decorator := range decorators(child) {
			if name, _ := decoratorName(decorator, src); name == "run" {
				return fn, Text(fn.ChildByFieldName("name"), src)
			}
		}
	}
	return nil, ""
}

func decorators(decorated *sitter.Node) []*sitter.Node {
	var ret []*sitter.Node
	for i := 0; i < int(decorated.NamedChildCount()); i++ {
		if child := decorated.NamedChild(i); child.Type() == "decorator" {
			ret = append(ret, child)
		}
	}
	return ret
}

// decoratorName returns the last dotted segment of a decorator and its call node when called with arguments
func decoratorName(decorator *sitter.Node, src []byte) (string, *sitter.Node) {
	if decorator.NamedChildCount() == 0 {
		return "", nil
	}
	expr := decorator.NamedChild(0)
	var call *sitter.Node
	if expr.Type() == "call" {
		call = expr
		expr = expr.ChildByFieldName("function")
	}
	switch expr.Type() {
	case "identifier":
		return Text(expr, src), call
	case "attribute":
		return Text(expr.ChildByFieldName("attribute"), src), call
	}
	return "", call
}

func importStatement(n *sitter.Node, src []byte) []*Import {
	var ret []*Import
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			module := Text(child, src)
			ret = append(ret, &Import{LocalName: module, Module: module, Line: Line(n)})
		case "aliased_import":
			module := Text(child.ChildByFieldName("name"), src)
			ret = append(ret, &Import{LocalName: Text(child.ChildByFieldName("alias"), src), Module: module, Line: Line(n)})
		}
	}
	return ret
}

func importFromStatement(n *sitter.Node, src []byte) []*Import {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	module, level := Text(moduleNode, src), 0
	if moduleNode.Type() == "relative_import" {
		module = ""
		for i := 0; i < int(moduleNode.NamedChildCount()); i++ {
			child := moduleNode.NamedChild(i)
			switch child.Type() {
			case "import_prefix":
				level = strings.Count(Text(child, src), ".")
			case "dotted_name":
				module = Text(child, src)
			}
		}
	}
	var ret []*Import
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.StartByte() == moduleNode.StartByte() {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			name := Text(child, src)
			ret = append(ret, &Import{LocalName: name, Module: module, Name: name, Level: level, Line: Line(n)})
		case "aliased_import":
			name := Text(child.ChildByFieldName("name"), src)
			ret = append(ret, &Import{LocalName: Text(child.ChildByFieldName("alias"), src), Module: module, Name: name, Level: level, Line: Line(n)})
		}
	}
	return ret
}
