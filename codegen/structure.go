package codegen

import (
	"strings"

	"github.com/wippyai/jaot/errors"
)

// File is a complete translation unit.
type File struct {
	Tree
	Header string
}

func (n *File) Render(p *Printer) error {
	if n.Header != "" {
		if err := (&Comment{Text: n.Header}).Render(p); err != nil {
			return err
		}
	}
	p.Line("#pragma once")
	for _, c := range n.children {
		p.Newline()
		if err := c.Render(p); err != nil {
			return err
		}
	}
	return p.Err()
}

// Namespace wraps its children in a C++17 nested namespace. An empty path
// renders the children at global scope.
type Namespace struct {
	Tree
	Path []string
}

// NewNamespace converts a slash separated package name such as java/lang
// into a namespace.
func NewNamespace(pkg string) (*Namespace, error) {
	if pkg == "" {
		return &Namespace{}, nil
	}
	parts := strings.Split(pkg, "/")
	for i, part := range parts {
		if part == "" {
			return nil, errors.InvalidConfig(errors.PhaseCodegen, "namespace", "empty segment in package "+pkg)
		}
		parts[i] = Mangle(part)
	}
	return &Namespace{Path: parts}, nil
}

// Name returns the C++ scope, for example java::lang.
func (n *Namespace) Name() string {
	return strings.Join(n.Path, "::")
}

func (n *Namespace) Render(p *Printer) error {
	if len(n.Path) == 0 {
		return n.Tree.Render(p)
	}
	p.Line("namespace %s {", n.Name())
	if err := n.Tree.Render(p); err != nil {
		return err
	}
	p.Line("} // namespace %s", n.Name())
	return p.Err()
}

// Section is an access specifier label followed by members.
type Section struct {
	Tree
	Access string
}

func (n *Section) Render(p *Printer) error {
	p.Dedent()
	p.Line("%s:", n.Access)
	p.Indent()
	return n.Tree.Render(p)
}

// Class is a struct definition. Children are usually Sections.
type Class struct {
	Tree
	Name  string
	Bases []string
}

// NewClass creates a struct definition deriving publicly from bases.
func NewClass(name string, bases ...string) (*Class, error) {
	if !validIdent(name) {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "name", "invalid class name "+name)
	}
	for _, b := range bases {
		if !validQualified(b) {
			return nil, errors.InvalidConfig(errors.PhaseCodegen, "bases", "invalid base class "+b)
		}
	}
	return &Class{Name: name, Bases: bases}, nil
}

func (n *Class) Render(p *Printer) error {
	p.Printf("struct %s", n.Name)
	for i, b := range n.Bases {
		if i == 0 {
			p.Write(" : ")
		} else {
			p.Write(", ")
		}
		p.Printf("public %s", b)
	}
	p.Line(" {")
	p.Indent()
	if err := n.Tree.Render(p); err != nil {
		return err
	}
	p.Dedent()
	p.Line("};")
	return p.Err()
}

// Param is a function parameter.
type Param struct {
	Type *TypeRef
	Name string
}

// Function is a function declaration, or a definition when Body is set.
type Function struct {
	Return  *TypeRef
	Body    *Block
	Name    string
	Params  []Param
	Virtual bool
	Pure    bool
}

// NewFunction validates a function signature.
func NewFunction(ret *TypeRef, name string, params ...Param) (*Function, error) {
	if ret == nil {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "return", "function "+name+" has no return type")
	}
	if !validIdent(name) {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "name", "invalid function name "+name)
	}
	for _, prm := range params {
		if prm.Type == nil || !validIdent(prm.Name) {
			return nil, errors.InvalidConfig(errors.PhaseCodegen, "params", "invalid parameter in "+name)
		}
	}
	return &Function{Return: ret, Name: name, Params: params}, nil
}

func (n *Function) Children() []Node {
	if n.Body == nil {
		return nil
	}
	return []Node{n.Body}
}

func (n *Function) Render(p *Printer) error {
	if n.Virtual || n.Pure {
		p.Write("virtual ")
	}
	p.Printf("%s %s(", n.Return.String(), n.Name)
	for i, prm := range n.Params {
		if i > 0 {
			p.Write(", ")
		}
		p.Printf("%s %s", prm.Type.String(), prm.Name)
	}
	p.Write(")")
	switch {
	case n.Pure:
		p.Line(" = 0;")
	case n.Body == nil:
		p.Line(";")
	default:
		p.Line(" {")
		if err := n.Body.Render(p); err != nil {
			return err
		}
		p.Line("}")
	}
	return p.Err()
}

// Block renders its children one level deeper.
type Block struct {
	Tree
}

func (n *Block) Render(p *Printer) error {
	p.Indent()
	err := n.Tree.Render(p)
	p.Dedent()
	return err
}
