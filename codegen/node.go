package codegen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/jaot/errors"
)

// Node is an element of the generated source tree.
type Node interface {
	Render(p *Printer) error
	Children() []Node
}

// Tree owns an ordered list of child nodes and renders them in order.
type Tree struct {
	children []Node
}

// Add appends children. A nil child is rejected and nothing is added.
func (t *Tree) Add(nodes ...Node) error {
	for i, n := range nodes {
		if isNil(n) {
			return errors.New(errors.PhaseCodegen, errors.KindInvalidConfig).
				Path("children", strconv.Itoa(len(t.children)+i)).
				Detail("nil child node").
				Build()
		}
	}
	t.children = append(t.children, nodes...)
	return nil
}

// Children returns the child nodes.
func (t *Tree) Children() []Node {
	return t.children
}

// Render renders every child in order.
func (t *Tree) Render(p *Printer) error {
	for _, c := range t.children {
		if err := c.Render(p); err != nil {
			return err
		}
	}
	return p.Err()
}

// isNil catches typed nil pointers stored in the interface as well.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *File:
		return v == nil
	case *Namespace:
		return v == nil
	case *Class:
		return v == nil
	case *Section:
		return v == nil
	case *Function:
		return v == nil
	case *Block:
		return v == nil
	case *Statement:
		return v == nil
	case *TypeRef:
		return v == nil
	case *Literal:
		return v == nil
	case *Identifier:
		return v == nil
	case *Field:
		return v == nil
	}
	return false
}

// Include is an #include directive.
type Include struct {
	Path   string
	System bool
}

func (n *Include) Render(p *Printer) error {
	if n.System {
		p.Line("#include <%s>", n.Path)
	} else {
		p.Line("#include %q", n.Path)
	}
	return p.Err()
}

func (n *Include) Children() []Node { return nil }

// ForwardDecl declares a class without defining it.
type ForwardDecl struct {
	Name string
}

func (n *ForwardDecl) Render(p *Printer) error {
	p.Line("struct %s;", n.Name)
	return p.Err()
}

func (n *ForwardDecl) Children() []Node { return nil }

// Comment is a line comment. Multi-line text yields one comment per line.
type Comment struct {
	Text string
}

func (n *Comment) Render(p *Printer) error {
	for _, line := range strings.Split(n.Text, "\n") {
		if line == "" {
			p.Line("//")
		} else {
			p.Line("// %s", line)
		}
	}
	return p.Err()
}

func (n *Comment) Children() []Node { return nil }

// Raw is verbatim source, one indented line per input line.
type Raw struct {
	Text string
}

func (n *Raw) Render(p *Printer) error {
	for _, line := range strings.Split(strings.TrimSuffix(n.Text, "\n"), "\n") {
		p.Line("%s", line)
	}
	return p.Err()
}

func (n *Raw) Children() []Node { return nil }

// Identifier is a possibly qualified name such as ::java::lang::Object.
type Identifier struct {
	Name string
}

// NewIdentifier validates name as a C++ identifier with optional :: scopes.
func NewIdentifier(name string) (*Identifier, error) {
	if !validQualified(name) {
		return nil, errors.New(errors.PhaseCodegen, errors.KindInvalidConfig).
			Value(name).
			Detail("invalid identifier %q", name).
			Build()
	}
	return &Identifier{Name: name}, nil
}

func (n *Identifier) Render(p *Printer) error {
	p.Write(n.Name)
	return p.Err()
}

func (n *Identifier) Children() []Node { return nil }

func validQualified(name string) bool {
	name = strings.TrimPrefix(name, "::")
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, "::") {
		if !validIdent(part) {
			return false
		}
	}
	return true
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Literal is a constant expression. Value is nil, a bool, an integer, a
// float or a string. Strings render as char16_t literals.
type Literal struct {
	Value any
	text  string
}

// NewLiteral formats v as a C++ literal.
func NewLiteral(v any) (*Literal, error) {
	s, ok := formatLiteral(v)
	if !ok {
		return nil, errors.New(errors.PhaseCodegen, errors.KindInvalidConfig).
			Value(v).
			Detail("unsupported literal type %T", v).
			Build()
	}
	return &Literal{Value: v, text: s}, nil
}

func (n *Literal) String() string { return n.text }

func (n *Literal) Render(p *Printer) error {
	p.Write(n.text)
	return p.Err()
}

func (n *Literal) Children() []Node { return nil }

func formatLiteral(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "nullptr", true
	case bool:
		return strconv.FormatBool(x), true
	case int:
		return formatInt(int64(x)), true
	case int8:
		return strconv.Itoa(int(x)), true
	case int16:
		return strconv.Itoa(int(x)), true
	case int32:
		if x == math.MinInt32 {
			return "INT32_MIN", true
		}
		return strconv.Itoa(int(x)), true
	case int64:
		return formatInt(x), true
	case uint16:
		return "u'" + escapeUnit(rune(x)) + "'", true
	case float32:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return formatFloat(f, 32), true
		}
		return formatFloat(f, 32) + "f", true
	case float64:
		return formatFloat(x, 64), true
	case string:
		return quote16(x), true
	}
	return "", false
}

func formatInt(x int64) string {
	if x == math.MinInt64 {
		return "INT64_MIN"
	}
	return strconv.FormatInt(x, 10) + "LL"
}

func formatFloat(x float64, bits int) string {
	switch {
	case math.IsNaN(x):
		return "NAN"
	case math.IsInf(x, 1):
		return "INFINITY"
	case math.IsInf(x, -1):
		return "-INFINITY"
	}
	s := strconv.FormatFloat(x, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// quote16 renders s as a u"..." literal. Non-ASCII runes use universal
// character names.
func quote16(s string) string {
	var b strings.Builder
	b.WriteString(`u"`)
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		b.WriteString(escapeRune(r, '"'))
	}
	b.WriteByte('"')
	return b.String()
}

func escapeUnit(r rune) string {
	if r >= 0xd800 && r <= 0xdfff {
		return fmt.Sprintf(`\x%04x`, r)
	}
	return escapeRune(r, '\'')
}

func escapeRune(r rune, quote rune) string {
	switch r {
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\r':
		return `\r`
	case '\t':
		return `\t`
	case quote:
		return `\` + string(quote)
	}
	switch {
	case r < 0x20 || r == 0x7f:
		return fmt.Sprintf(`\%03o`, r)
	case r < 0x80:
		return string(r)
	case r > 0xffff:
		return fmt.Sprintf(`\U%08x`, r)
	}
	return fmt.Sprintf(`\u%04x`, r)
}

// Statement renders its inline children separated by spaces and terminated
// by a semicolon.
type Statement struct {
	Tree
}

// NewStatement builds a statement from inline parts.
func NewStatement(parts ...Node) (*Statement, error) {
	s := &Statement{}
	if err := s.Add(parts...); err != nil {
		return nil, err
	}
	return s, nil
}

func (n *Statement) Render(p *Printer) error {
	for i, c := range n.children {
		if i > 0 {
			p.Write(" ")
		}
		if err := c.Render(p); err != nil {
			return err
		}
	}
	p.Line(";")
	return p.Err()
}

// Field is a data member declaration with an optional initializer.
type Field struct {
	Type      *TypeRef
	Init      Node
	Name      string
	Constexpr bool
}

// NewField declares a member, validating its name.
func NewField(t *TypeRef, name string, init Node) (*Field, error) {
	if t == nil {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "type", "field "+name+" has no type")
	}
	if !validIdent(name) {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "name", fmt.Sprintf("invalid field name %q", name))
	}
	return &Field{Type: t, Name: name, Init: init}, nil
}

func (n *Field) Render(p *Printer) error {
	t := *n.Type
	if n.Constexpr {
		if t.Flags.IsStatic() {
			p.Write("static ")
		}
		p.Write("constexpr ")
		t.Flags &^= Static
	}
	p.Printf("%s %s", t.String(), n.Name)
	if n.Init != nil {
		p.Write(" = ")
		if err := n.Init.Render(p); err != nil {
			return err
		}
	}
	p.Line(";")
	return p.Err()
}

func (n *Field) Children() []Node {
	if n.Init == nil {
		return nil
	}
	return []Node{n.Init}
}
