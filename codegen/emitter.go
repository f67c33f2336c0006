package codegen

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/resolve"
)

// DefaultHeader is the comment placed at the top of generated files.
const DefaultHeader = "Generated by jaot. Do not edit."

const prelude = `namespace jaot {
template <typename T>
struct JArray {
    int32_t length;
    T data[1];
};
} // namespace jaot`

// Lookup returns the resolved class for a binary class name.
type Lookup func(name string) (*resolve.Class, error)

// Emitter builds the source tree for a set of ordered classes.
type Emitter struct {
	// Header is the leading comment; DefaultHeader when empty.
	Header string
	// Disassemble adds the byte code of each method as comments.
	Disassemble bool
}

// Build creates a file that forward declares every class it mentions and
// then defines the classes of order, in order. Order must list
// dependencies before their dependents.
func (e *Emitter) Build(order []string, lookup Lookup) (*File, error) {
	if lookup == nil {
		return nil, errors.NilPointer(errors.PhaseCodegen, nil, "class lookup")
	}

	classes := make([]*resolve.Class, len(order))
	for i, name := range order {
		c, err := lookup(name)
		if err != nil {
			return nil, errors.WithClass(err, errors.PhaseCodegen, name)
		}
		classes[i] = c
	}

	header := e.Header
	if header == "" {
		header = DefaultHeader
	}
	f := &File{Header: header}
	if err := f.Add(
		&Include{Path: "cstdint", System: true},
		&Include{Path: "cmath", System: true},
		&Raw{Text: prelude},
	); err != nil {
		return nil, err
	}

	decls, err := forwardDecls(order, classes)
	if err != nil {
		return nil, err
	}
	if err := f.Add(decls...); err != nil {
		return nil, err
	}

	for _, c := range classes {
		ns, err := e.define(c)
		if err != nil {
			return nil, errors.WithClass(err, errors.PhaseCodegen, c.Name)
		}
		if err := f.Add(ns); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Render writes n to w.
func Render(n Node, w io.Writer) error {
	p := NewPrinter(w)
	if err := n.Render(p); err != nil {
		return err
	}
	return p.Err()
}

// forwardDecls declares the ordered classes and every class their members
// mention, grouped by package in first-seen order.
func forwardDecls(order []string, classes []*resolve.Class) ([]Node, error) {
	var names []string
	seen := map[string]bool{}
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	addType := func(d *descriptor.FieldDescriptor) {
		if d == nil {
			return
		}
		if n, ok := d.ClassReference(); ok {
			add(n)
		}
	}

	for _, n := range order {
		add(n)
	}
	for _, c := range classes {
		add(c.Super)
		for _, n := range c.Interfaces {
			add(n)
		}
		for _, f := range c.Fields {
			addType(f.Descriptor)
		}
		for _, m := range c.Methods {
			for i := range m.Descriptor.Args {
				addType(&m.Descriptor.Args[i])
			}
			addType(m.Descriptor.Return)
		}
	}

	var (
		out    []Node
		byPkg  = map[string]*Namespace{}
		pkgSeq []string
	)
	for _, name := range names {
		pkg, simple := SplitClassName(name)
		ns, ok := byPkg[pkg]
		if !ok {
			var err error
			if ns, err = NewNamespace(pkg); err != nil {
				return nil, err
			}
			byPkg[pkg] = ns
			pkgSeq = append(pkgSeq, pkg)
		}
		if err := ns.Add(&ForwardDecl{Name: Mangle(simple)}); err != nil {
			return nil, err
		}
	}
	for _, pkg := range pkgSeq {
		out = append(out, byPkg[pkg])
	}
	return out, nil
}

func (e *Emitter) define(c *resolve.Class) (*Namespace, error) {
	pkg, simple := SplitClassName(c.Name)
	ns, err := NewNamespace(pkg)
	if err != nil {
		return nil, err
	}

	isInterface := c.Access.Has(classfile.AccInterface)
	var bases []string
	if c.Super != "" && !isInterface {
		bases = append(bases, QualifiedName(c.Super))
	}
	for _, n := range c.Interfaces {
		bases = append(bases, QualifiedName(n))
	}

	cls, err := NewClass(Mangle(simple), bases...)
	if err != nil {
		return nil, err
	}
	if c.SourceFile != "" {
		if err := ns.Add(&Comment{Text: c.Name + " (" + c.SourceFile + ")"}); err != nil {
			return nil, err
		}
	}

	// Fields and methods share one C++ member namespace.
	methodNames := make(map[string]bool, len(c.Methods))
	for i := range c.Methods {
		methodNames[Mangle(c.Methods[i].Name)] = true
	}
	fieldNames := make(map[string]bool, len(c.Fields))

	public := &Section{Access: "public"}
	for i := range c.Fields {
		name := fieldName(c.Fields[i].Name, methodNames, fieldNames)
		nodes, err := field(&c.Fields[i], name)
		if err != nil {
			return nil, err
		}
		if err := public.Add(nodes...); err != nil {
			return nil, err
		}
	}

	used := map[string]int{}
	for i := range c.Methods {
		fn, err := e.method(&c.Methods[i], isInterface, used)
		if err != nil {
			return nil, errors.New(errors.PhaseCodegen, errors.KindInvalidConfig).
				Path("methods", c.Methods[i].Name).
				Cause(err).
				Detail("cannot emit method").
				Build()
		}
		if err := public.Add(fn); err != nil {
			return nil, err
		}
	}

	if len(public.Children()) > 0 {
		if err := cls.Add(public); err != nil {
			return nil, err
		}
	}
	if err := ns.Add(cls); err != nil {
		return nil, err
	}
	return ns, nil
}

// fieldName mangles a field name, adding an _F suffix when a method or an
// earlier field already uses the identifier.
func fieldName(name string, methods, fields map[string]bool) string {
	out := Mangle(name)
	for n := 1; methods[out] || fields[out]; n++ {
		out = escape(name) + "_F"
		if n > 1 {
			out += strconv.Itoa(n)
		}
	}
	fields[out] = true
	return out
}

func field(f *resolve.Field, name string) ([]Node, error) {
	t, err := TypeOf(f.Descriptor)
	if err != nil {
		return nil, err
	}
	static := f.Access.Has(classfile.AccStatic)
	if static {
		if t, err = t.With(Static); err != nil {
			return nil, err
		}
	}

	fd, err := NewField(t, name, nil)
	if err != nil {
		return nil, err
	}

	cv, ok := f.ConstantValue()
	if !ok || !static || !f.Access.Has(classfile.AccFinal) {
		return []Node{fd}, nil
	}
	if s, isString := cv.Value.(string); isString {
		return []Node{&Comment{Text: f.Name + " = " + strconv.Quote(s)}, fd}, nil
	}
	lit, err := NewLiteral(constantFor(f.Descriptor.Type, cv.Value))
	if err != nil {
		return nil, err
	}
	fd.Init = lit
	fd.Constexpr = true
	return []Node{fd}, nil
}

// constantFor converts a ConstantValue to the Go type matching the field:
// int constants initialise boolean, char, byte and short fields too.
func constantFor(t descriptor.FieldType, v any) any {
	i, ok := v.(int32)
	if !ok {
		return v
	}
	switch t {
	case descriptor.Boolean:
		return i != 0
	case descriptor.Char:
		return uint16(i)
	case descriptor.Byte:
		return int8(i)
	case descriptor.Short:
		return int16(i)
	}
	return v
}

func (e *Emitter) method(m *resolve.Method, isInterface bool, used map[string]int) (*Function, error) {
	ret, err := ReturnTypeOf(m.Descriptor.Return)
	if err != nil {
		return nil, err
	}
	static := m.Access.Has(classfile.AccStatic)
	if static {
		if ret, err = ret.With(Static); err != nil {
			return nil, err
		}
	}

	names := paramNames(m)
	params := make([]Param, len(m.Descriptor.Args))
	for i := range m.Descriptor.Args {
		t, err := TypeOf(&m.Descriptor.Args[i])
		if err != nil {
			return nil, err
		}
		params[i] = Param{Type: t, Name: names[i]}
	}

	name := escape(m.Name)
	raw := m.Descriptor.Raw
	key := name + raw[:strings.IndexByte(raw, ')')+1]
	if n := used[key]; n > 0 {
		name += "_" + strconv.Itoa(n)
	}
	used[key]++
	name = unreserved(name)

	fn, err := NewFunction(ret, name, params...)
	if err != nil {
		return nil, err
	}

	fn.Virtual = !static && m.Name != "<init>" &&
		!m.Access.Has(classfile.AccPrivate) && !m.Access.Has(classfile.AccFinal)

	code, hasCode := m.Code()
	switch {
	case m.Access.Has(classfile.AccAbstract) || (isInterface && !static && !hasCode):
		fn.Pure = true
		return fn, nil
	case !hasCode:
		// native
		return fn, nil
	}

	body := &Block{}
	if e.Disassemble {
		if err := body.Add(disassembly(code)...); err != nil {
			return nil, err
		}
	}
	stmt, err := defaultReturn(m.Descriptor.Return)
	if err != nil {
		return nil, err
	}
	if err := body.Add(stmt); err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

// paramNames takes names from the local variable table when present.
func paramNames(m *resolve.Method) []string {
	names := make([]string, len(m.Descriptor.Args))
	slots := make([]uint16, len(m.Descriptor.Args))
	slot := uint16(0)
	if !m.Access.Has(classfile.AccStatic) {
		slot = 1
	}
	for i, a := range m.Descriptor.Args {
		names[i] = "arg" + strconv.Itoa(i)
		slots[i] = slot
		slot++
		if a.Type.IsWide() {
			slot++
		}
	}

	code, ok := m.Code()
	if !ok {
		return names
	}
	taken := map[string]bool{}
	for _, a := range code.Attributes {
		lvt, ok := a.(*resolve.LocalVariableTable)
		if !ok {
			continue
		}
		for _, v := range lvt.Vars {
			if v.StartPC != 0 {
				continue
			}
			for i, s := range slots {
				n := Mangle(v.Name)
				if s == v.Index && !taken[n] {
					names[i] = n
					taken[n] = true
				}
			}
		}
	}
	return names
}

func disassembly(code *resolve.Code) []Node {
	out := make([]Node, 0, len(code.Instructions)+len(code.Handlers))
	for _, in := range code.Instructions {
		text := in.Instruction.String()
		if in.Ref != nil {
			text = in.Opcode.String() + " " + in.Ref.String()
		}
		out = append(out, &Comment{Text: fmt.Sprintf("%4d: %s", in.Offset, text)})
	}
	for _, h := range code.Handlers {
		catch := h.CatchType
		if catch == "" {
			catch = "any"
		}
		out = append(out, &Comment{Text: fmt.Sprintf("try [%d, %d) catch %s -> %d", h.StartPC, h.EndPC, catch, h.HandlerPC)})
	}
	return out
}

func defaultReturn(ret *descriptor.FieldDescriptor) (*Statement, error) {
	kw := &Identifier{Name: "return"}
	if ret == nil {
		return NewStatement(kw)
	}
	var zero any
	switch ret.Type {
	case descriptor.Boolean:
		zero = false
	case descriptor.Byte:
		zero = int8(0)
	case descriptor.Char:
		zero = uint16(0)
	case descriptor.Short:
		zero = int16(0)
	case descriptor.Int:
		zero = int32(0)
	case descriptor.Long:
		zero = int64(0)
	case descriptor.Float:
		zero = float32(0)
	case descriptor.Double:
		zero = float64(0)
	}
	lit, err := NewLiteral(zero)
	if err != nil {
		return nil, err
	}
	return NewStatement(kw, lit)
}

var primitives = map[descriptor.FieldType]string{
	descriptor.Byte:    "int8_t",
	descriptor.Char:    "char16_t",
	descriptor.Double:  "double",
	descriptor.Float:   "float",
	descriptor.Int:     "int32_t",
	descriptor.Long:    "int64_t",
	descriptor.Short:   "int16_t",
	descriptor.Boolean: "bool",
}

// TypeOf maps a Java field type to its C++ type. Classes and arrays are
// pointers; arrays use jaot::JArray.
func TypeOf(d *descriptor.FieldDescriptor) (*TypeRef, error) {
	if d == nil {
		return nil, errors.NilPointer(errors.PhaseCodegen, nil, "descriptor")
	}
	if name, ok := primitives[d.Type]; ok {
		return NewTypeRef(name, 0)
	}
	switch d.Type {
	case descriptor.Class:
		return NewTypeRef(QualifiedName(d.ClassName), Pointer)
	case descriptor.Array:
		elem, err := TypeOf(d.Component)
		if err != nil {
			return nil, err
		}
		inner := elem.String()
		if strings.HasPrefix(inner, ":") {
			// "<:" would lex as a digraph.
			inner = " " + inner
		}
		return NewTypeRef("::jaot::JArray<"+inner+">", Pointer)
	}
	return nil, errors.TypeMismatch(errors.PhaseCodegen, nil, "field type", d.Raw)
}

// ReturnTypeOf is TypeOf with nil meaning void.
func ReturnTypeOf(d *descriptor.FieldDescriptor) (*TypeRef, error) {
	if d == nil {
		return NewTypeRef("void", 0)
	}
	return TypeOf(d)
}
