package codegen

import (
	"strings"

	"github.com/wippyai/jaot/errors"
)

// TypeFlags qualify a type reference.
type TypeFlags uint8

const (
	Const TypeFlags = 1 << iota
	Pointer
	ConstPointer
	Reference
	Static
)

func (f TypeFlags) IsConst() bool        { return f&Const != 0 }
func (f TypeFlags) IsPointer() bool      { return f&Pointer != 0 }
func (f TypeFlags) IsConstPointer() bool { return f&ConstPointer != 0 }
func (f TypeFlags) IsReference() bool    { return f&Reference != 0 }
func (f TypeFlags) IsStatic() bool       { return f&Static != 0 }

// Validate rejects combinations that do not describe a single type.
func (f TypeFlags) Validate() error {
	switch {
	case f.IsPointer() && f.IsConstPointer():
		return errors.InvalidConfig(errors.PhaseCodegen, "flags", "type is both pointer and const pointer")
	case f.IsReference() && (f.IsPointer() || f.IsConstPointer()):
		return errors.InvalidConfig(errors.PhaseCodegen, "flags", "type is both reference and pointer")
	case f >= Static<<1:
		return errors.InvalidConfig(errors.PhaseCodegen, "flags", "unknown type flag bits")
	}
	return nil
}

func (f TypeFlags) String() string {
	var parts []string
	for _, n := range []struct {
		flag TypeFlags
		name string
	}{{Const, "const"}, {Pointer, "pointer"}, {ConstPointer, "const_pointer"}, {Reference, "reference"}, {Static, "static"}} {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// TypeRef is a possibly qualified type such as "const int32_t&".
type TypeRef struct {
	Name  string
	Flags TypeFlags
}

// NewTypeRef creates a type reference, rejecting invalid flags.
func NewTypeRef(name string, flags TypeFlags) (*TypeRef, error) {
	if name == "" {
		return nil, errors.InvalidConfig(errors.PhaseCodegen, "type", "empty type name")
	}
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	return &TypeRef{Name: name, Flags: flags}, nil
}

// MustTypeRef is NewTypeRef for flags known to be valid.
func MustTypeRef(name string, flags TypeFlags) *TypeRef {
	t, err := NewTypeRef(name, flags)
	if err != nil {
		panic(err)
	}
	return t
}

// With returns a copy of t with extra flags set.
func (t *TypeRef) With(flags TypeFlags) (*TypeRef, error) {
	return NewTypeRef(t.Name, t.Flags|flags)
}

func (t *TypeRef) String() string {
	var b strings.Builder
	if t.Flags.IsStatic() {
		b.WriteString("static ")
	}
	if t.Flags.IsConst() {
		b.WriteString("const ")
	}
	b.WriteString(t.Name)
	switch {
	case t.Flags.IsPointer():
		b.WriteByte('*')
	case t.Flags.IsConstPointer():
		b.WriteString("* const")
	case t.Flags.IsReference():
		b.WriteByte('&')
	}
	return b.String()
}

func (t *TypeRef) Render(p *Printer) error {
	p.Write(t.String())
	return p.Err()
}

func (t *TypeRef) Children() []Node { return nil }
