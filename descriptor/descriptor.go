package descriptor

import (
	"fmt"
	"strings"

	"github.com/wippyai/jaot/errors"
)

// FieldType is the kind of a single field descriptor.
type FieldType byte

const (
	Byte    FieldType = 'B'
	Char    FieldType = 'C'
	Double  FieldType = 'D'
	Float   FieldType = 'F'
	Int     FieldType = 'I'
	Long    FieldType = 'J'
	Class   FieldType = 'L'
	Short   FieldType = 'S'
	Boolean FieldType = 'Z'
	Array   FieldType = '['
)

var fieldTypeNames = map[FieldType]string{
	Byte:    "byte",
	Char:    "char",
	Double:  "double",
	Float:   "float",
	Int:     "int",
	Long:    "long",
	Class:   "class",
	Short:   "short",
	Boolean: "boolean",
	Array:   "array",
}

func (t FieldType) String() string {
	if s, ok := fieldTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("FieldType(%q)", byte(t))
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t FieldType) IsPrimitive() bool {
	return t != Class && t != Array && fieldTypeNames[t] != ""
}

// IsWide reports whether values of t take two local/stack slots.
func (t FieldType) IsWide() bool {
	return t == Long || t == Double
}

// FieldDescriptor is a parsed field descriptor.
type FieldDescriptor struct {
	// Component is the descriptor one [ deeper; set only for arrays.
	Component *FieldDescriptor
	Raw       string
	// ClassName is the binary class name; set only for Class.
	ClassName string
	Type      FieldType
}

// Underlying unwraps exactly one array dimension. It returns nil for non-arrays.
func (d *FieldDescriptor) Underlying() *FieldDescriptor {
	if d.Type != Array {
		return nil
	}
	return d.Component
}

// Element unwraps every array dimension and returns the non-array element.
func (d *FieldDescriptor) Element() *FieldDescriptor {
	e := d
	for e.Type == Array {
		e = e.Component
	}
	return e
}

// Dimensions returns the number of array dimensions.
func (d *FieldDescriptor) Dimensions() int {
	n := 0
	for e := d; e.Type == Array; e = e.Component {
		n++
	}
	return n
}

// ClassReference returns the class named by the descriptor or its array element.
// The second result is false for primitives and primitive arrays.
func (d *FieldDescriptor) ClassReference() (string, bool) {
	e := d.Element()
	if e.Type != Class {
		return "", false
	}
	return e.ClassName, true
}

func (d *FieldDescriptor) String() string {
	return d.Raw
}

// MethodDescriptor is a parsed method descriptor.
type MethodDescriptor struct {
	// Return is nil for void methods.
	Return *FieldDescriptor
	Raw    string
	Args   []FieldDescriptor
}

// IsVoid reports whether the method returns nothing.
func (m *MethodDescriptor) IsVoid() bool {
	return m.Return == nil
}

// ArgSlots returns the number of local variable slots the arguments take.
func (m *MethodDescriptor) ArgSlots() int {
	n := 0
	for i := range m.Args {
		if m.Args[i].Type.IsWide() {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func (m *MethodDescriptor) String() string {
	return m.Raw
}

// ParseField parses a complete field descriptor.
func ParseField(s string) (*FieldDescriptor, error) {
	if s == "" {
		return nil, malformed(s, "empty descriptor")
	}
	d, n, err := parseField(s, 0)
	if err != nil {
		return nil, err
	}
	if n != len(s) {
		return nil, malformed(s, fmt.Sprintf("trailing data at offset %d", n))
	}
	return d, nil
}

// ParseMethod parses a complete method descriptor.
func ParseMethod(s string) (*MethodDescriptor, error) {
	if s == "" {
		return nil, malformed(s, "empty descriptor")
	}
	if s[0] != '(' {
		return nil, malformed(s, "method descriptor must start with '('")
	}

	m := &MethodDescriptor{Raw: s}
	i := 1
	for {
		if i >= len(s) {
			return nil, malformed(s, "unterminated argument list")
		}
		if s[i] == ')' {
			i++
			break
		}
		if s[i] == 'V' {
			return nil, malformed(s, "void argument")
		}
		arg, n, err := parseField(s, i)
		if err != nil {
			return nil, err
		}
		m.Args = append(m.Args, *arg)
		i = n
	}

	if i >= len(s) {
		return nil, malformed(s, "missing return type")
	}
	if s[i] == 'V' {
		if i+1 != len(s) {
			return nil, malformed(s, fmt.Sprintf("trailing data at offset %d", i+1))
		}
		return m, nil
	}

	ret, n, err := parseField(s, i)
	if err != nil {
		return nil, err
	}
	if n != len(s) {
		return nil, malformed(s, fmt.Sprintf("trailing data at offset %d", n))
	}
	m.Return = ret
	return m, nil
}

// ParseClassName parses the name stored in a CONSTANT_Class entry. Array
// classes are stored as array descriptors; everything else is a binary name.
func ParseClassName(name string) (*FieldDescriptor, error) {
	if name == "" {
		return nil, malformed(name, "empty class name")
	}
	if name[0] == '[' {
		return ParseField(name)
	}
	if strings.ContainsAny(name, ";[") {
		return nil, malformed(name, "invalid character in class name")
	}
	return &FieldDescriptor{Raw: "L" + name + ";", Type: Class, ClassName: name}, nil
}

// parseField parses one field descriptor starting at s[start] and returns the
// offset just past it. Array prefixes are counted first and the chain is
// built from the element outwards, so deep arrays need no recursion.
func parseField(s string, start int) (*FieldDescriptor, int, error) {
	i := start
	for i < len(s) && s[i] == '[' {
		i++
	}
	dims := i - start
	if i >= len(s) {
		return nil, 0, malformed(s, "missing array element type")
	}

	elemStart := i
	var elem *FieldDescriptor
	switch c := FieldType(s[i]); c {
	case Byte, Char, Double, Float, Int, Long, Short, Boolean:
		i++
		elem = &FieldDescriptor{Raw: s[elemStart:i], Type: c}
	case Class:
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return nil, 0, malformed(s, "unterminated class name")
		}
		name := s[i+1 : i+end]
		if name == "" {
			return nil, 0, malformed(s, "empty class name")
		}
		i += end + 1
		elem = &FieldDescriptor{Raw: s[elemStart:i], Type: Class, ClassName: name}
	default:
		return nil, 0, malformed(s, fmt.Sprintf("unknown type character %q at offset %d", s[i], i))
	}

	d := elem
	for k := dims - 1; k >= 0; k-- {
		d = &FieldDescriptor{Raw: s[start+k : i], Type: Array, Component: d}
	}
	return d, i, nil
}

func malformed(s, detail string) error {
	return errors.New(errors.PhaseDescriptor, errors.KindInvalidData).
		Value(s).
		Detail("malformed descriptor %q: %s", s, detail).
		Build()
}
