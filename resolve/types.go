package resolve

import (
	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
)

// Class is a class with every constant pool index replaced by its value.
// Other classes are referenced by name only.
type Class struct {
	Name         string
	Super        string // "" for the root class
	SourceFile   string
	Interfaces   []string
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute
	Access       classfile.AccessFlags
	MajorVersion uint16
	MinorVersion uint16
}

// Field is a resolved field.
type Field struct {
	Descriptor *descriptor.FieldDescriptor
	Name       string
	Attributes []Attribute
	Access     classfile.AccessFlags
}

// Method is a resolved method.
type Method struct {
	Descriptor *descriptor.MethodDescriptor
	Name       string
	Attributes []Attribute
	Access     classfile.AccessFlags
}

// Code returns the method body, if any.
func (m *Method) Code() (*Code, bool) {
	for _, a := range m.Attributes {
		if c, ok := a.(*Code); ok {
			return c, true
		}
	}
	return nil, false
}

// ConstantValue returns the initial value of a static final field.
func (f *Field) ConstantValue() (*Literal, bool) {
	for _, a := range f.Attributes {
		if cv, ok := a.(*ConstantValue); ok {
			return &cv.Value, true
		}
	}
	return nil, false
}

// Attribute is a resolved attribute.
type Attribute interface {
	AttributeName() string
}

// Code is a resolved method body.
type Code struct {
	Instructions []Instruction
	Handlers     []ExceptionHandler
	Attributes   []Attribute
	MaxStack     uint16
	MaxLocals    uint16
}

// Instruction pairs a decoded instruction with the constant it references.
// Ref is nil for instructions without a pool operand.
type Instruction struct {
	Ref Ref
	bytecode.Instruction
}

// ExceptionHandler is a resolved exception table row. CatchType is "" for
// handlers that catch everything.
type ExceptionHandler struct {
	CatchType string
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
}

// LineNumberTable maps code offsets to source lines.
type LineNumberTable struct {
	Entries []classfile.LineNumber
}

// SourceFile names the source the class was compiled from.
type SourceFile struct {
	Name string
}

// ConstantValue is the initial value of a constant field.
type ConstantValue struct {
	Value Literal
}

// LocalVariable is a resolved local variable table row.
type LocalVariable struct {
	Descriptor *descriptor.FieldDescriptor
	Name       string
	StartPC    uint16
	Length     uint16
	Index      uint16
}

// LocalVariableTable describes named locals for debuggers.
type LocalVariableTable struct {
	Vars []LocalVariable
}

// Exceptions lists the checked exceptions a method declares.
type Exceptions struct {
	Classes []string
}

// Signature holds a generic signature string.
type Signature struct {
	Value string
}

// InnerClass is a resolved inner class entry. Empty strings mean absent.
type InnerClass struct {
	Inner  string
	Outer  string
	Name   string
	Access classfile.AccessFlags
}

// InnerClasses lists nested class relationships.
type InnerClasses struct {
	Classes []InnerClass
}

// BootstrapMethod is a resolved bootstrap method specifier.
type BootstrapMethod struct {
	Handle    MethodHandleRef
	Arguments []Ref
}

// BootstrapMethods holds the bootstrap methods of invokedynamic call sites.
type BootstrapMethods struct {
	Methods []BootstrapMethod
}

// Deprecated marks a deprecated element.
type Deprecated struct{}

// Synthetic marks a compiler-generated element.
type Synthetic struct{}

func (*Code) AttributeName() string               { return classfile.AttrCode }
func (*LineNumberTable) AttributeName() string    { return classfile.AttrLineNumberTable }
func (*SourceFile) AttributeName() string         { return classfile.AttrSourceFile }
func (*ConstantValue) AttributeName() string      { return classfile.AttrConstantValue }
func (*LocalVariableTable) AttributeName() string { return classfile.AttrLocalVariableTable }
func (*Exceptions) AttributeName() string         { return classfile.AttrExceptions }
func (*Signature) AttributeName() string          { return classfile.AttrSignature }
func (*InnerClasses) AttributeName() string       { return classfile.AttrInnerClasses }
func (*BootstrapMethods) AttributeName() string   { return classfile.AttrBootstrapMethods }
func (*Deprecated) AttributeName() string         { return classfile.AttrDeprecated }
func (*Synthetic) AttributeName() string          { return classfile.AttrSynthetic }
