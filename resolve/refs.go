package resolve

import (
	"fmt"
	"strconv"

	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
)

// Ref is a resolved loadable constant or member reference.
type Ref interface {
	fmt.Stringer
	ref()
}

// ClassRef references a class or array type by name.
type ClassRef struct {
	Type *descriptor.FieldDescriptor
	Name string
}

// MemberRef references a field or method.
type MemberRef struct {
	Owner      string
	Name       string
	Descriptor string
	Kind       classfile.Tag
}

// Literal is a numeric or string constant. Value holds an int32, float32,
// int64, float64 or string according to Tag.
type Literal struct {
	Value any
	Tag   classfile.Tag
}

// MethodTypeRef is a method type constant.
type MethodTypeRef struct {
	Descriptor *descriptor.MethodDescriptor
}

// MethodHandleRef is a method handle constant.
type MethodHandleRef struct {
	Member MemberRef
	Kind   uint8
}

// DynamicRef is a dynamically computed constant or call site. Kind is
// TagDynamic or TagInvokeDynamic.
type DynamicRef struct {
	Name       string
	Descriptor string
	Bootstrap  uint16
	Kind       classfile.Tag
}

// NamedRef names a module or package.
type NamedRef struct {
	Name string
	Kind classfile.Tag
}

func (ClassRef) ref()        {}
func (MemberRef) ref()       {}
func (Literal) ref()         {}
func (MethodTypeRef) ref()   {}
func (MethodHandleRef) ref() {}
func (DynamicRef) ref()      {}
func (NamedRef) ref()        {}

func (r ClassRef) String() string { return r.Name }

func (r MemberRef) String() string {
	if r.Kind == classfile.TagFieldRef {
		return r.Owner + "." + r.Name + ":" + r.Descriptor
	}
	return r.Owner + "." + r.Name + r.Descriptor
}

func (r Literal) String() string {
	if s, ok := r.Value.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprint(r.Value)
}

func (r MethodTypeRef) String() string { return r.Descriptor.Raw }

var handleKinds = map[uint8]string{
	classfile.RefGetField:         "getField",
	classfile.RefGetStatic:        "getStatic",
	classfile.RefPutField:         "putField",
	classfile.RefPutStatic:        "putStatic",
	classfile.RefInvokeVirtual:    "invokeVirtual",
	classfile.RefInvokeStatic:     "invokeStatic",
	classfile.RefInvokeSpecial:    "invokeSpecial",
	classfile.RefNewInvokeSpecial: "newInvokeSpecial",
	classfile.RefInvokeInterface:  "invokeInterface",
}

func (r MethodHandleRef) String() string {
	return handleKinds[r.Kind] + " " + r.Member.String()
}

func (r DynamicRef) String() string {
	return fmt.Sprintf("#%d:%s:%s", r.Bootstrap, r.Name, r.Descriptor)
}

func (r NamedRef) String() string { return r.Name }

// ClassName returns the class a reference points at, for class and member
// references.
func ClassName(r Ref) (string, bool) {
	switch v := r.(type) {
	case ClassRef:
		return v.Name, true
	case MemberRef:
		return v.Owner, true
	case MethodHandleRef:
		return v.Member.Owner, true
	}
	return "", false
}
