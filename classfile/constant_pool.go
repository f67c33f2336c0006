package classfile

import (
	"fmt"
	"math"

	"github.com/wippyai/jaot/errors"
)

// Constant is one constant pool entry.
type Constant interface {
	Tag() Tag
}

// ConstantUTF8 holds the raw (modified UTF-8) bytes of a string constant.
type ConstantUTF8 struct {
	Value string
}

// ConstantInteger is a 32-bit integer literal.
type ConstantInteger struct {
	Value int32
}

// ConstantFloat keeps the raw IEEE 754 bits so NaN payloads survive re-encoding.
type ConstantFloat struct {
	Bits uint32
}

// ConstantLong is stored as two 32-bit halves and takes two pool slots.
type ConstantLong struct {
	High uint32
	Low  uint32
}

// ConstantDouble is stored as two 32-bit halves and takes two pool slots.
type ConstantDouble struct {
	High uint32
	Low  uint32
}

// ConstantClass names a class or array type.
type ConstantClass struct {
	NameIndex uint16
}

// ConstantString is a java.lang.String literal.
type ConstantString struct {
	StringIndex uint16
}

// ConstantFieldRef references a field.
type ConstantFieldRef struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// ConstantMethodRef references a class method.
type ConstantMethodRef struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// ConstantInterfaceMethodRef references an interface method.
type ConstantInterfaceMethodRef struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

// ConstantNameAndType pairs a member name with its descriptor.
type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

// ConstantMethodHandle references a field or method by kind.
type ConstantMethodHandle struct {
	ReferenceIndex uint16
	ReferenceKind  uint8
}

// ConstantMethodType holds a method descriptor.
type ConstantMethodType struct {
	DescriptorIndex uint16
}

// ConstantDynamic is a dynamically computed constant.
type ConstantDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

// ConstantInvokeDynamic is an invokedynamic call site.
type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

// ConstantModule names a module.
type ConstantModule struct {
	NameIndex uint16
}

// ConstantPackage names a package.
type ConstantPackage struct {
	NameIndex uint16
}

func (ConstantUTF8) Tag() Tag               { return TagUTF8 }
func (ConstantInteger) Tag() Tag            { return TagInteger }
func (ConstantFloat) Tag() Tag              { return TagFloat }
func (ConstantLong) Tag() Tag               { return TagLong }
func (ConstantDouble) Tag() Tag             { return TagDouble }
func (ConstantClass) Tag() Tag              { return TagClass }
func (ConstantString) Tag() Tag             { return TagString }
func (ConstantFieldRef) Tag() Tag           { return TagFieldRef }
func (ConstantMethodRef) Tag() Tag          { return TagMethodRef }
func (ConstantInterfaceMethodRef) Tag() Tag { return TagInterfaceMethodRef }
func (ConstantNameAndType) Tag() Tag        { return TagNameAndType }
func (ConstantMethodHandle) Tag() Tag       { return TagMethodHandle }
func (ConstantMethodType) Tag() Tag         { return TagMethodType }
func (ConstantDynamic) Tag() Tag            { return TagDynamic }
func (ConstantInvokeDynamic) Tag() Tag      { return TagInvokeDynamic }
func (ConstantModule) Tag() Tag             { return TagModule }
func (ConstantPackage) Tag() Tag            { return TagPackage }

// Float returns the literal value.
func (c ConstantFloat) Float() float32 { return math.Float32frombits(c.Bits) }

// Int64 returns the literal value.
func (c ConstantLong) Int64() int64 { return int64(uint64(c.High)<<32 | uint64(c.Low)) }

// Float64 returns the literal value.
func (c ConstantDouble) Float64() float64 {
	return math.Float64frombits(uint64(c.High)<<32 | uint64(c.Low))
}

// MemberRef is implemented by the three member reference entries.
type MemberRef interface {
	Constant
	Indices() (classIndex, nameAndTypeIndex uint16)
}

func (c ConstantFieldRef) Indices() (uint16, uint16)  { return c.ClassIndex, c.NameAndTypeIndex }
func (c ConstantMethodRef) Indices() (uint16, uint16) { return c.ClassIndex, c.NameAndTypeIndex }
func (c ConstantInterfaceMethodRef) Indices() (uint16, uint16) {
	return c.ClassIndex, c.NameAndTypeIndex
}

// Slots returns the number of pool indices an entry occupies.
func Slots(c Constant) int {
	switch c.Tag() {
	case TagLong, TagDouble:
		return 2
	}
	return 1
}

// ConstantPool is a 1-indexed constant table. Entries[0] is always nil, as is
// the slot following every Long and Double entry.
type ConstantPool struct {
	Entries []Constant
}

// Count returns the constant_pool_count value: one more than the highest index.
func (p *ConstantPool) Count() int {
	if len(p.Entries) == 0 {
		return 1
	}
	return len(p.Entries)
}

// Get returns the entry at index i.
func (p *ConstantPool) Get(i uint16) (Constant, error) {
	path := []string{"constant_pool", "#" + fmt.Sprint(i)}
	if i == 0 {
		return nil, errors.NilPointer(errors.PhaseResolve, path, "constant pool slot 0")
	}
	if int(i) >= len(p.Entries) {
		return nil, errors.OutOfBounds(errors.PhaseResolve, path, int(i), len(p.Entries))
	}
	c := p.Entries[i]
	if c == nil {
		return nil, errors.NilPointer(errors.PhaseResolve, path, fmt.Sprintf("constant pool slot %d", i))
	}
	return c, nil
}

// UTF8 returns the string stored at a Utf8 entry.
func (p *ConstantPool) UTF8(i uint16) (string, error) {
	c, err := p.Get(i)
	if err != nil {
		return "", err
	}
	u, ok := c.(ConstantUTF8)
	if !ok {
		return "", mismatch(i, TagUTF8, c)
	}
	return u.Value, nil
}

// ClassName returns the name referenced by a Class entry.
func (p *ConstantPool) ClassName(i uint16) (string, error) {
	c, err := p.Get(i)
	if err != nil {
		return "", err
	}
	cl, ok := c.(ConstantClass)
	if !ok {
		return "", mismatch(i, TagClass, c)
	}
	return p.UTF8(cl.NameIndex)
}

// NameAndType returns the member name and descriptor of a NameAndType entry.
func (p *ConstantPool) NameAndType(i uint16) (name, descriptor string, err error) {
	c, err := p.Get(i)
	if err != nil {
		return "", "", err
	}
	nt, ok := c.(ConstantNameAndType)
	if !ok {
		return "", "", mismatch(i, TagNameAndType, c)
	}
	if name, err = p.UTF8(nt.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = p.UTF8(nt.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// Member returns the owner class, name and descriptor of a field or method
// reference entry.
func (p *ConstantPool) Member(i uint16) (owner, name, descriptor string, err error) {
	c, err := p.Get(i)
	if err != nil {
		return "", "", "", err
	}
	ref, ok := c.(MemberRef)
	if !ok {
		return "", "", "", mismatch(i, TagMethodRef, c)
	}
	classIdx, natIdx := ref.Indices()
	if owner, err = p.ClassName(classIdx); err != nil {
		return "", "", "", err
	}
	if name, descriptor, err = p.NameAndType(natIdx); err != nil {
		return "", "", "", err
	}
	return owner, name, descriptor, nil
}

// Each calls fn for every occupied slot in index order.
func (p *ConstantPool) Each(fn func(i uint16, c Constant)) {
	for i := 1; i < len(p.Entries); i++ {
		if c := p.Entries[i]; c != nil {
			fn(uint16(i), c)
		}
	}
}

// Find returns the index of the first entry equal to c, or 0.
func (p *ConstantPool) Find(c Constant) uint16 {
	for i := 1; i < len(p.Entries); i++ {
		if p.Entries[i] == c {
			return uint16(i)
		}
	}
	return 0
}

func mismatch(i uint16, want Tag, got Constant) error {
	return errors.TypeMismatch(errors.PhaseResolve, []string{"constant_pool", "#" + fmt.Sprint(i)},
		want.String(), got.Tag().String())
}
