package classfile

import (
	"math"
)

// PoolBuilder appends constant pool entries, reusing an existing index when
// an equal entry was already added.
type PoolBuilder struct {
	pool  *ConstantPool
	index map[Constant]uint16
}

// NewPoolBuilder creates an empty builder.
func NewPoolBuilder() *PoolBuilder {
	return &PoolBuilder{
		pool:  &ConstantPool{Entries: []Constant{nil}},
		index: make(map[Constant]uint16),
	}
}

// Pool returns the pool being built. Later additions remain visible.
func (b *PoolBuilder) Pool() *ConstantPool {
	return b.pool
}

// Add appends c, or returns the index of an equal entry.
func (b *PoolBuilder) Add(c Constant) uint16 {
	if idx, ok := b.index[c]; ok {
		return idx
	}
	idx := uint16(len(b.pool.Entries))
	b.pool.Entries = append(b.pool.Entries, c)
	if Slots(c) == 2 {
		b.pool.Entries = append(b.pool.Entries, nil)
	}
	b.index[c] = idx
	return idx
}

func (b *PoolBuilder) UTF8(s string) uint16 {
	return b.Add(ConstantUTF8{Value: s})
}

func (b *PoolBuilder) Integer(v int32) uint16 {
	return b.Add(ConstantInteger{Value: v})
}

func (b *PoolBuilder) Float(v float32) uint16 {
	return b.Add(ConstantFloat{Bits: math.Float32bits(v)})
}

func (b *PoolBuilder) Long(v int64) uint16 {
	return b.Add(ConstantLong{High: uint32(uint64(v) >> 32), Low: uint32(v)})
}

func (b *PoolBuilder) Double(v float64) uint16 {
	bits := math.Float64bits(v)
	return b.Add(ConstantDouble{High: uint32(bits >> 32), Low: uint32(bits)})
}

func (b *PoolBuilder) Class(name string) uint16 {
	return b.Add(ConstantClass{NameIndex: b.UTF8(name)})
}

func (b *PoolBuilder) String(s string) uint16 {
	return b.Add(ConstantString{StringIndex: b.UTF8(s)})
}

func (b *PoolBuilder) NameAndType(name, descriptor string) uint16 {
	return b.Add(ConstantNameAndType{NameIndex: b.UTF8(name), DescriptorIndex: b.UTF8(descriptor)})
}

func (b *PoolBuilder) FieldRef(owner, name, descriptor string) uint16 {
	return b.Add(ConstantFieldRef{ClassIndex: b.Class(owner), NameAndTypeIndex: b.NameAndType(name, descriptor)})
}

func (b *PoolBuilder) MethodRef(owner, name, descriptor string) uint16 {
	return b.Add(ConstantMethodRef{ClassIndex: b.Class(owner), NameAndTypeIndex: b.NameAndType(name, descriptor)})
}

func (b *PoolBuilder) InterfaceMethodRef(owner, name, descriptor string) uint16 {
	return b.Add(ConstantInterfaceMethodRef{ClassIndex: b.Class(owner), NameAndTypeIndex: b.NameAndType(name, descriptor)})
}

func (b *PoolBuilder) MethodHandle(kind uint8, ref uint16) uint16 {
	return b.Add(ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: ref})
}

func (b *PoolBuilder) MethodType(descriptor string) uint16 {
	return b.Add(ConstantMethodType{DescriptorIndex: b.UTF8(descriptor)})
}

func (b *PoolBuilder) InvokeDynamic(bootstrap uint16, name, descriptor string) uint16 {
	return b.Add(ConstantInvokeDynamic{BootstrapMethodAttrIndex: bootstrap, NameAndTypeIndex: b.NameAndType(name, descriptor)})
}

func (b *PoolBuilder) Dynamic(bootstrap uint16, name, descriptor string) uint16 {
	return b.Add(ConstantDynamic{BootstrapMethodAttrIndex: bootstrap, NameAndTypeIndex: b.NameAndType(name, descriptor)})
}

func (b *PoolBuilder) Module(name string) uint16 {
	return b.Add(ConstantModule{NameIndex: b.UTF8(name)})
}

func (b *PoolBuilder) Package(name string) uint16 {
	return b.Add(ConstantPackage{NameIndex: b.UTF8(name)})
}

// ClassBuilder assembles a ClassInfo, mostly for tests and fixtures.
type ClassBuilder struct {
	pool  *PoolBuilder
	class ClassInfo
}

// NewClassBuilder starts a public class targeting Java 8. An empty super
// name builds a root class.
func NewClassBuilder(name, super string) *ClassBuilder {
	b := &ClassBuilder{pool: NewPoolBuilder()}
	b.class = ClassInfo{
		Magic:        Magic,
		MajorVersion: 52,
		AccessFlags:  AccPublic | AccSuper,
		ThisClass:    b.pool.Class(name),
	}
	if super != "" {
		b.class.SuperClass = b.pool.Class(super)
	}
	return b
}

// Pool exposes the constant pool builder for adding referenced constants.
func (b *ClassBuilder) Pool() *PoolBuilder {
	return b.pool
}

func (b *ClassBuilder) Version(major, minor uint16) *ClassBuilder {
	b.class.MajorVersion = major
	b.class.MinorVersion = minor
	return b
}

func (b *ClassBuilder) Access(flags AccessFlags) *ClassBuilder {
	b.class.AccessFlags = flags
	return b
}

func (b *ClassBuilder) Interface(name string) *ClassBuilder {
	b.class.Interfaces = append(b.class.Interfaces, b.pool.Class(name))
	return b
}

func (b *ClassBuilder) Field(flags AccessFlags, name, descriptor string, attrs ...AttributeInfo) *ClassBuilder {
	b.class.Fields = append(b.class.Fields, b.member(flags, name, descriptor, attrs))
	return b
}

func (b *ClassBuilder) Method(flags AccessFlags, name, descriptor string, attrs ...AttributeInfo) *ClassBuilder {
	b.class.Methods = append(b.class.Methods, b.member(flags, name, descriptor, attrs))
	return b
}

// Attribute adds a class-level attribute.
func (b *ClassBuilder) Attribute(a AttributeInfo) *ClassBuilder {
	b.class.Attributes = append(b.class.Attributes, a)
	return b
}

// Attr makes an attribute whose name is interned in this class's pool.
func (b *ClassBuilder) Attr(name string, payload []byte) AttributeInfo {
	return AttributeInfo{NameIndex: b.pool.UTF8(name), Info: payload}
}

// Code makes a Code attribute. It panics if the instructions cannot be
// encoded, which only happens for hand-built invalid fixtures.
func (b *ClassBuilder) Code(c *CodeAttribute) AttributeInfo {
	payload, err := c.Bytes()
	if err != nil {
		panic(err)
	}
	return b.Attr(AttrCode, payload)
}

// Build returns the class. The builder must not be used afterwards.
func (b *ClassBuilder) Build() *ClassInfo {
	c := b.class
	c.ConstantPool = b.pool.Pool()
	return &c
}

func (b *ClassBuilder) member(flags AccessFlags, name, descriptor string, attrs []AttributeInfo) MemberInfo {
	return MemberInfo{
		AccessFlags:     flags,
		NameIndex:       b.pool.UTF8(name),
		DescriptorIndex: b.pool.UTF8(descriptor),
		Attributes:      attrs,
	}
}
