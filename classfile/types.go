package classfile

// ClassInfo is a decoded class file. Indices refer into ConstantPool.
type ClassInfo struct {
	ConstantPool *ConstantPool
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  AccessFlags
	ThisClass    uint16
	// SuperClass is 0 only for java/lang/Object.
	SuperClass uint16
}

// MemberInfo is the shared layout of field_info and method_info.
type MemberInfo struct {
	Attributes      []AttributeInfo
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
}

// FieldInfo is a field_info record.
type FieldInfo = MemberInfo

// MethodInfo is a method_info record.
type MethodInfo = MemberInfo

// AttributeInfo is an attribute with its payload still undecoded.
type AttributeInfo struct {
	Info      []byte
	NameIndex uint16
}

// HasSuperClass reports whether the class declares a superclass.
func (c *ClassInfo) HasSuperClass() bool {
	return c.SuperClass != 0
}

// Name returns the binary name of the class.
func (c *ClassInfo) Name() (string, error) {
	return c.ConstantPool.ClassName(c.ThisClass)
}

// SuperName returns the superclass name, or "" for the root class.
func (c *ClassInfo) SuperName() (string, error) {
	if !c.HasSuperClass() {
		return "", nil
	}
	return c.ConstantPool.ClassName(c.SuperClass)
}

// InterfaceNames returns the names of the directly implemented interfaces.
func (c *ClassInfo) InterfaceNames() ([]string, error) {
	names := make([]string, 0, len(c.Interfaces))
	for _, idx := range c.Interfaces {
		n, err := c.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, nil
}

// Name returns the member name.
func (m *MemberInfo) Name(p *ConstantPool) (string, error) {
	return p.UTF8(m.NameIndex)
}

// Descriptor returns the member descriptor.
func (m *MemberInfo) Descriptor(p *ConstantPool) (string, error) {
	return p.UTF8(m.DescriptorIndex)
}

// Name returns the attribute name.
func (a *AttributeInfo) Name(p *ConstantPool) (string, error) {
	return p.UTF8(a.NameIndex)
}

// FindAttribute returns the first attribute with the given name.
func FindAttribute(p *ConstantPool, attrs []AttributeInfo, name string) (*AttributeInfo, bool) {
	for i := range attrs {
		if n, err := p.UTF8(attrs[i].NameIndex); err == nil && n == name {
			return &attrs[i], true
		}
	}
	return nil, false
}
