package classfile

import (
	bin "github.com/wippyai/jaot/internal/binary"
)

// Encode encodes the class to its binary form. Decoding the result yields a
// structure equal to c.
func (c *ClassInfo) Encode() []byte {
	w := bin.NewWriter()

	magic := c.Magic
	if magic == 0 {
		magic = Magic
	}
	w.WriteU4(magic)
	w.WriteU2(c.MinorVersion)
	w.WriteU2(c.MajorVersion)

	pool := c.ConstantPool
	if pool == nil {
		pool = &ConstantPool{}
	}
	pool.encode(w)

	w.WriteU2(uint16(c.AccessFlags))
	w.WriteU2(c.ThisClass)
	w.WriteU2(c.SuperClass)

	w.WriteU2(uint16(len(c.Interfaces)))
	for _, idx := range c.Interfaces {
		w.WriteU2(idx)
	}

	writeMembers(w, c.Fields)
	writeMembers(w, c.Methods)
	writeAttributes(w, c.Attributes)

	return w.Bytes()
}

func (p *ConstantPool) encode(w *bin.Writer) {
	w.WriteU2(uint16(p.Count()))
	for i := 1; i < len(p.Entries); i++ {
		if c := p.Entries[i]; c != nil {
			writeConstant(w, c)
		}
	}
}

func writeConstant(w *bin.Writer, c Constant) {
	w.WriteU1(uint8(c.Tag()))
	switch v := c.(type) {
	case ConstantUTF8:
		w.WriteU2(uint16(len(v.Value)))
		w.WriteBytes([]byte(v.Value))
	case ConstantInteger:
		w.WriteU4(uint32(v.Value))
	case ConstantFloat:
		w.WriteU4(v.Bits)
	case ConstantLong:
		w.WriteU4(v.High)
		w.WriteU4(v.Low)
	case ConstantDouble:
		w.WriteU4(v.High)
		w.WriteU4(v.Low)
	case ConstantClass:
		w.WriteU2(v.NameIndex)
	case ConstantString:
		w.WriteU2(v.StringIndex)
	case ConstantFieldRef:
		w.WriteU2(v.ClassIndex)
		w.WriteU2(v.NameAndTypeIndex)
	case ConstantMethodRef:
		w.WriteU2(v.ClassIndex)
		w.WriteU2(v.NameAndTypeIndex)
	case ConstantInterfaceMethodRef:
		w.WriteU2(v.ClassIndex)
		w.WriteU2(v.NameAndTypeIndex)
	case ConstantNameAndType:
		w.WriteU2(v.NameIndex)
		w.WriteU2(v.DescriptorIndex)
	case ConstantMethodHandle:
		w.WriteU1(v.ReferenceKind)
		w.WriteU2(v.ReferenceIndex)
	case ConstantMethodType:
		w.WriteU2(v.DescriptorIndex)
	case ConstantDynamic:
		w.WriteU2(v.BootstrapMethodAttrIndex)
		w.WriteU2(v.NameAndTypeIndex)
	case ConstantInvokeDynamic:
		w.WriteU2(v.BootstrapMethodAttrIndex)
		w.WriteU2(v.NameAndTypeIndex)
	case ConstantModule:
		w.WriteU2(v.NameIndex)
	case ConstantPackage:
		w.WriteU2(v.NameIndex)
	}
}

func writeMembers(w *bin.Writer, members []MemberInfo) {
	w.WriteU2(uint16(len(members)))
	for i := range members {
		m := &members[i]
		w.WriteU2(uint16(m.AccessFlags))
		w.WriteU2(m.NameIndex)
		w.WriteU2(m.DescriptorIndex)
		writeAttributes(w, m.Attributes)
	}
}

func writeAttributes(w *bin.Writer, attrs []AttributeInfo) {
	w.WriteU2(uint16(len(attrs)))
	for _, a := range attrs {
		w.WriteU2(a.NameIndex)
		w.WriteU4(uint32(len(a.Info)))
		w.WriteBytes(a.Info)
	}
}
