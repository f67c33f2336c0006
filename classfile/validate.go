package classfile

import (
	"fmt"

	"github.com/wippyai/jaot/errors"
)

// Validate checks that the indices stored outside the constant pool, and the
// references between pool entries, point at entries of the right kind.
func (c *ClassInfo) Validate() error {
	if err := c.validatePool(); err != nil {
		return err
	}
	if err := c.validateClassIndices(); err != nil {
		return err
	}
	if err := c.validateMembers("fields", c.Fields); err != nil {
		return err
	}
	if err := c.validateMembers("methods", c.Methods); err != nil {
		return err
	}
	return c.validateAttributes("attributes", c.Attributes)
}

// DecodeValidate decodes a class file and validates it.
func DecodeValidate(data []byte) (*ClassInfo, error) {
	c, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ClassInfo) validateClassIndices() error {
	if _, err := c.ConstantPool.ClassName(c.ThisClass); err != nil {
		return invalid("this_class", err)
	}
	if c.HasSuperClass() {
		if _, err := c.ConstantPool.ClassName(c.SuperClass); err != nil {
			return invalid("super_class", err)
		}
	}
	for i, idx := range c.Interfaces {
		if _, err := c.ConstantPool.ClassName(idx); err != nil {
			return invalid(fmt.Sprintf("interfaces[%d]", i), err)
		}
	}
	return nil
}

func (c *ClassInfo) validateMembers(section string, members []MemberInfo) error {
	p := c.ConstantPool
	for i := range members {
		m := &members[i]
		where := fmt.Sprintf("%s[%d]", section, i)
		if _, err := p.UTF8(m.NameIndex); err != nil {
			return invalid(where+".name", err)
		}
		if _, err := p.UTF8(m.DescriptorIndex); err != nil {
			return invalid(where+".descriptor", err)
		}
		if err := c.validateAttributes(where, m.Attributes); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClassInfo) validateAttributes(where string, attrs []AttributeInfo) error {
	for i := range attrs {
		if _, err := c.ConstantPool.UTF8(attrs[i].NameIndex); err != nil {
			return invalid(fmt.Sprintf("%s.attributes[%d]", where, i), err)
		}
	}
	return nil
}

func (c *ClassInfo) validatePool() error {
	p := c.ConstantPool
	var err error
	p.Each(func(i uint16, e Constant) {
		if err != nil {
			return
		}
		where := fmt.Sprintf("constant_pool[%d]", i)
		switch v := e.(type) {
		case ConstantClass:
			err = expectTag(p, where, v.NameIndex, TagUTF8)
		case ConstantString:
			err = expectTag(p, where, v.StringIndex, TagUTF8)
		case ConstantMethodType:
			err = expectTag(p, where, v.DescriptorIndex, TagUTF8)
		case ConstantModule:
			err = expectTag(p, where, v.NameIndex, TagUTF8)
		case ConstantPackage:
			err = expectTag(p, where, v.NameIndex, TagUTF8)
		case ConstantNameAndType:
			if err = expectTag(p, where, v.NameIndex, TagUTF8); err == nil {
				err = expectTag(p, where, v.DescriptorIndex, TagUTF8)
			}
		case MemberRef:
			cls, nat := v.Indices()
			if err = expectTag(p, where, cls, TagClass); err == nil {
				err = expectTag(p, where, nat, TagNameAndType)
			}
		case ConstantDynamic:
			err = expectTag(p, where, v.NameAndTypeIndex, TagNameAndType)
		case ConstantInvokeDynamic:
			err = expectTag(p, where, v.NameAndTypeIndex, TagNameAndType)
		case ConstantMethodHandle:
			err = expectTag(p, where, v.ReferenceIndex, referenceTag(v.ReferenceKind)...)
		}
	})
	return err
}

func referenceTag(kind uint8) []Tag {
	switch kind {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		return []Tag{TagFieldRef}
	case RefInvokeInterface:
		return []Tag{TagInterfaceMethodRef}
	case RefInvokeStatic, RefInvokeSpecial:
		return []Tag{TagMethodRef, TagInterfaceMethodRef}
	default:
		return []Tag{TagMethodRef}
	}
}

func expectTag(p *ConstantPool, where string, idx uint16, want ...Tag) error {
	e, err := p.Get(idx)
	if err != nil {
		return invalid(where, err)
	}
	for _, t := range want {
		if e.Tag() == t {
			return nil
		}
	}
	return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
		Path(where).
		Detail("#%d is %s, want %s", idx, e.Tag(), want[0]).
		Build()
}

func invalid(where string, cause error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Path(where).
		Cause(cause).
		Detail("invalid constant pool reference").
		Build()
}
