package resolve

import (
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
	"github.com/wippyai/jaot/errors"
)

// Constant resolves the pool entry at idx into a Ref. UTF8 and NameAndType
// entries are not loadable on their own and are rejected.
func (r *Resolver) Constant(p *classfile.ConstantPool, idx uint16) (Ref, error) {
	c, err := p.Get(idx)
	if err != nil {
		return nil, err
	}
	if lit, ok, err := literal(p, c); err != nil {
		return nil, err
	} else if ok {
		return lit, nil
	}

	switch v := c.(type) {
	case classfile.ConstantClass:
		name, err := p.UTF8(v.NameIndex)
		if err != nil {
			return nil, err
		}
		d, err := descriptor.ParseClassName(name)
		if err != nil {
			return nil, err
		}
		return ClassRef{Name: name, Type: d}, nil
	case classfile.ConstantFieldRef, classfile.ConstantMethodRef, classfile.ConstantInterfaceMethodRef:
		return memberRef(p, idx, c.Tag())
	case classfile.ConstantMethodType:
		raw, err := p.UTF8(v.DescriptorIndex)
		if err != nil {
			return nil, err
		}
		d, err := descriptor.ParseMethod(raw)
		if err != nil {
			return nil, err
		}
		return MethodTypeRef{Descriptor: d}, nil
	case classfile.ConstantMethodHandle:
		target, err := p.Get(v.ReferenceIndex)
		if err != nil {
			return nil, err
		}
		m, err := memberRef(p, v.ReferenceIndex, target.Tag())
		if err != nil {
			return nil, err
		}
		return MethodHandleRef{Kind: v.ReferenceKind, Member: m}, nil
	case classfile.ConstantDynamic:
		return dynamicRef(p, classfile.TagDynamic, v.BootstrapMethodAttrIndex, v.NameAndTypeIndex)
	case classfile.ConstantInvokeDynamic:
		return dynamicRef(p, classfile.TagInvokeDynamic, v.BootstrapMethodAttrIndex, v.NameAndTypeIndex)
	case classfile.ConstantModule:
		name, err := p.UTF8(v.NameIndex)
		if err != nil {
			return nil, err
		}
		return NamedRef{Kind: classfile.TagModule, Name: name}, nil
	case classfile.ConstantPackage:
		name, err := p.UTF8(v.NameIndex)
		if err != nil {
			return nil, err
		}
		return NamedRef{Kind: classfile.TagPackage, Name: name}, nil
	}

	return nil, errors.TypeMismatch(errors.PhaseResolve, []string{"constant_pool"},
		"loadable constant", c.Tag().String())
}

// literal resolves numeric and string constants. ok is false for every
// other entry kind.
func literal(p *classfile.ConstantPool, c classfile.Constant) (lit Literal, ok bool, err error) {
	switch v := c.(type) {
	case classfile.ConstantInteger:
		return Literal{Tag: classfile.TagInteger, Value: v.Value}, true, nil
	case classfile.ConstantFloat:
		return Literal{Tag: classfile.TagFloat, Value: v.Float()}, true, nil
	case classfile.ConstantLong:
		return Literal{Tag: classfile.TagLong, Value: v.Int64()}, true, nil
	case classfile.ConstantDouble:
		return Literal{Tag: classfile.TagDouble, Value: v.Float64()}, true, nil
	case classfile.ConstantString:
		s, err := p.UTF8(v.StringIndex)
		if err != nil {
			return Literal{}, false, err
		}
		return Literal{Tag: classfile.TagString, Value: s}, true, nil
	}
	return Literal{}, false, nil
}

func memberRef(p *classfile.ConstantPool, idx uint16, tag classfile.Tag) (MemberRef, error) {
	owner, name, desc, err := p.Member(idx)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Kind: tag, Owner: owner, Name: name, Descriptor: desc}, nil
}

func dynamicRef(p *classfile.ConstantPool, tag classfile.Tag, bootstrap, nat uint16) (DynamicRef, error) {
	name, desc, err := p.NameAndType(nat)
	if err != nil {
		return DynamicRef{}, err
	}
	return DynamicRef{Kind: tag, Bootstrap: bootstrap, Name: name, Descriptor: desc}, nil
}
