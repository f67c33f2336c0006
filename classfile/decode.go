package classfile

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/wippyai/jaot/errors"
	bin "github.com/wippyai/jaot/internal/binary"
)

// Sentinel errors. Returned errors carry more detail but match these with
// errors.Is.
var (
	ErrNotClassFile       = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindNotClassFile}
	ErrUnsupportedVersion = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnsupported}
	ErrUnknownTag         = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnknownTag}
	ErrMalformed          = &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindInvalidData}
)

// Decode decodes a complete class file.
func Decode(data []byte) (*ClassInfo, error) {
	return decode(bin.NewReader(bytes.NewReader(data)))
}

// DecodeReader decodes a class file from a stream. The stream must end with
// the class file.
func DecodeReader(r io.Reader) (*ClassInfo, error) {
	return decode(bin.NewReader(bufio.NewReader(r)))
}

func decode(r *bin.Reader) (*ClassInfo, error) {
	c := &ClassInfo{}

	magic, err := r.ReadU4()
	if err != nil {
		return nil, malformed(r, "header", err)
	}
	if magic != Magic {
		return nil, errors.New(errors.PhaseDecode, errors.KindNotClassFile).
			Value(magic).
			Detail("not a class file: magic 0x%08X", magic).
			Build()
	}
	c.Magic = magic

	if c.MinorVersion, err = r.ReadU2(); err != nil {
		return nil, malformed(r, "header", err)
	}
	if c.MajorVersion, err = r.ReadU2(); err != nil {
		return nil, malformed(r, "header", err)
	}
	if c.MajorVersion > MaxMajorVersion {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Value(c.MajorVersion).
			Detail("unsupported class file version %d.%d (newest supported is %d)",
				c.MajorVersion, c.MinorVersion, MaxMajorVersion).
			Build()
	}

	if c.ConstantPool, err = decodeConstantPool(r); err != nil {
		return nil, err
	}

	flags, err := r.ReadU2()
	if err != nil {
		return nil, malformed(r, "access flags", err)
	}
	c.AccessFlags = AccessFlags(flags)
	if c.ThisClass, err = r.ReadU2(); err != nil {
		return nil, malformed(r, "this class", err)
	}
	if c.SuperClass, err = r.ReadU2(); err != nil {
		return nil, malformed(r, "super class", err)
	}

	count, err := r.ReadU2()
	if err != nil {
		return nil, malformed(r, "interfaces", err)
	}
	c.Interfaces = make([]uint16, count)
	for i := range c.Interfaces {
		if c.Interfaces[i], err = r.ReadU2(); err != nil {
			return nil, malformed(r, "interfaces", err)
		}
	}

	if c.Fields, err = decodeMembers(r, "fields"); err != nil {
		return nil, err
	}
	if c.Methods, err = decodeMembers(r, "methods"); err != nil {
		return nil, err
	}
	if c.Attributes, err = decodeAttributes(r, "class attributes"); err != nil {
		return nil, err
	}

	if _, err := r.ReadByte(); err == nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("trailing data after class attributes at position %d", r.Position()-1).
			Build()
	} else if !stderrors.Is(err, io.EOF) {
		return nil, malformed(r, "trailer", err)
	}

	return c, nil
}

func decodeConstantPool(r *bin.Reader) (*ConstantPool, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, malformed(r, "constant pool count", err)
	}
	if count == 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("constant pool count must be at least 1").
			Build()
	}

	p := &ConstantPool{Entries: make([]Constant, count)}
	for i := 1; i < int(count); {
		pos := r.Position()
		c, err := decodeConstant(r)
		if err != nil {
			return nil, err
		}
		p.Entries[i] = c
		i += Slots(c)
		if i > int(count) {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path("constant_pool", fmt.Sprintf("#%d", i-2)).
				Detail("%s entry at position %d has no second slot", c.Tag(), pos).
				Build()
		}
	}
	return p, nil
}

func decodeConstant(r *bin.Reader) (Constant, error) {
	tagPos := r.Position()
	b, err := r.ReadU1()
	if err != nil {
		return nil, malformed(r, "constant pool", err)
	}
	tag := Tag(b)

	var u2a, u2b uint16
	readPair := func() error {
		if u2a, err = r.ReadU2(); err != nil {
			return malformed(r, "constant pool", err)
		}
		if u2b, err = r.ReadU2(); err != nil {
			return malformed(r, "constant pool", err)
		}
		return nil
	}

	switch tag {
	case TagUTF8:
		n, err := r.ReadU2()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		data, err := r.ReadBytes(int(n))
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		return ConstantUTF8{Value: string(data)}, nil

	case TagInteger:
		v, err := r.ReadS4()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		return ConstantInteger{Value: v}, nil

	case TagFloat:
		v, err := r.ReadU4()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		return ConstantFloat{Bits: v}, nil

	case TagLong, TagDouble:
		hi, err := r.ReadU4()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		lo, err := r.ReadU4()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		if tag == TagLong {
			return ConstantLong{High: hi, Low: lo}, nil
		}
		return ConstantDouble{High: hi, Low: lo}, nil

	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		idx, err := r.ReadU2()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		switch tag {
		case TagClass:
			return ConstantClass{NameIndex: idx}, nil
		case TagString:
			return ConstantString{StringIndex: idx}, nil
		case TagMethodType:
			return ConstantMethodType{DescriptorIndex: idx}, nil
		case TagModule:
			return ConstantModule{NameIndex: idx}, nil
		default:
			return ConstantPackage{NameIndex: idx}, nil
		}

	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef, TagNameAndType, TagDynamic, TagInvokeDynamic:
		if err := readPair(); err != nil {
			return nil, err
		}
		switch tag {
		case TagFieldRef:
			return ConstantFieldRef{ClassIndex: u2a, NameAndTypeIndex: u2b}, nil
		case TagMethodRef:
			return ConstantMethodRef{ClassIndex: u2a, NameAndTypeIndex: u2b}, nil
		case TagInterfaceMethodRef:
			return ConstantInterfaceMethodRef{ClassIndex: u2a, NameAndTypeIndex: u2b}, nil
		case TagNameAndType:
			return ConstantNameAndType{NameIndex: u2a, DescriptorIndex: u2b}, nil
		case TagDynamic:
			return ConstantDynamic{BootstrapMethodAttrIndex: u2a, NameAndTypeIndex: u2b}, nil
		default:
			return ConstantInvokeDynamic{BootstrapMethodAttrIndex: u2a, NameAndTypeIndex: u2b}, nil
		}

	case TagMethodHandle:
		kind, err := r.ReadU1()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		if kind < RefGetField || kind > RefInvokeInterface {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("method handle at position %d: invalid reference kind %d", tagPos, kind).
				Build()
		}
		idx, err := r.ReadU2()
		if err != nil {
			return nil, malformed(r, "constant pool", err)
		}
		return ConstantMethodHandle{ReferenceKind: kind, ReferenceIndex: idx}, nil
	}

	return nil, errors.New(errors.PhaseDecode, errors.KindUnknownTag).
		Value(b).
		Detail("unknown constant pool tag %d at position %d", b, tagPos).
		Build()
}

func decodeMembers(r *bin.Reader, section string) ([]MemberInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, malformed(r, section, err)
	}
	members := make([]MemberInfo, count)
	for i := range members {
		m := &members[i]
		flags, err := r.ReadU2()
		if err != nil {
			return nil, malformed(r, section, err)
		}
		m.AccessFlags = AccessFlags(flags)
		if m.NameIndex, err = r.ReadU2(); err != nil {
			return nil, malformed(r, section, err)
		}
		if m.DescriptorIndex, err = r.ReadU2(); err != nil {
			return nil, malformed(r, section, err)
		}
		if m.Attributes, err = decodeAttributes(r, section); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func decodeAttributes(r *bin.Reader, section string) ([]AttributeInfo, error) {
	count, err := r.ReadU2()
	if err != nil {
		return nil, malformed(r, section, err)
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		if attrs[i].NameIndex, err = r.ReadU2(); err != nil {
			return nil, malformed(r, section, err)
		}
		n, err := r.ReadU4()
		if err != nil {
			return nil, malformed(r, section, err)
		}
		if attrs[i].Info, err = r.ReadBytes(int(n)); err != nil {
			return nil, malformed(r, section, err)
		}
	}
	return attrs, nil
}

// malformed turns a read failure into a format error carrying the position.
func malformed(r *bin.Reader, section string, err error) error {
	return errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, r.WrapError(section, err), "truncated or malformed "+section)
}
