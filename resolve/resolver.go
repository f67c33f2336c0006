package resolve

import (
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/descriptor"
	"github.com/wippyai/jaot/errors"
)

// Options configures a Resolver.
type Options struct {
	// IgnoreAttributes names attributes that are dropped instead of
	// rejected. Any other unknown attribute is an error.
	IgnoreAttributes []string
}

// Resolver turns decoded class files into resolved records. It keeps no
// state between calls and never modifies its inputs.
type Resolver struct {
	ignore map[string]bool
}

// New creates a resolver.
func New(opts Options) *Resolver {
	r := &Resolver{ignore: make(map[string]bool, len(opts.IgnoreAttributes))}
	for _, name := range opts.IgnoreAttributes {
		r.ignore[name] = true
	}
	return r
}

// Class resolves a whole class file.
func (r *Resolver) Class(c *classfile.ClassInfo) (*Class, error) {
	if c == nil || c.ConstantPool == nil {
		return nil, errors.NilPointer(errors.PhaseResolve, nil, "class")
	}
	name, err := c.Name()
	if err != nil {
		return nil, err
	}
	out, err := r.class(c, name)
	return out, errors.WithClass(err, errors.PhaseResolve, name)
}

func (r *Resolver) class(c *classfile.ClassInfo, name string) (*Class, error) {
	p := c.ConstantPool
	out := &Class{
		Name:         name,
		Access:       c.AccessFlags,
		MajorVersion: c.MajorVersion,
		MinorVersion: c.MinorVersion,
	}

	var err error
	if out.Super, err = c.SuperName(); err != nil {
		return nil, err
	}
	if out.Interfaces, err = c.InterfaceNames(); err != nil {
		return nil, err
	}

	if len(c.Fields) > 0 {
		out.Fields = make([]Field, 0, len(c.Fields))
	}
	for i := range c.Fields {
		f, err := r.Field(p, &c.Fields[i])
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, *f)
	}

	if len(c.Methods) > 0 {
		out.Methods = make([]Method, 0, len(c.Methods))
	}
	for i := range c.Methods {
		m, err := r.Method(p, &c.Methods[i])
		if err != nil {
			return nil, err
		}
		out.Methods = append(out.Methods, *m)
	}

	if out.Attributes, err = r.attributes(p, c.Attributes, "attributes"); err != nil {
		return nil, err
	}
	for _, a := range out.Attributes {
		if sf, ok := a.(*SourceFile); ok {
			out.SourceFile = sf.Name
		}
	}
	return out, nil
}

// Field resolves a field.
func (r *Resolver) Field(p *classfile.ConstantPool, f *classfile.FieldInfo) (*Field, error) {
	name, err := f.Name(p)
	if err != nil {
		return nil, err
	}
	raw, err := f.Descriptor(p)
	if err != nil {
		return nil, err
	}
	desc, err := descriptor.ParseField(raw)
	if err != nil {
		return nil, withPath(err, "fields", name)
	}
	attrs, err := r.attributes(p, f.Attributes, "fields", name)
	if err != nil {
		return nil, err
	}
	return &Field{Name: name, Descriptor: desc, Access: f.AccessFlags, Attributes: attrs}, nil
}

// Method resolves a method.
func (r *Resolver) Method(p *classfile.ConstantPool, m *classfile.MethodInfo) (*Method, error) {
	name, err := m.Name(p)
	if err != nil {
		return nil, err
	}
	raw, err := m.Descriptor(p)
	if err != nil {
		return nil, err
	}
	desc, err := descriptor.ParseMethod(raw)
	if err != nil {
		return nil, withPath(err, "methods", name+raw)
	}
	attrs, err := r.attributes(p, m.Attributes, "methods", name+raw)
	if err != nil {
		return nil, err
	}
	return &Method{Name: name, Descriptor: desc, Access: m.AccessFlags, Attributes: attrs}, nil
}

func (r *Resolver) attributes(p *classfile.ConstantPool, attrs []classfile.AttributeInfo, path ...string) ([]Attribute, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	out := make([]Attribute, 0, len(attrs))
	for i := range attrs {
		a, err := r.Attribute(p, &attrs[i])
		if err != nil {
			return nil, withPath(err, path...)
		}
		if a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// Attribute resolves a single attribute. It returns nil without error for
// attributes listed in Options.IgnoreAttributes.
func (r *Resolver) Attribute(p *classfile.ConstantPool, a *classfile.AttributeInfo) (Attribute, error) {
	name, err := a.Name(p)
	if err != nil {
		return nil, err
	}
	if r.ignore[name] {
		return nil, nil
	}

	switch name {
	case classfile.AttrCode:
		return r.code(p, a)
	case classfile.AttrLineNumberTable:
		t, err := classfile.ParseLineNumberTable(p, a)
		if err != nil {
			return nil, err
		}
		return &LineNumberTable{Entries: t.Entries}, nil
	case classfile.AttrSourceFile:
		sf, err := classfile.ParseSourceFile(p, a)
		if err != nil {
			return nil, err
		}
		s, err := p.UTF8(sf.SourceFileIndex)
		if err != nil {
			return nil, err
		}
		return &SourceFile{Name: s}, nil
	case classfile.AttrConstantValue:
		return constantValue(p, a)
	case classfile.AttrLocalVariableTable:
		return localVariables(p, a)
	case classfile.AttrExceptions:
		ex, err := classfile.ParseExceptions(p, a)
		if err != nil {
			return nil, err
		}
		out := &Exceptions{Classes: make([]string, len(ex.ClassIndices))}
		for i, idx := range ex.ClassIndices {
			if out.Classes[i], err = p.ClassName(idx); err != nil {
				return nil, err
			}
		}
		return out, nil
	case classfile.AttrSignature:
		sig, err := classfile.ParseSignature(p, a)
		if err != nil {
			return nil, err
		}
		s, err := p.UTF8(sig.SignatureIndex)
		if err != nil {
			return nil, err
		}
		return &Signature{Value: s}, nil
	case classfile.AttrInnerClasses:
		return innerClasses(p, a)
	case classfile.AttrBootstrapMethods:
		return r.bootstrapMethods(p, a)
	case classfile.AttrDeprecated:
		if err := classfile.ParseMarker(p, a, name); err != nil {
			return nil, err
		}
		return &Deprecated{}, nil
	case classfile.AttrSynthetic:
		if err := classfile.ParseMarker(p, a, name); err != nil {
			return nil, err
		}
		return &Synthetic{}, nil
	}

	return nil, errors.New(errors.PhaseResolve, errors.KindUnsupported).
		Value(name).
		Detail("attribute %q not supported", name).
		Build()
}

func (r *Resolver) code(p *classfile.ConstantPool, a *classfile.AttributeInfo) (*Code, error) {
	ca, err := classfile.ParseCode(p, a)
	if err != nil {
		return nil, err
	}
	out := &Code{
		MaxStack:     ca.MaxStack,
		MaxLocals:    ca.MaxLocals,
		Instructions: make([]Instruction, len(ca.Instructions)),
	}
	for i, in := range ca.Instructions {
		out.Instructions[i].Instruction = in
		idx, ok := in.PoolIndex()
		if !ok {
			continue
		}
		if out.Instructions[i].Ref, err = r.Constant(p, idx); err != nil {
			return nil, withPath(err, "code", in.Opcode.String())
		}
	}
	if len(ca.ExceptionTable) > 0 {
		out.Handlers = make([]ExceptionHandler, len(ca.ExceptionTable))
	}
	for i, e := range ca.ExceptionTable {
		h := ExceptionHandler{StartPC: e.StartPC, EndPC: e.EndPC, HandlerPC: e.HandlerPC}
		if e.CatchType != 0 {
			if h.CatchType, err = p.ClassName(e.CatchType); err != nil {
				return nil, err
			}
		}
		out.Handlers[i] = h
	}
	if out.Attributes, err = r.attributes(p, ca.Attributes, "code"); err != nil {
		return nil, err
	}
	return out, nil
}

func constantValue(p *classfile.ConstantPool, a *classfile.AttributeInfo) (*ConstantValue, error) {
	cv, err := classfile.ParseConstantValue(p, a)
	if err != nil {
		return nil, err
	}
	c, err := p.Get(cv.ValueIndex)
	if err != nil {
		return nil, err
	}
	lit, ok, err := literal(p, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseResolve, []string{classfile.AttrConstantValue},
			"literal constant", c.Tag().String())
	}
	return &ConstantValue{Value: lit}, nil
}

func localVariables(p *classfile.ConstantPool, a *classfile.AttributeInfo) (*LocalVariableTable, error) {
	t, err := classfile.ParseLocalVariableTable(p, a)
	if err != nil {
		return nil, err
	}
	out := &LocalVariableTable{Vars: make([]LocalVariable, len(t.Entries))}
	for i, e := range t.Entries {
		name, err := p.UTF8(e.NameIndex)
		if err != nil {
			return nil, err
		}
		raw, err := p.UTF8(e.DescriptorIndex)
		if err != nil {
			return nil, err
		}
		desc, err := descriptor.ParseField(raw)
		if err != nil {
			return nil, err
		}
		out.Vars[i] = LocalVariable{
			Name:       name,
			Descriptor: desc,
			StartPC:    e.StartPC,
			Length:     e.Length,
			Index:      e.Index,
		}
	}
	return out, nil
}

func innerClasses(p *classfile.ConstantPool, a *classfile.AttributeInfo) (*InnerClasses, error) {
	t, err := classfile.ParseInnerClasses(p, a)
	if err != nil {
		return nil, err
	}
	out := &InnerClasses{Classes: make([]InnerClass, len(t.Classes))}
	for i, e := range t.Classes {
		ic := InnerClass{Access: e.AccessFlags}
		if ic.Inner, err = p.ClassName(e.InnerClassIndex); err != nil {
			return nil, err
		}
		if e.OuterClassIndex != 0 {
			if ic.Outer, err = p.ClassName(e.OuterClassIndex); err != nil {
				return nil, err
			}
		}
		if e.InnerNameIndex != 0 {
			if ic.Name, err = p.UTF8(e.InnerNameIndex); err != nil {
				return nil, err
			}
		}
		out.Classes[i] = ic
	}
	return out, nil
}

func (r *Resolver) bootstrapMethods(p *classfile.ConstantPool, a *classfile.AttributeInfo) (*BootstrapMethods, error) {
	t, err := classfile.ParseBootstrapMethods(p, a)
	if err != nil {
		return nil, err
	}
	out := &BootstrapMethods{Methods: make([]BootstrapMethod, len(t.Methods))}
	for i, m := range t.Methods {
		ref, err := r.Constant(p, m.MethodRef)
		if err != nil {
			return nil, err
		}
		h, ok := ref.(MethodHandleRef)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseResolve, []string{classfile.AttrBootstrapMethods},
				"MethodHandle", ref.String())
		}
		bm := BootstrapMethod{Handle: h}
		if len(m.Arguments) > 0 {
			bm.Arguments = make([]Ref, len(m.Arguments))
		}
		for j, idx := range m.Arguments {
			if bm.Arguments[j], err = r.Constant(p, idx); err != nil {
				return nil, err
			}
		}
		out.Methods[i] = bm
	}
	return out, nil
}

// withPath prefixes the location of a structured error that has none yet.
func withPath(err error, path ...string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = append([]string(nil), path...)
	}
	return err
}
