package classfile

import (
	"bytes"
	"fmt"

	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/errors"
	bin "github.com/wippyai/jaot/internal/binary"
)

// CodeAttribute is a parsed Code attribute.
type CodeAttribute struct {
	Code           []byte
	Instructions   []bytecode.Instruction
	ExceptionTable []ExceptionEntry
	Attributes     []AttributeInfo
	MaxStack       uint16
	MaxLocals      uint16
}

// ExceptionEntry is one exception_table row. CatchType 0 catches everything.
type ExceptionEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumber maps a code offset to a source line.
type LineNumber struct {
	StartPC uint16
	Line    uint16
}

// LineNumberTableAttribute is a parsed LineNumberTable attribute.
type LineNumberTableAttribute struct {
	Entries []LineNumber
}

// SourceFileAttribute is a parsed SourceFile attribute.
type SourceFileAttribute struct {
	SourceFileIndex uint16
}

// ConstantValueAttribute is a parsed ConstantValue attribute.
type ConstantValueAttribute struct {
	ValueIndex uint16
}

// LocalVariable is one LocalVariableTable row.
type LocalVariable struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

// LocalVariableTableAttribute is a parsed LocalVariableTable attribute.
type LocalVariableTableAttribute struct {
	Entries []LocalVariable
}

// ExceptionsAttribute lists the checked exceptions a method declares.
type ExceptionsAttribute struct {
	ClassIndices []uint16
}

// SignatureAttribute holds a generic signature.
type SignatureAttribute struct {
	SignatureIndex uint16
}

// InnerClass is one InnerClasses row. Zero indices mean absent.
type InnerClass struct {
	InnerClassIndex uint16
	OuterClassIndex uint16
	InnerNameIndex  uint16
	AccessFlags     AccessFlags
}

// InnerClassesAttribute is a parsed InnerClasses attribute.
type InnerClassesAttribute struct {
	Classes []InnerClass
}

// BootstrapMethod is one BootstrapMethods row.
type BootstrapMethod struct {
	Arguments []uint16
	MethodRef uint16
}

// BootstrapMethodsAttribute is a parsed BootstrapMethods attribute.
type BootstrapMethodsAttribute struct {
	Methods []BootstrapMethod
}

// attrReader reads an attribute payload and reports size problems as
// data size errors.
type attrReader struct {
	r    *bin.Reader
	name string
	size int
	err  error
}

func newAttrReader(a *AttributeInfo, name string) *attrReader {
	return &attrReader{r: bin.NewReader(bytes.NewReader(a.Info)), name: name, size: len(a.Info)}
}

func (ar *attrReader) u1() uint8 {
	if ar.err != nil {
		return 0
	}
	v, err := ar.r.ReadU1()
	ar.fail(err)
	return v
}

func (ar *attrReader) u2() uint16 {
	if ar.err != nil {
		return 0
	}
	v, err := ar.r.ReadU2()
	ar.fail(err)
	return v
}

func (ar *attrReader) u4() uint32 {
	if ar.err != nil {
		return 0
	}
	v, err := ar.r.ReadU4()
	ar.fail(err)
	return v
}

func (ar *attrReader) fail(err error) {
	if err != nil && ar.err == nil {
		ar.err = errors.New(errors.PhaseDecode, errors.KindDataSize).
			Path("attributes", ar.name).
			Cause(err).
			Detail("incorrect data size for %s: payload of %d bytes is too short", ar.name, ar.size).
			Build()
	}
}

// done checks that the payload was consumed exactly.
func (ar *attrReader) done() error {
	if ar.err != nil {
		return ar.err
	}
	if used := ar.r.Position(); used != ar.size {
		return errors.DataSize(errors.PhaseDecode, ar.name, used, ar.size)
	}
	return nil
}

// fixed checks the payload length of a fixed-size attribute up front.
func (ar *attrReader) fixed(want int) error {
	if ar.size != want {
		return errors.DataSize(errors.PhaseDecode, ar.name, want, ar.size)
	}
	return nil
}

// checkName verifies that a carries the expected attribute name.
func checkName(p *ConstantPool, a *AttributeInfo, want string) error {
	got, err := a.Name(p)
	if err != nil {
		return err
	}
	if got != want {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path("attributes", got).
			Detail("attribute %q cannot be parsed as %s", got, want).
			Build()
	}
	return nil
}

// ParseCode parses a Code attribute and decodes its instructions.
func ParseCode(p *ConstantPool, a *AttributeInfo) (*CodeAttribute, error) {
	if err := checkName(p, a, AttrCode); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrCode)
	c := &CodeAttribute{MaxStack: ar.u2(), MaxLocals: ar.u2()}
	n := ar.u4()
	if ar.err != nil {
		return nil, ar.err
	}
	start := ar.r.Position()
	if n == 0 || n >= 1<<16 {
		return nil, errors.InvalidData(errors.PhaseDecode, []string{"attributes", AttrCode},
			fmt.Sprintf("code length %d out of range", n))
	}
	if int(n) > ar.size-start {
		return nil, errors.DataSize(errors.PhaseDecode, "Code array", int(n), ar.size-start)
	}
	instrs, err := bytecode.DecodeReader(ar.r, int(n))
	if err != nil {
		return nil, err
	}
	c.Instructions = instrs
	c.Code = a.Info[start : start+int(n)]

	count := ar.u2()
	if ar.err == nil {
		c.ExceptionTable = make([]ExceptionEntry, 0, min(int(count), ar.size))
	}
	for i := 0; i < int(count) && ar.err == nil; i++ {
		c.ExceptionTable = append(c.ExceptionTable, ExceptionEntry{
			StartPC: ar.u2(), EndPC: ar.u2(), HandlerPC: ar.u2(), CatchType: ar.u2(),
		})
	}
	if ar.err != nil {
		return nil, ar.err
	}
	if c.Attributes, err = decodeAttributes(ar.r, "code attributes"); err != nil {
		return nil, err
	}
	if err := ar.done(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseLineNumberTable parses a LineNumberTable attribute.
func ParseLineNumberTable(p *ConstantPool, a *AttributeInfo) (*LineNumberTableAttribute, error) {
	if err := checkName(p, a, AttrLineNumberTable); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrLineNumberTable)
	count := int(ar.u2())
	if err := ar.fixed(2 + 4*count); err != nil {
		return nil, err
	}
	t := &LineNumberTableAttribute{Entries: make([]LineNumber, count)}
	for i := range t.Entries {
		t.Entries[i] = LineNumber{StartPC: ar.u2(), Line: ar.u2()}
	}
	return t, ar.done()
}

// ParseSourceFile parses a SourceFile attribute.
func ParseSourceFile(p *ConstantPool, a *AttributeInfo) (*SourceFileAttribute, error) {
	if err := checkName(p, a, AttrSourceFile); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrSourceFile)
	if err := ar.fixed(2); err != nil {
		return nil, err
	}
	return &SourceFileAttribute{SourceFileIndex: ar.u2()}, ar.done()
}

// ParseConstantValue parses a ConstantValue attribute.
func ParseConstantValue(p *ConstantPool, a *AttributeInfo) (*ConstantValueAttribute, error) {
	if err := checkName(p, a, AttrConstantValue); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrConstantValue)
	if err := ar.fixed(2); err != nil {
		return nil, err
	}
	return &ConstantValueAttribute{ValueIndex: ar.u2()}, ar.done()
}

// ParseLocalVariableTable parses a LocalVariableTable attribute.
func ParseLocalVariableTable(p *ConstantPool, a *AttributeInfo) (*LocalVariableTableAttribute, error) {
	if err := checkName(p, a, AttrLocalVariableTable); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrLocalVariableTable)
	count := int(ar.u2())
	if err := ar.fixed(2 + 10*count); err != nil {
		return nil, err
	}
	t := &LocalVariableTableAttribute{Entries: make([]LocalVariable, count)}
	for i := range t.Entries {
		t.Entries[i] = LocalVariable{
			StartPC: ar.u2(), Length: ar.u2(), NameIndex: ar.u2(), DescriptorIndex: ar.u2(), Index: ar.u2(),
		}
	}
	return t, ar.done()
}

// ParseExceptions parses an Exceptions attribute.
func ParseExceptions(p *ConstantPool, a *AttributeInfo) (*ExceptionsAttribute, error) {
	if err := checkName(p, a, AttrExceptions); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrExceptions)
	count := int(ar.u2())
	if err := ar.fixed(2 + 2*count); err != nil {
		return nil, err
	}
	e := &ExceptionsAttribute{ClassIndices: make([]uint16, count)}
	for i := range e.ClassIndices {
		e.ClassIndices[i] = ar.u2()
	}
	return e, ar.done()
}

// ParseSignature parses a Signature attribute.
func ParseSignature(p *ConstantPool, a *AttributeInfo) (*SignatureAttribute, error) {
	if err := checkName(p, a, AttrSignature); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrSignature)
	if err := ar.fixed(2); err != nil {
		return nil, err
	}
	return &SignatureAttribute{SignatureIndex: ar.u2()}, ar.done()
}

// ParseInnerClasses parses an InnerClasses attribute.
func ParseInnerClasses(p *ConstantPool, a *AttributeInfo) (*InnerClassesAttribute, error) {
	if err := checkName(p, a, AttrInnerClasses); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrInnerClasses)
	count := int(ar.u2())
	if err := ar.fixed(2 + 8*count); err != nil {
		return nil, err
	}
	ic := &InnerClassesAttribute{Classes: make([]InnerClass, count)}
	for i := range ic.Classes {
		ic.Classes[i] = InnerClass{
			InnerClassIndex: ar.u2(), OuterClassIndex: ar.u2(), InnerNameIndex: ar.u2(), AccessFlags: AccessFlags(ar.u2()),
		}
	}
	return ic, ar.done()
}

// ParseBootstrapMethods parses a BootstrapMethods attribute.
func ParseBootstrapMethods(p *ConstantPool, a *AttributeInfo) (*BootstrapMethodsAttribute, error) {
	if err := checkName(p, a, AttrBootstrapMethods); err != nil {
		return nil, err
	}
	ar := newAttrReader(a, AttrBootstrapMethods)
	count := int(ar.u2())
	bm := &BootstrapMethodsAttribute{}
	for i := 0; i < count && ar.err == nil; i++ {
		m := BootstrapMethod{MethodRef: ar.u2()}
		n := int(ar.u2())
		for j := 0; j < n && ar.err == nil; j++ {
			m.Arguments = append(m.Arguments, ar.u2())
		}
		bm.Methods = append(bm.Methods, m)
	}
	if err := ar.done(); err != nil {
		return nil, err
	}
	return bm, nil
}

// ParseMarker checks a zero-length marker attribute such as Deprecated or
// Synthetic.
func ParseMarker(p *ConstantPool, a *AttributeInfo, name string) error {
	if err := checkName(p, a, name); err != nil {
		return err
	}
	return newAttrReader(a, name).fixed(0)
}

// Bytes encodes the Code attribute payload. When Code is empty the
// instructions are encoded instead.
func (c *CodeAttribute) Bytes() ([]byte, error) {
	code := c.Code
	if len(code) == 0 {
		var err error
		if code, err = bytecode.Encode(c.Instructions); err != nil {
			return nil, err
		}
	}
	w := bin.NewWriter()
	w.WriteU2(c.MaxStack)
	w.WriteU2(c.MaxLocals)
	w.WriteU4(uint32(len(code)))
	w.WriteBytes(code)
	w.WriteU2(uint16(len(c.ExceptionTable)))
	for _, e := range c.ExceptionTable {
		w.WriteU2(e.StartPC)
		w.WriteU2(e.EndPC)
		w.WriteU2(e.HandlerPC)
		w.WriteU2(e.CatchType)
	}
	writeAttributes(w, c.Attributes)
	return w.Bytes(), nil
}

// Bytes encodes the attribute payload.
func (t *LineNumberTableAttribute) Bytes() []byte {
	w := bin.NewWriter()
	w.WriteU2(uint16(len(t.Entries)))
	for _, e := range t.Entries {
		w.WriteU2(e.StartPC)
		w.WriteU2(e.Line)
	}
	return w.Bytes()
}

// Bytes encodes the attribute payload.
func (t *LocalVariableTableAttribute) Bytes() []byte {
	w := bin.NewWriter()
	w.WriteU2(uint16(len(t.Entries)))
	for _, e := range t.Entries {
		w.WriteU2(e.StartPC)
		w.WriteU2(e.Length)
		w.WriteU2(e.NameIndex)
		w.WriteU2(e.DescriptorIndex)
		w.WriteU2(e.Index)
	}
	return w.Bytes()
}

// Bytes encodes the attribute payload.
func (e *ExceptionsAttribute) Bytes() []byte {
	w := bin.NewWriter()
	w.WriteU2(uint16(len(e.ClassIndices)))
	for _, idx := range e.ClassIndices {
		w.WriteU2(idx)
	}
	return w.Bytes()
}

// Bytes encodes the attribute payload.
func (ic *InnerClassesAttribute) Bytes() []byte {
	w := bin.NewWriter()
	w.WriteU2(uint16(len(ic.Classes)))
	for _, c := range ic.Classes {
		w.WriteU2(c.InnerClassIndex)
		w.WriteU2(c.OuterClassIndex)
		w.WriteU2(c.InnerNameIndex)
		w.WriteU2(uint16(c.AccessFlags))
	}
	return w.Bytes()
}

// Bytes encodes the attribute payload.
func (bm *BootstrapMethodsAttribute) Bytes() []byte {
	w := bin.NewWriter()
	w.WriteU2(uint16(len(bm.Methods)))
	for _, m := range bm.Methods {
		w.WriteU2(m.MethodRef)
		w.WriteU2(uint16(len(m.Arguments)))
		for _, a := range m.Arguments {
			w.WriteU2(a)
		}
	}
	return w.Bytes()
}

// U2Payload encodes the two-byte payload shared by SourceFile,
// ConstantValue and Signature.
func U2Payload(idx uint16) []byte {
	return []byte{byte(idx >> 8), byte(idx)}
}
