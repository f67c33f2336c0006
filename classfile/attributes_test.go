package classfile_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/classfile"
	jerrors "github.com/wippyai/jaot/errors"
)

var dataSizeErr = &jerrors.Error{Phase: jerrors.PhaseDecode, Kind: jerrors.KindDataSize}

func TestParseCode(t *testing.T) {
	c := sampleClass(t)
	p := c.ConstantPool

	var run *classfile.MethodInfo
	for i := range c.Methods {
		if n, _ := c.Methods[i].Name(p); n == "run" {
			run = &c.Methods[i]
		}
	}
	if run == nil {
		t.Fatal("run method missing")
	}
	a, ok := classfile.FindAttribute(p, run.Attributes, classfile.AttrCode)
	if !ok {
		t.Fatal("Code attribute missing")
	}

	code, err := classfile.ParseCode(p, a)
	if err != nil {
		t.Fatalf("ParseCode: %v", err)
	}
	if code.MaxStack != 2 || code.MaxLocals != 1 {
		t.Errorf("max stack/locals = %d/%d", code.MaxStack, code.MaxLocals)
	}
	if len(code.Code) != 9 || len(code.Instructions) != 4 {
		t.Fatalf("code %d bytes, %d instructions", len(code.Code), len(code.Instructions))
	}
	if code.Instructions[3].Opcode != bytecode.OpReturn || code.Instructions[3].Offset != 8 {
		t.Errorf("last instruction = %+v", code.Instructions[3])
	}
	if len(code.ExceptionTable) != 1 {
		t.Fatalf("exception table = %v", code.ExceptionTable)
	}
	if name, _ := p.ClassName(code.ExceptionTable[0].CatchType); name != "java/lang/Exception" {
		t.Errorf("catch type = %q", name)
	}

	payload, err := code.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if !reflect.DeepEqual(payload, a.Info) {
		t.Error("Code payload does not re-encode identically")
	}
}

func TestParseCodeErrors(t *testing.T) {
	b := classfile.NewClassBuilder("a/B", "")
	good, _ := (&classfile.CodeAttribute{MaxStack: 1, Code: []byte{0xb1}}).Bytes()

	tests := []struct {
		name    string
		payload []byte
		target  error
	}{
		{"too short", good[:3], dataSizeErr},
		{"code length past payload", append(append([]byte(nil), good[:7]...), 0x09, 0xb1), dataSizeErr},
		{"trailing bytes", append(append([]byte(nil), good...), 0x00), dataSizeErr},
		{"empty code", []byte{0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, classfile.ErrMalformed},
		{"unsupported opcode", []byte{0, 1, 0, 0, 0, 0, 0, 1, 0xca, 0, 0, 0, 0},
			&jerrors.Error{Phase: jerrors.PhaseBytecode, Kind: jerrors.KindUnsupported}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := b.Attr(classfile.AttrCode, tt.payload)
			_, err := classfile.ParseCode(b.Build().ConstantPool, &a)
			if !errors.Is(err, tt.target) {
				t.Errorf("got %v, want %v", err, tt.target)
			}
		})
	}
}

func TestParseAttributeNameMismatch(t *testing.T) {
	b := classfile.NewClassBuilder("a/B", "")
	a := b.Attr(classfile.AttrSignature, classfile.U2Payload(1))
	_, err := classfile.ParseSourceFile(b.Build().ConstantPool, &a)
	if !errors.Is(err, &jerrors.Error{Phase: jerrors.PhaseDecode, Kind: jerrors.KindInvalidData}) {
		t.Errorf("expected invalid data, got %v", err)
	}
	if jerrors.CategoryOf(err) != jerrors.CategoryFormat {
		t.Errorf("category = %s", jerrors.CategoryOf(err))
	}
}

func TestParseFixedSizeAttributes(t *testing.T) {
	b := classfile.NewClassBuilder("a/B", "")
	src := b.Pool().UTF8("B.java")
	p := b.Build().ConstantPool

	sf := b.Attr(classfile.AttrSourceFile, classfile.U2Payload(src))
	got, err := classfile.ParseSourceFile(p, &sf)
	if err != nil || got.SourceFileIndex != src {
		t.Errorf("ParseSourceFile = %+v, %v", got, err)
	}

	for _, payload := range [][]byte{{0x00}, {0x00, 0x01, 0x02}} {
		bad := b.Attr(classfile.AttrSourceFile, payload)
		if _, err := classfile.ParseSourceFile(p, &bad); !errors.Is(err, dataSizeErr) {
			t.Errorf("SourceFile with %d bytes: got %v", len(payload), err)
		}
		cv := b.Attr(classfile.AttrConstantValue, payload)
		if _, err := classfile.ParseConstantValue(p, &cv); !errors.Is(err, dataSizeErr) {
			t.Errorf("ConstantValue with %d bytes: got %v", len(payload), err)
		}
	}

	dep := b.Attr(classfile.AttrDeprecated, nil)
	if err := classfile.ParseMarker(p, &dep, classfile.AttrDeprecated); err != nil {
		t.Errorf("Deprecated: %v", err)
	}
	syn := b.Attr(classfile.AttrSynthetic, []byte{0})
	if err := classfile.ParseMarker(p, &syn, classfile.AttrSynthetic); !errors.Is(err, dataSizeErr) {
		t.Errorf("Synthetic with payload: got %v", err)
	}
}

func TestParseTables(t *testing.T) {
	b := classfile.NewClassBuilder("a/B", "")
	pb := b.Pool()

	lnt := &classfile.LineNumberTableAttribute{Entries: []classfile.LineNumber{{StartPC: 0, Line: 10}, {StartPC: 5, Line: 11}}}
	lvt := &classfile.LocalVariableTableAttribute{Entries: []classfile.LocalVariable{
		{StartPC: 0, Length: 9, NameIndex: pb.UTF8("this"), DescriptorIndex: pb.UTF8("La/B;"), Index: 0},
	}}
	exc := &classfile.ExceptionsAttribute{ClassIndices: []uint16{pb.Class("java/io/IOException")}}
	inner := &classfile.InnerClassesAttribute{Classes: []classfile.InnerClass{
		{InnerClassIndex: pb.Class("a/B$C"), OuterClassIndex: pb.Class("a/B"), InnerNameIndex: pb.UTF8("C"), AccessFlags: classfile.AccStatic},
	}}
	boot := &classfile.BootstrapMethodsAttribute{Methods: []classfile.BootstrapMethod{
		{MethodRef: 7, Arguments: []uint16{1, 2}},
		{MethodRef: 8},
	}}
	p := b.Build().ConstantPool

	a := b.Attr(classfile.AttrLineNumberTable, lnt.Bytes())
	if got, err := classfile.ParseLineNumberTable(p, &a); err != nil || !reflect.DeepEqual(got, lnt) {
		t.Errorf("LineNumberTable = %+v, %v", got, err)
	}
	a = b.Attr(classfile.AttrLocalVariableTable, lvt.Bytes())
	if got, err := classfile.ParseLocalVariableTable(p, &a); err != nil || !reflect.DeepEqual(got, lvt) {
		t.Errorf("LocalVariableTable = %+v, %v", got, err)
	}
	a = b.Attr(classfile.AttrExceptions, exc.Bytes())
	if got, err := classfile.ParseExceptions(p, &a); err != nil || !reflect.DeepEqual(got, exc) {
		t.Errorf("Exceptions = %+v, %v", got, err)
	}
	a = b.Attr(classfile.AttrInnerClasses, inner.Bytes())
	if got, err := classfile.ParseInnerClasses(p, &a); err != nil || !reflect.DeepEqual(got, inner) {
		t.Errorf("InnerClasses = %+v, %v", got, err)
	}
	a = b.Attr(classfile.AttrBootstrapMethods, boot.Bytes())
	if got, err := classfile.ParseBootstrapMethods(p, &a); err != nil || !reflect.DeepEqual(got, boot) {
		t.Errorf("BootstrapMethods = %+v, %v", got, err)
	}

	short := b.Attr(classfile.AttrLineNumberTable, lnt.Bytes()[:5])
	if _, err := classfile.ParseLineNumberTable(p, &short); !errors.Is(err, dataSizeErr) {
		t.Errorf("short LineNumberTable: got %v", err)
	}
	truncBoot := b.Attr(classfile.AttrBootstrapMethods, boot.Bytes()[:6])
	if _, err := classfile.ParseBootstrapMethods(p, &truncBoot); !errors.Is(err, dataSizeErr) {
		t.Errorf("short BootstrapMethods: got %v", err)
	}
}
