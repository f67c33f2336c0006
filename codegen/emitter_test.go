package codegen_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/codegen"
	"github.com/wippyai/jaot/errors"
	"github.com/wippyai/jaot/resolve"
)

func code(b *classfile.ClassBuilder, instrs ...bytecode.Instruction) classfile.AttributeInfo {
	return b.Code(&classfile.CodeAttribute{MaxStack: 2, MaxLocals: 4, Instructions: instrs})
}

var ret = bytecode.Instruction{Opcode: bytecode.OpReturn}

// program resolves Object, an interface Shape and Main, in dependency order.
func program(t *testing.T) ([]string, codegen.Lookup) {
	t.Helper()
	var infos []*classfile.ClassInfo

	obj := classfile.NewClassBuilder("java/lang/Object", "")
	obj.Method(classfile.AccPublic, "<init>", "()V", code(obj, ret)).
		Method(classfile.AccPublic|classfile.AccNative, "hashCode", "()I").
		Method(classfile.AccPublic, "toString", "()Ljava/lang/String;", code(obj,
			bytecode.Instruction{Opcode: bytecode.OpAconstNull},
			bytecode.Instruction{Opcode: bytecode.OpAreturn}))
	infos = append(infos, obj.Build())

	shape := classfile.NewClassBuilder("com/example/Shape", "java/lang/Object").
		Access(classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract)
	shape.Method(classfile.AccPublic|classfile.AccAbstract, "area", "()D")
	infos = append(infos, shape.Build())

	main := classfile.NewClassBuilder("com/example/Main", "java/lang/Object").
		Interface("java/lang/Runnable").
		Interface("com/example/Shape")
	p := main.Pool()
	out := p.FieldRef("java/lang/System", "out", "Ljava/io/PrintStream;")
	hi := p.String("hi")
	printRef := p.MethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")
	constant := classfile.AccStatic | classfile.AccFinal
	lvt := &classfile.LocalVariableTableAttribute{Entries: []classfile.LocalVariable{
		{StartPC: 0, Length: 1, NameIndex: p.UTF8("args"), DescriptorIndex: p.UTF8("[Ljava/lang/String;"), Index: 0},
	}}
	mainCode := &classfile.CodeAttribute{
		MaxStack: 1, MaxLocals: 1,
		Instructions: []bytecode.Instruction{ret},
		Attributes:   []classfile.AttributeInfo{main.Attr(classfile.AttrLocalVariableTable, lvt.Bytes())},
	}

	main.Field(constant, "COUNT", "I", main.Attr(classfile.AttrConstantValue, classfile.U2Payload(p.Integer(42)))).
		Field(constant, "NAME", "Ljava/lang/String;", main.Attr(classfile.AttrConstantValue, classfile.U2Payload(p.String("jaot")))).
		Field(constant, "DEBUG", "Z", main.Attr(classfile.AttrConstantValue, classfile.U2Payload(p.Integer(1)))).
		Field(constant, "SEP", "C", main.Attr(classfile.AttrConstantValue, classfile.U2Payload(p.Integer('/')))).
		Field(classfile.AccPrivate, "grid", "[[J").
		Method(classfile.AccPublic, "<init>", "()V", code(main, ret)).
		Method(classfile.AccStatic, "<clinit>", "()V", code(main, ret)).
		Method(classfile.AccPublic, "run", "()V", code(main,
			bytecode.Instruction{Opcode: bytecode.OpGetstatic, Imm: bytecode.PoolImm{Index: out}},
			bytecode.Instruction{Opcode: bytecode.OpLdc, Imm: bytecode.PoolImm{Index: hi}},
			bytecode.Instruction{Opcode: bytecode.OpInvokevirtual, Imm: bytecode.PoolImm{Index: printRef}},
			ret)).
		Method(classfile.AccPublic|classfile.AccStatic, "main", "([Ljava/lang/String;)V", main.Code(mainCode)).
		Method(classfile.AccPrivate, "size", "(JI)I", code(main,
			bytecode.Instruction{Opcode: bytecode.OpIconst0},
			bytecode.Instruction{Opcode: bytecode.OpIreturn})).
		Method(classfile.AccPublic, "area", "()D", code(main,
			bytecode.Instruction{Opcode: bytecode.OpDconst0},
			bytecode.Instruction{Opcode: bytecode.OpDreturn})).
		Method(classfile.AccPublic, "get", "()Ljava/lang/Object;", code(main,
			bytecode.Instruction{Opcode: bytecode.OpAconstNull},
			bytecode.Instruction{Opcode: bytecode.OpAreturn})).
		Method(classfile.AccPublic|classfile.AccSynthetic, "get", "()Ljava/lang/String;", code(main,
			bytecode.Instruction{Opcode: bytecode.OpAconstNull},
			bytecode.Instruction{Opcode: bytecode.OpAreturn})).
		Attribute(main.Attr(classfile.AttrSourceFile, classfile.U2Payload(p.UTF8("Main.java"))))
	infos = append(infos, main.Build())

	r := resolve.New(resolve.Options{})
	classes := map[string]*resolve.Class{}
	var order []string
	for _, info := range infos {
		c, err := r.Class(info)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		classes[c.Name] = c
		order = append(order, c.Name)
	}
	return order, func(name string) (*resolve.Class, error) {
		c, ok := classes[name]
		if !ok {
			return nil, errors.NotFound(errors.PhaseCodegen, "class", name)
		}
		return c, nil
	}
}

func emit(t *testing.T, e *codegen.Emitter) string {
	t.Helper()
	order, lookup := program(t)
	f, err := e.Build(order, lookup)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var b strings.Builder
	if err := codegen.Render(f, &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestEmitterOutput(t *testing.T) {
	src := emit(t, &codegen.Emitter{})

	wantInOrder := []string{
		"// " + codegen.DefaultHeader,
		"#pragma once",
		"#include <cstdint>",
		"namespace jaot {",
		"namespace java::lang {\nstruct Object;\nstruct String;\nstruct Runnable;\n} // namespace java::lang",
		"namespace com::example {\nstruct Shape;\nstruct Main;\n} // namespace com::example",
		"struct Object {",
		"    void _init() {\n        return;\n    }",
		"    virtual int32_t hashCode();",
		"    virtual ::java::lang::String* toString() {\n        return nullptr;\n    }",
		"struct Shape {\npublic:\n    virtual double area() = 0;\n};",
		"// com/example/Main (Main.java)",
		"struct Main : public ::java::lang::Object, public ::java::lang::Runnable, public ::com::example::Shape {",
		"    static constexpr int32_t COUNT = 42;",
		"    // NAME = \"jaot\"\n    static ::java::lang::String* NAME;",
		"    static constexpr bool DEBUG = true;",
		"    static constexpr char16_t SEP = u'/';",
		"    ::jaot::JArray< ::jaot::JArray<int64_t>*>* grid;",
		"    static void _clinit() {",
		"    virtual void run() {\n        return;\n    }",
		"    static void main(::jaot::JArray< ::java::lang::String*>* args) {",
		"    int32_t size(int64_t arg0, int32_t arg1) {\n        return 0;\n    }",
		"    virtual double area() {\n        return 0.0;\n    }",
		"    virtual ::java::lang::Object* get() {",
		"    virtual ::java::lang::String* get_1() {",
		"} // namespace com::example",
	}
	pos := 0
	for _, w := range wantInOrder {
		i := strings.Index(src[pos:], w)
		if i < 0 {
			t.Fatalf("missing (after offset %d):\n%s\n\nsource:\n%s", pos, w, src)
		}
		pos += i + len(w)
	}
	if strings.Contains(src, "getstatic") {
		t.Error("disassembly should be off by default")
	}
}

func TestEmitterDisassembly(t *testing.T) {
	src := emit(t, &codegen.Emitter{Disassemble: true, Header: "custom"})

	for _, w := range []string{
		"// custom\n",
		"        //    0: getstatic java/lang/System.out:Ljava/io/PrintStream;\n" +
			"        //    3: ldc \"hi\"\n" +
			"        //    5: invokevirtual java/io/PrintStream.println(Ljava/lang/String;)V\n" +
			"        //    8: return\n" +
			"        return;",
	} {
		if !strings.Contains(src, w) {
			t.Errorf("missing:\n%s\n\nsource:\n%s", w, src)
		}
	}
}

func build(t *testing.T, infos ...*classfile.ClassInfo) string {
	t.Helper()
	r := resolve.New(resolve.Options{})
	classes := map[string]*resolve.Class{}
	var order []string
	for _, info := range infos {
		c, err := r.Class(info)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		classes[c.Name] = c
		order = append(order, c.Name)
	}
	f, err := (&codegen.Emitter{}).Build(order, func(name string) (*resolve.Class, error) {
		return classes[name], nil
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var b strings.Builder
	if err := codegen.Render(f, &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestEmitterFieldAndMethodShareName(t *testing.T) {
	b := classfile.NewClassBuilder("p/List", "")
	b.Field(classfile.AccPrivate, "size", "I").
		Field(classfile.AccPrivate, "delete", "Z").
		Method(classfile.AccPublic, "size", "()I", code(b,
			bytecode.Instruction{Opcode: bytecode.OpIconst0},
			bytecode.Instruction{Opcode: bytecode.OpIreturn})).
		Method(classfile.AccPublic, "delete", "()V", code(b, ret))
	src := build(t, b.Build())

	for _, w := range []string{
		"    int32_t size_F;",
		"    bool delete_F;",
		"    virtual int32_t size() {",
		"    virtual void delete_() {",
	} {
		if !strings.Contains(src, w) {
			t.Errorf("missing %q in:\n%s", w, src)
		}
	}
	if strings.Contains(src, "int32_t size;") {
		t.Errorf("field kept the method's name:\n%s", src)
	}
}

func TestEmitterInnerClassNames(t *testing.T) {
	inner := classfile.NewClassBuilder("p/Foo$Bar", "")
	inner.Field(0, "next", "Lp/Foo_Bar;")
	src := build(t, inner.Build(), classfile.NewClassBuilder("p/Foo_Bar", "").Build())

	for _, w := range []string{"struct Foo_SBar;", "struct Foo__Bar;", "struct Foo_SBar {", "struct Foo__Bar {", "::p::Foo__Bar* next;"} {
		if n := strings.Count(src, w); n != 1 {
			t.Errorf("%q appears %d times in:\n%s", w, n, src)
		}
	}
}

func TestEmitterLookupError(t *testing.T) {
	order, lookup := program(t)
	_, err := (&codegen.Emitter{}).Build(append(order, "com/example/Missing"), lookup)
	if errors.CategoryOf(err) != errors.CategoryLookup {
		t.Fatalf("err = %v, want lookup error", err)
	}

	if _, err := (&codegen.Emitter{}).Build(order, nil); err == nil {
		t.Error("nil lookup should fail")
	}
}

func TestTypeOf(t *testing.T) {
	tests := map[string]string{
		"B":                     "int8_t",
		"C":                     "char16_t",
		"D":                     "double",
		"F":                     "float",
		"I":                     "int32_t",
		"J":                     "int64_t",
		"S":                     "int16_t",
		"Z":                     "bool",
		"Ljava/util/Map$Entry;": "::java::util::Map_SEntry*",
		"[I":                    "::jaot::JArray<int32_t>*",
		"[[Ljava/lang/Object;":  "::jaot::JArray< ::jaot::JArray< ::java::lang::Object*>*>*",
	}
	for raw, want := range tests {
		cls := classfile.NewClassBuilder("a/B", "java/lang/Object")
		cls.Field(0, "f", raw)
		c, err := resolve.New(resolve.Options{}).Class(cls.Build())
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		ref, err := codegen.TypeOf(c.Fields[0].Descriptor)
		if err != nil {
			t.Fatalf("%s: %v", raw, err)
		}
		if ref.String() != want {
			t.Errorf("TypeOf(%s) = %s, want %s", raw, ref, want)
		}
	}

	void, err := codegen.ReturnTypeOf(nil)
	if err != nil || void.String() != "void" {
		t.Errorf("ReturnTypeOf(nil) = %v, %v", void, err)
	}
	if _, err := codegen.TypeOf(nil); err == nil {
		t.Error("TypeOf(nil) should fail")
	}
}

func ExampleEmitter() {
	b := classfile.NewClassBuilder("Hello", "")
	b.Method(classfile.AccPublic|classfile.AccStatic, "answer", "()I", b.Code(&classfile.CodeAttribute{
		MaxStack: 1,
		Instructions: []bytecode.Instruction{
			{Opcode: bytecode.OpBipush, Imm: bytecode.ByteImm{Value: 42}},
			{Opcode: bytecode.OpIreturn},
		},
	}))
	cls, _ := resolve.New(resolve.Options{}).Class(b.Build())

	f, _ := (&codegen.Emitter{Disassemble: true}).Build([]string{"Hello"}, func(string) (*resolve.Class, error) {
		return cls, nil
	})
	var out strings.Builder
	_ = codegen.Render(f.Children()[len(f.Children())-1], &out)
	fmt.Print(out.String())
	// Output:
	// struct Hello {
	// public:
	//     static int32_t answer() {
	//         //    0: bipush 42
	//         //    2: ireturn
	//         return 0;
	//     }
	// };
}
