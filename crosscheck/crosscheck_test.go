package crosscheck_test

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/wippyai/jaot/bytecode"
	"github.com/wippyai/jaot/classfile"
	"github.com/wippyai/jaot/crosscheck"
	"github.com/wippyai/jaot/errors"
)

func sample(t *testing.T) ([]byte, *classfile.ClassInfo) {
	t.Helper()
	b := classfile.NewClassBuilder("app/Point", "java/lang/Object").
		Interface("java/lang/Comparable").
		Access(classfile.AccPublic | classfile.AccSuper | classfile.AccFinal)
	b.Field(classfile.AccPrivate|classfile.AccFinal, "x", "I").
		Field(classfile.AccPrivate|classfile.AccFinal, "y", "I").
		Method(classfile.AccPublic, "compareTo", "(Ljava/lang/Object;)I", b.Code(&classfile.CodeAttribute{
			MaxStack: 1, MaxLocals: 2,
			Instructions: []bytecode.Instruction{
				{Opcode: bytecode.OpIconst0},
				{Opcode: bytecode.OpIreturn},
			},
		})).
		Method(classfile.AccPublic|classfile.AccNative, "hash", "()J")
	b.Pool().Long(7)

	data := b.Build().Encode()
	cf, err := classfile.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return data, cf
}

func TestCompareAgrees(t *testing.T) {
	data, cf := sample(t)
	if err := crosscheck.Compare(data, cf); err != nil {
		t.Errorf("Compare: %v", err)
	}
}

func TestCompareReportsFirstDifference(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(cf *classfile.ClassInfo)
		path   []string
	}{
		{"version", func(cf *classfile.ClassInfo) { cf.MajorVersion = 61 }, []string{"major_version"}},
		{"access", func(cf *classfile.ClassInfo) { cf.AccessFlags = classfile.AccPublic }, []string{"access_flags"}},
		{"interfaces", func(cf *classfile.ClassInfo) { cf.Interfaces = nil }, []string{"interfaces"}},
		{"field order", func(cf *classfile.ClassInfo) {
			cf.Fields[0], cf.Fields[1] = cf.Fields[1], cf.Fields[0]
		}, []string{"fields", "0", "name"}},
		{"method access", func(cf *classfile.ClassInfo) {
			cf.Methods[1].AccessFlags = classfile.AccPublic
		}, []string{"methods", "1", "access_flags"}},
		{"dropped code", func(cf *classfile.ClassInfo) { cf.Methods[0].Attributes = nil }, []string{"methods", "0", "code_length"}},
		{"missing method", func(cf *classfile.ClassInfo) { cf.Methods = cf.Methods[:1] }, []string{"methods"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, cf := sample(t)
			tt.tamper(cf)

			err := crosscheck.Compare(data, cf)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want structured mismatch", err)
			}
			if e.Class != "app/Point" || !reflect.DeepEqual(e.Path, tt.path) {
				t.Errorf("err = %v, want path %v", err, tt.path)
			}
			if errors.CategoryOf(err) != errors.CategoryFormat {
				t.Errorf("category = %s", errors.CategoryOf(err))
			}
		})
	}
}

func TestCompareRejectedByReference(t *testing.T) {
	_, cf := sample(t)
	err := crosscheck.Compare([]byte{0xca, 0xfe}, cf)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Cause == nil {
		t.Errorf("err = %v, want wrapped parser error", err)
	}
}

func TestCompareNil(t *testing.T) {
	if err := crosscheck.Compare(nil, nil); errors.CategoryOf(err) != errors.CategoryLookup {
		t.Errorf("err = %v", err)
	}
}
