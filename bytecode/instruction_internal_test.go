package bytecode

import (
	"errors"
	"testing"

	jerrors "github.com/wippyai/jaot/errors"
)

func TestNewImmediateDataSize(t *testing.T) {
	tests := []struct {
		op   Opcode
		data []byte
	}{
		{OpSipush, []byte{0x01}},
		{OpInvokestatic, []byte{0x00, 0x05, 0x00}},
		{OpBipush, nil},
		{OpNop, []byte{0x00}},
		{OpInvokeinterface, []byte{0x00, 0x01, 0x01}},
	}
	target := &jerrors.Error{Phase: jerrors.PhaseBytecode, Kind: jerrors.KindDataSize}

	for _, tt := range tests {
		_, err := newImmediate(tt.op, tt.data)
		if !errors.Is(err, target) {
			t.Errorf("%v with %d bytes: expected data size error, got %v", tt.op, len(tt.data), err)
		}
	}
}

func TestNewImmediateVariableShape(t *testing.T) {
	if _, err := newImmediate(OpTableswitch, nil); err == nil {
		t.Error("variable shapes have no fixed immediate")
	}
}

func TestPadding(t *testing.T) {
	want := []int{3, 2, 1, 0, 3, 2, 1, 0}
	for pc, p := range want {
		if got := padding(pc); got != p {
			t.Errorf("padding(%d) = %d, want %d", pc, got, p)
		}
	}
}

func TestShapeTableCoversAssignedOpcodes(t *testing.T) {
	for op := OpNop; op <= OpJsrW; op++ {
		if !Supported(op) {
			t.Errorf("%v should be supported", op)
		}
		if opcodeNames[op] == "" {
			t.Errorf("opcode 0x%02x has no name", byte(op))
		}
	}
	for op := 0xca; op <= 0xff; op++ {
		if Supported(Opcode(op)) {
			t.Errorf("0x%02x should be unsupported", op)
		}
	}
}
