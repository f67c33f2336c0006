package bytecode

import (
	"fmt"

	"github.com/wippyai/jaot/errors"
	bin "github.com/wippyai/jaot/internal/binary"
)

// Encode encodes instructions into a code array. Switch padding is computed
// from each instruction's actual position, so Offset fields are ignored.
func Encode(instrs []Instruction) ([]byte, error) {
	w := bin.NewWriter()
	for i := range instrs {
		if err := EncodeTo(w, &instrs[i]); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// EncodeTo appends one instruction to w. The writer must start at the
// beginning of the code array for switch padding to come out right.
func EncodeTo(w *bin.Writer, instr *Instruction) error {
	pc := w.Len()
	op := instr.Opcode
	if !Supported(op) {
		return errors.Unsupported(errors.PhaseBytecode, fmt.Sprintf("operation not supported: %s", op))
	}
	w.WriteU1(byte(op))

	switch imm := instr.Imm.(type) {
	case nil:
		if width, fixed := OperandWidth(op); !fixed || width != 0 {
			return badImmediate(op, instr.Imm)
		}
	case ByteImm:
		w.WriteU1(byte(imm.Value))
	case ShortImm:
		w.WriteU2(uint16(imm.Value))
	case LocalImm:
		w.WriteU1(byte(imm.Index))
	case PoolImm:
		if op == OpLdc {
			w.WriteU1(byte(imm.Index))
		} else {
			w.WriteU2(imm.Index)
		}
	case NewArrayImm:
		w.WriteU1(byte(imm.Type))
	case IincImm:
		w.WriteU1(byte(imm.Index))
		w.WriteU1(byte(int8(imm.Const)))
	case BranchImm:
		if op == OpGotoW || op == OpJsrW {
			w.WriteU4(uint32(imm.Offset))
		} else {
			w.WriteU2(uint16(int16(imm.Offset)))
		}
	case InvokeInterfaceImm:
		w.WriteU2(imm.Index)
		w.WriteU1(imm.Count)
		w.WriteU1(0)
	case InvokeDynamicImm:
		w.WriteU2(imm.Index)
		w.WriteU2(0)
	case MultiANewArrayImm:
		w.WriteU2(imm.Index)
		w.WriteU1(imm.Dimensions)
	case TableSwitchImm:
		w.WriteBytes(make([]byte, padding(pc)))
		w.WriteU4(uint32(imm.Default))
		w.WriteU4(uint32(imm.Low))
		w.WriteU4(uint32(imm.High))
		for _, o := range imm.Offsets {
			w.WriteU4(uint32(o))
		}
	case LookupSwitchImm:
		w.WriteBytes(make([]byte, padding(pc)))
		w.WriteU4(uint32(imm.Default))
		w.WriteU4(uint32(len(imm.Pairs)))
		for _, p := range imm.Pairs {
			w.WriteU4(uint32(p.Match))
			w.WriteU4(uint32(p.Offset))
		}
	case WideImm:
		w.WriteU1(byte(imm.Opcode))
		w.WriteU2(imm.Index)
		if imm.Opcode == OpIinc {
			w.WriteU2(uint16(imm.Const))
		}
	default:
		return badImmediate(op, instr.Imm)
	}

	if width, fixed := OperandWidth(op); fixed && w.Len()-pc-1 != width {
		return errors.DataSize(errors.PhaseBytecode, op.String(), width, w.Len()-pc-1)
	}
	return nil
}

func badImmediate(op Opcode, imm any) error {
	return errors.TypeMismatch(errors.PhaseBytecode, []string{op.String()}, "immediate for "+op.String(), fmt.Sprintf("%T", imm))
}
