package bytecode

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/wippyai/jaot/errors"
	bin "github.com/wippyai/jaot/internal/binary"
)

// Instruction is one decoded instruction. Offset is the opcode's position
// relative to the start of the code array.
type Instruction struct {
	Imm    any
	Offset uint32
	Opcode Opcode
}

// LocalImm holds a local variable index for loads, stores and ret.
type LocalImm struct {
	Index uint16
}

// ByteImm holds the operand of bipush.
type ByteImm struct {
	Value int8
}

// ShortImm holds the operand of sipush.
type ShortImm struct {
	Value int16
}

// PoolImm holds a constant pool index.
type PoolImm struct {
	Index uint16
}

// BranchImm holds a branch offset relative to the instruction's own offset.
type BranchImm struct {
	Offset int32
}

// IincImm holds the operands of iinc.
type IincImm struct {
	Index uint16
	Const int16
}

// InvokeInterfaceImm holds the operands of invokeinterface.
type InvokeInterfaceImm struct {
	Index uint16
	Count uint8
}

// InvokeDynamicImm holds the call site index of invokedynamic.
type InvokeDynamicImm struct {
	Index uint16
}

// NewArrayImm holds the primitive element type of newarray.
type NewArrayImm struct {
	Type ArrayType
}

// MultiANewArrayImm holds the operands of multianewarray.
type MultiANewArrayImm struct {
	Index      uint16
	Dimensions uint8
}

// TableSwitchImm holds a decoded tableswitch.
type TableSwitchImm struct {
	Offsets []int32
	Default int32
	Low     int32
	High    int32
}

// MatchPair is one lookupswitch case.
type MatchPair struct {
	Match  int32
	Offset int32
}

// LookupSwitchImm holds a decoded lookupswitch.
type LookupSwitchImm struct {
	Pairs   []MatchPair
	Default int32
}

// WideImm holds an instruction modified by wide. Const is used only by iinc.
type WideImm struct {
	Index  uint16
	Const  int16
	Opcode Opcode
}

// ArrayType is the newarray element type code.
type ArrayType uint8

const (
	ArrayBoolean ArrayType = 4
	ArrayChar    ArrayType = 5
	ArrayFloat   ArrayType = 6
	ArrayDouble  ArrayType = 7
	ArrayByte    ArrayType = 8
	ArrayShort   ArrayType = 9
	ArrayInt     ArrayType = 10
	ArrayLong    ArrayType = 11
)

var arrayTypeNames = map[ArrayType]string{
	ArrayBoolean: "boolean",
	ArrayChar:    "char",
	ArrayFloat:   "float",
	ArrayDouble:  "double",
	ArrayByte:    "byte",
	ArrayShort:   "short",
	ArrayInt:     "int",
	ArrayLong:    "long",
}

func (t ArrayType) String() string {
	if s, ok := arrayTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ArrayType(%d)", uint8(t))
}

// Decode decodes a complete code array.
func Decode(code []byte) ([]Instruction, error) {
	return DecodeReader(bin.NewReader(bytes.NewReader(code)), len(code))
}

// DecodeReader decodes instructions from r until exactly length bytes have
// been consumed. Offsets are measured from r's position on entry.
func DecodeReader(r *bin.Reader, length int) ([]Instruction, error) {
	start := r.Position()
	instrs := make([]Instruction, 0, length/2)

	for r.Position()-start < length {
		pc := r.Position() - start
		b, err := r.ReadU1()
		if err != nil {
			return nil, truncated(pc, err)
		}
		op := Opcode(b)
		instr := Instruction{Opcode: op, Offset: uint32(pc)}

		switch s := shapes[op]; s {
		case shapeUnsupported:
			return nil, errors.New(errors.PhaseBytecode, errors.KindUnsupported).
				Value(byte(op)).
				Detail("operation not supported: %s at offset %d", op, pc).
				Build()

		case shapeVariable:
			instr.Imm, err = decodeVariable(r, op, pc, start+length)
			if err != nil {
				return nil, err
			}

		default:
			data, err := r.ReadBytes(s.width())
			if err != nil {
				return nil, truncated(pc, err)
			}
			instr.Imm, err = newImmediate(op, data)
			if err != nil {
				return nil, err
			}
		}

		if end := r.Position() - start; end > length {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil,
				fmt.Sprintf("%s at offset %d overruns code length %d", op, pc, length))
		}
		instrs = append(instrs, instr)
	}
	return instrs, nil
}

// newImmediate builds the typed immediate for a fixed-shape opcode from its
// raw operand bytes.
func newImmediate(op Opcode, data []byte) (any, error) {
	want := shapes[op].width()
	if want < 0 {
		return nil, errors.Unsupported(errors.PhaseBytecode, fmt.Sprintf("operation not supported: %s", op))
	}
	if len(data) != want {
		return nil, errors.DataSize(errors.PhaseBytecode, op.String(), want, len(data))
	}

	switch {
	case want == 0:
		return nil, nil
	case op == OpBipush:
		return ByteImm{Value: int8(data[0])}, nil
	case op == OpSipush:
		return ShortImm{Value: int16(u2(data))}, nil
	case op == OpLdc:
		return PoolImm{Index: uint16(data[0])}, nil
	case op == OpNewarray:
		t := ArrayType(data[0])
		if _, ok := arrayTypeNames[t]; !ok {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil, fmt.Sprintf("newarray: invalid element type %d", data[0]))
		}
		return NewArrayImm{Type: t}, nil
	case isLocalOp(op):
		return LocalImm{Index: uint16(data[0])}, nil
	case op == OpIinc:
		return IincImm{Index: uint16(data[0]), Const: int16(int8(data[1]))}, nil
	case IsBranch(op) && want == 2:
		return BranchImm{Offset: int32(int16(u2(data)))}, nil
	case op == OpGotoW || op == OpJsrW:
		return BranchImm{Offset: int32(binary.BigEndian.Uint32(data))}, nil
	case op == OpInvokeinterface:
		if data[2] == 0 || data[3] != 0 {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil,
				fmt.Sprintf("invokeinterface: count %d, reserved byte %d", data[2], data[3]))
		}
		return InvokeInterfaceImm{Index: u2(data), Count: data[2]}, nil
	case op == OpInvokedynamic:
		if data[2] != 0 || data[3] != 0 {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil, "invokedynamic: reserved bytes must be zero")
		}
		return InvokeDynamicImm{Index: u2(data)}, nil
	case op == OpMultianewarray:
		if data[2] == 0 {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil, "multianewarray: dimensions must be at least 1")
		}
		return MultiANewArrayImm{Index: u2(data), Dimensions: data[2]}, nil
	default:
		return PoolImm{Index: u2(data)}, nil
	}
}

// decodeVariable decodes a switch or wide instruction. end is the reader
// position just past the code array.
func decodeVariable(r *bin.Reader, op Opcode, pc, end int) (any, error) {
	switch op {
	case OpTableswitch:
		if err := skipPadding(r, pc); err != nil {
			return nil, err
		}
		def, low, high, err := read3(r, pc)
		if err != nil {
			return nil, err
		}
		if high < low {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil,
				fmt.Sprintf("tableswitch at offset %d: high %d < low %d", pc, high, low))
		}
		n := int64(high) - int64(low) + 1
		if err := checkRemaining(end-r.Position(), n*4, op, pc); err != nil {
			return nil, err
		}
		offsets := make([]int32, n)
		for i := range offsets {
			if offsets[i], err = r.ReadS4(); err != nil {
				return nil, truncated(pc, err)
			}
		}
		return TableSwitchImm{Default: def, Low: low, High: high, Offsets: offsets}, nil

	case OpLookupswitch:
		if err := skipPadding(r, pc); err != nil {
			return nil, err
		}
		def, err := r.ReadS4()
		if err != nil {
			return nil, truncated(pc, err)
		}
		npairs, err := r.ReadS4()
		if err != nil {
			return nil, truncated(pc, err)
		}
		if npairs < 0 {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil,
				fmt.Sprintf("lookupswitch at offset %d: negative pair count %d", pc, npairs))
		}
		if err := checkRemaining(end-r.Position(), int64(npairs)*8, op, pc); err != nil {
			return nil, err
		}
		pairs := make([]MatchPair, npairs)
		for i := range pairs {
			if pairs[i].Match, err = r.ReadS4(); err != nil {
				return nil, truncated(pc, err)
			}
			if pairs[i].Offset, err = r.ReadS4(); err != nil {
				return nil, truncated(pc, err)
			}
			if i > 0 && pairs[i].Match <= pairs[i-1].Match {
				return nil, errors.InvalidData(errors.PhaseBytecode, nil,
					fmt.Sprintf("lookupswitch at offset %d: keys not sorted", pc))
			}
		}
		return LookupSwitchImm{Default: def, Pairs: pairs}, nil

	case OpWide:
		b, err := r.ReadU1()
		if err != nil {
			return nil, truncated(pc, err)
		}
		inner := Opcode(b)
		if inner != OpIinc && !isLocalOp(inner) {
			return nil, errors.InvalidData(errors.PhaseBytecode, nil,
				fmt.Sprintf("wide at offset %d: %s cannot be widened", pc, inner))
		}
		idx, err := r.ReadU2()
		if err != nil {
			return nil, truncated(pc, err)
		}
		imm := WideImm{Opcode: inner, Index: idx}
		if inner == OpIinc {
			if imm.Const, err = r.ReadS2(); err != nil {
				return nil, truncated(pc, err)
			}
		}
		return imm, nil
	}
	return nil, errors.Unsupported(errors.PhaseBytecode, fmt.Sprintf("operation not supported: %s", op))
}

// padding returns the number of bytes between a switch opcode at pc and the
// next 4-byte boundary of the code array.
func padding(pc int) int {
	return (4 - (pc+1)%4) % 4
}

func skipPadding(r *bin.Reader, pc int) error {
	if _, err := r.ReadBytes(padding(pc)); err != nil {
		return truncated(pc, err)
	}
	return nil
}

func read3(r *bin.Reader, pc int) (a, b, c int32, err error) {
	if a, err = r.ReadS4(); err != nil {
		return 0, 0, 0, truncated(pc, err)
	}
	if b, err = r.ReadS4(); err != nil {
		return 0, 0, 0, truncated(pc, err)
	}
	if c, err = r.ReadS4(); err != nil {
		return 0, 0, 0, truncated(pc, err)
	}
	return a, b, c, nil
}

// checkRemaining rejects jump tables larger than the rest of the code array
// before anything is allocated for them.
func checkRemaining(left int, need int64, op Opcode, pc int) error {
	if need > int64(left) {
		return errors.New(errors.PhaseBytecode, errors.KindInvalidData).
			Detail("%s at offset %d: table of %d bytes overruns code array (%d left)", op, pc, need, left).
			Build()
	}
	return nil
}

func truncated(pc int, err error) error {
	if stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF) {
		return errors.Wrap(errors.PhaseBytecode, errors.KindInvalidData, err,
			fmt.Sprintf("truncated instruction at offset %d", pc))
	}
	return err
}

func u2(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

func isLocalOp(op Opcode) bool {
	return (op >= OpIload && op <= OpAload) || (op >= OpIstore && op <= OpAstore) || op == OpRet
}

// IsBranch reports whether op transfers control to a relative offset.
func IsBranch(op Opcode) bool {
	switch {
	case op >= OpIfeq && op <= OpJsr:
		return true
	case op == OpIfnull, op == OpIfnonnull, op == OpGotoW, op == OpJsrW:
		return true
	case op == OpTableswitch, op == OpLookupswitch:
		return true
	}
	return false
}

// ReferencesPool reports whether op carries a constant pool index.
func ReferencesPool(op Opcode) bool {
	switch {
	case op >= OpLdc && op <= OpLdc2W:
		return true
	case op >= OpGetstatic && op <= OpInvokedynamic:
		return true
	case op == OpNew, op == OpAnewarray, op == OpCheckcast, op == OpInstanceof, op == OpMultianewarray:
		return true
	}
	return false
}

// BranchTargets returns the absolute code offsets an instruction can jump to,
// default target first for switches.
func (i Instruction) BranchTargets() []int {
	base := int(i.Offset)
	switch imm := i.Imm.(type) {
	case BranchImm:
		return []int{base + int(imm.Offset)}
	case TableSwitchImm:
		out := make([]int, 0, len(imm.Offsets)+1)
		out = append(out, base+int(imm.Default))
		for _, o := range imm.Offsets {
			out = append(out, base+int(o))
		}
		return out
	case LookupSwitchImm:
		out := make([]int, 0, len(imm.Pairs)+1)
		out = append(out, base+int(imm.Default))
		for _, p := range imm.Pairs {
			out = append(out, base+int(p.Offset))
		}
		return out
	}
	return nil
}

// PoolIndex returns the constant pool index the instruction refers to.
func (i Instruction) PoolIndex() (uint16, bool) {
	switch imm := i.Imm.(type) {
	case PoolImm:
		return imm.Index, true
	case InvokeInterfaceImm:
		return imm.Index, true
	case InvokeDynamicImm:
		return imm.Index, true
	case MultiANewArrayImm:
		return imm.Index, true
	}
	return 0, false
}

// String formats the instruction in javap style without its offset.
func (i Instruction) String() string {
	switch imm := i.Imm.(type) {
	case nil:
		return i.Opcode.String()
	case LocalImm:
		return fmt.Sprintf("%s %d", i.Opcode, imm.Index)
	case ByteImm:
		return fmt.Sprintf("%s %d", i.Opcode, imm.Value)
	case ShortImm:
		return fmt.Sprintf("%s %d", i.Opcode, imm.Value)
	case PoolImm:
		return fmt.Sprintf("%s #%d", i.Opcode, imm.Index)
	case BranchImm:
		return fmt.Sprintf("%s %d", i.Opcode, int(i.Offset)+int(imm.Offset))
	case IincImm:
		return fmt.Sprintf("%s %d, %d", i.Opcode, imm.Index, imm.Const)
	case InvokeInterfaceImm:
		return fmt.Sprintf("%s #%d, %d", i.Opcode, imm.Index, imm.Count)
	case InvokeDynamicImm:
		return fmt.Sprintf("%s #%d, 0", i.Opcode, imm.Index)
	case NewArrayImm:
		return fmt.Sprintf("%s %s", i.Opcode, imm.Type)
	case MultiANewArrayImm:
		return fmt.Sprintf("%s #%d, %d", i.Opcode, imm.Index, imm.Dimensions)
	case TableSwitchImm:
		return fmt.Sprintf("%s { %d to %d, default: %d }", i.Opcode, imm.Low, imm.High, int(i.Offset)+int(imm.Default))
	case LookupSwitchImm:
		return fmt.Sprintf("%s { %d pairs, default: %d }", i.Opcode, len(imm.Pairs), int(i.Offset)+int(imm.Default))
	case WideImm:
		if imm.Opcode == OpIinc {
			return fmt.Sprintf("%s %s %d, %d", i.Opcode, imm.Opcode, imm.Index, imm.Const)
		}
		return fmt.Sprintf("%s %s %d", i.Opcode, imm.Opcode, imm.Index)
	}
	return fmt.Sprintf("%s %v", i.Opcode, i.Imm)
}
