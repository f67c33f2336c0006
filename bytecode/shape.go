package bytecode

// shape is the operand layout that follows an opcode.
type shape uint8

const (
	shapeUnsupported shape = iota
	shapeNone
	shapeU1
	shapeU2
	shapeU3
	shapeU4
	shapeVariable
)

// width returns the fixed operand byte count, or -1 for variable and
// unsupported shapes.
func (s shape) width() int {
	switch s {
	case shapeNone:
		return 0
	case shapeU1:
		return 1
	case shapeU2:
		return 2
	case shapeU3:
		return 3
	case shapeU4:
		return 4
	default:
		return -1
	}
}

var shapes = buildShapes()

func buildShapes() [256]shape {
	var t [256]shape
	for op := OpNop; op <= OpJsrW; op++ {
		t[op] = shapeNone
	}
	for _, op := range []Opcode{
		OpBipush, OpLdc, OpNewarray, OpRet,
		OpIload, OpLload, OpFload, OpDload, OpAload,
		OpIstore, OpLstore, OpFstore, OpDstore, OpAstore,
	} {
		t[op] = shapeU1
	}
	for _, op := range []Opcode{
		OpSipush, OpLdcW, OpLdc2W, OpIinc,
		OpGetstatic, OpPutstatic, OpGetfield, OpPutfield,
		OpInvokevirtual, OpInvokespecial, OpInvokestatic,
		OpNew, OpAnewarray, OpCheckcast, OpInstanceof,
		OpGoto, OpJsr, OpIfnull, OpIfnonnull,
	} {
		t[op] = shapeU2
	}
	for op := OpIfeq; op <= OpIfAcmpne; op++ {
		t[op] = shapeU2
	}
	t[OpMultianewarray] = shapeU3
	t[OpInvokeinterface] = shapeU4
	t[OpInvokedynamic] = shapeU4
	t[OpGotoW] = shapeU4
	t[OpJsrW] = shapeU4
	t[OpTableswitch] = shapeVariable
	t[OpLookupswitch] = shapeVariable
	t[OpWide] = shapeVariable
	return t
}

// OperandWidth returns the fixed operand byte count of op. The second result
// is false for variable-length and unsupported opcodes.
func OperandWidth(op Opcode) (int, bool) {
	w := shapes[op].width()
	return w, w >= 0
}

// Supported reports whether op can be decoded.
func Supported(op Opcode) bool {
	return shapes[op] != shapeUnsupported
}
