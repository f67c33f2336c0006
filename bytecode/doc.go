// Package bytecode decodes and encodes JVM instruction streams.
//
// Every opcode maps to a fixed operand shape: no operands, 1 to 4 operand
// bytes, or a variable layout (tableswitch, lookupswitch, wide). Fixed shapes
// are read in one piece and turned into a typed immediate; the immediate
// constructor rejects any byte count that does not match the shape.
//
//	instrs, err := bytecode.Decode(code)
//	for _, in := range instrs {
//		if idx, ok := in.PoolIndex(); ok {
//			...
//		}
//	}
//
// Switch operands are aligned to a 4-byte boundary measured from the start of
// the code array. Reserved and unassigned opcodes fail with an unsupported
// error naming the opcode. The decoder does not build basic blocks.
package bytecode
